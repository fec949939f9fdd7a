package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-store/internal/models"
	"go-pos-store/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	EnvelopeVersion = "1.0.0"
	SchemaVersion   = "1.0.0"
)

// ErrInvalidBackup marks a structurally broken envelope. It is always
// raised before any write happens.
var ErrInvalidBackup = errors.New("invalid backup data")

// Envelope is the on-disk backup format, shared by file exports and the
// auto-backup rows kept inside the store.
type Envelope struct {
	Version   string                      `json:"version"`
	Timestamp string                      `json:"timestamp"`
	Tables    map[string][]map[string]any `json:"tables"`
	Metadata  Metadata                    `json:"metadata"`
}

type Metadata struct {
	RecordCounts  map[string]int `json:"recordCounts"`
	SchemaVersion string         `json:"schemaVersion"`
}

// Engine serializes tables into envelopes and restores them. Stateless
// between calls; everything goes through the one store handle.
type Engine struct {
	store *store.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewEngine(st *store.Store, log *zap.Logger) *Engine {
	return &Engine{store: st, log: log, now: time.Now}
}

// DataTables is the default export set: every table holding user data.
// Backup bookkeeping tables (auto_backups, backup_settings) and the
// audit trail are not part of it.
func DataTables() []string {
	return []string{"users", "categories", "products", "customers", "sales", "sale_items", "settings"}
}

// ExportJSON reads every named table and assembles the envelope. A
// single failing table aborts the whole export with an error naming it;
// no partial envelope is ever returned.
func (e *Engine) ExportJSON(ctx context.Context, tables []string) (string, error) {
	env := Envelope{
		Version:   EnvelopeVersion,
		Timestamp: e.now().UTC().Format(time.RFC3339),
		Tables:    make(map[string][]map[string]any, len(tables)),
		Metadata: Metadata{
			RecordCounts:  make(map[string]int, len(tables)),
			SchemaVersion: SchemaVersion,
		},
	}

	for _, table := range tables {
		records, err := e.readTable(ctx, table)
		if err != nil {
			return "", fmt.Errorf("failed to export table %s: %w", table, err)
		}
		env.Tables[table] = records
		env.Metadata.RecordCounts[table] = len(records)
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing backup: %w", err)
	}
	return string(out), nil
}

// ExportEncrypted produces the JSON envelope and seals it with the
// password. See encryption.go for the blob layout.
func (e *Engine) ExportEncrypted(ctx context.Context, tables []string, password string) (string, error) {
	jsonData, err := e.ExportJSON(ctx, tables)
	if err != nil {
		return "", err
	}
	return Encrypt(jsonData, password)
}

// ImportJSON validates the envelope, then - in one transaction - clears
// every table the envelope carries and inserts its records. Tables
// absent from the envelope are untouched. Records are accepted in the
// canonical camelCase shape or the legacy snake_case one.
func (e *Engine) ImportJSON(ctx context.Context, data string) error {
	env, err := parseEnvelope(data)
	if err != nil {
		return err
	}

	// Validate every table name up front so nothing is cleared for an
	// envelope we cannot fully restore.
	for table := range env.Tables {
		if _, ok := tableDecoders[table]; !ok {
			return fmt.Errorf("%w: unknown table %q", ErrInvalidBackup, table)
		}
	}

	err = e.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for table, records := range env.Tables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clearing table %s: %w", table, err)
			}
			decode := tableDecoders[table]
			for i, record := range records {
				model, err := decode(record)
				if err != nil {
					return fmt.Errorf("table %s record %d: %w", table, i, err)
				}
				if err := tx.Create(model).Error; err != nil {
					return fmt.Errorf("restoring table %s record %d: %w", table, i, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	e.log.Info("backup restored",
		zap.Int("tables", len(env.Tables)),
		zap.String("backupTimestamp", env.Timestamp))
	return nil
}

// ImportEncrypted decrypts the blob and restores it. Wrong password and
// corrupt data surface as the one generic decryption error, and nothing
// is written.
func (e *Engine) ImportEncrypted(ctx context.Context, blob, password string) error {
	jsonData, err := Decrypt(strings.TrimSpace(blob), password)
	if err != nil {
		return err
	}
	return e.ImportJSON(ctx, jsonData)
}

// Preview summarizes a backup file for the restore screen.
type Preview struct {
	Version       string
	Timestamp     string
	RecordCounts  map[string]int
	SchemaVersion string
}

// ValidateBackupData is the standalone structural check used before
// committing to a restore. It never touches the database.
func ValidateBackupData(data string) (*Preview, error) {
	env, err := parseEnvelope(data)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Version:       env.Version,
		Timestamp:     env.Timestamp,
		RecordCounts:  env.Metadata.RecordCounts,
		SchemaVersion: env.Metadata.SchemaVersion,
	}, nil
}

func parseEnvelope(data string) (*Envelope, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidBackup)
	}
	if _, ok := raw["version"]; !ok {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidBackup)
	}
	if _, ok := raw["timestamp"]; !ok {
		return nil, fmt.Errorf("%w: missing timestamp", ErrInvalidBackup)
	}
	if _, ok := raw["tables"]; !ok {
		return nil, fmt.Errorf("%w: missing tables", ErrInvalidBackup)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, fmt.Errorf("%w: malformed envelope", ErrInvalidBackup)
	}
	if env.Tables == nil {
		return nil, fmt.Errorf("%w: missing tables", ErrInvalidBackup)
	}
	if env.Metadata.RecordCounts == nil {
		return nil, fmt.Errorf("%w: missing metadata record counts", ErrInvalidBackup)
	}
	return &env, nil
}

// Format of an exported backup file.
type Format string

const (
	FormatJSON      Format = "json"
	FormatEncrypted Format = "encrypted"
)

// Filename builds an unambiguous backup filename: ISO-like timestamp,
// extension matching the format (.json plaintext, .bak encrypted).
func Filename(format Format, now time.Time) string {
	timestamp := strings.NewReplacer(":", "-", ".", "-").
		Replace(now.UTC().Format("2006-01-02T15:04:05"))
	ext := "json"
	if format == FormatEncrypted {
		ext = "bak"
	}
	return fmt.Sprintf("pos-backup-%s.%s", timestamp, ext)
}

// readTable dumps one table as canonical camelCase records. Reads are
// raw rows - no joined categories or attached items, matching what a
// restore expects to write back.
func (e *Engine) readTable(ctx context.Context, table string) ([]map[string]any, error) {
	db := e.store.DB().WithContext(ctx)

	// Users carry their bcrypt hash in the envelope even though the
	// API shape hides it; a restore without hashes would lock
	// everyone out.
	if table == "users" {
		var users []models.User
		if err := db.Find(&users).Error; err != nil {
			return nil, err
		}
		records := make([]map[string]any, 0, len(users))
		for _, u := range users {
			record, err := toRecord(u)
			if err != nil {
				return nil, err
			}
			record["password"] = u.Password
			records = append(records, record)
		}
		return records, nil
	}

	dest, ok := tableReaders[table]
	if !ok {
		return nil, fmt.Errorf("unknown table")
	}
	slice := dest()
	if err := db.Find(slice).Error; err != nil {
		return nil, err
	}
	return toRecords(slice)
}

var tableReaders = map[string]func() any{
	"users":           func() any { return &[]models.User{} },
	"categories":      func() any { return &[]models.Category{} },
	"products":        func() any { return &[]models.Product{} },
	"customers":       func() any { return &[]models.Customer{} },
	"sales":           func() any { return &[]models.Sale{} },
	"sale_items":      func() any { return &[]models.SaleItem{} },
	"settings":        func() any { return &[]models.Settings{} },
	"activity_logs":   func() any { return &[]models.ActivityLog{} },
	"auto_backups":    func() any { return &[]models.AutoBackup{} },
	"backup_settings": func() any { return &[]models.BackupSettings{} },
	"user_roles":      func() any { return &[]models.UserRole{} },
}

func toRecord(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func toRecords(slice any) ([]map[string]any, error) {
	data, err := json.Marshal(slice)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
