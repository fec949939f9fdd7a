// Package cleardata implements the guarded wipe workflow: pick tables,
// prove you are who you say, type the confirmation phrase, get a safety
// backup, and only then clear.
package cleardata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-pos-store/internal/backup"
	"go-pos-store/internal/models"
	"go-pos-store/internal/store"

	"go.uber.org/zap"
)

// Step is the workflow position. Steps only ever advance; Cancel resets
// to selection while that is still safe.
type Step string

const (
	StepSelection Step = "selection"
	StepPassword  Step = "password"
	StepConfirm   Step = "confirm"
	StepBackup    Step = "backup"
	StepClearing  Step = "clearing"
	StepComplete  Step = "complete"
)

// ConfirmPhrase must be typed exactly. No trimming, no case folding.
const ConfirmPhrase = "DELETE"

var (
	ErrNothingSelected = errors.New("no tables selected")
	ErrNotClearable    = errors.New("table cannot be cleared")
	ErrWrongStep       = errors.New("operation not valid at this step")
	ErrBadConfirmation = errors.New("confirmation text does not match")
	// ErrVerifyFailed deliberately does not say whether the user was
	// missing, inactive, or simply mistyped.
	ErrVerifyFailed = errors.New("password verification failed")
)

// ClearableTables lists what the workflow may wipe. Users and settings
// are protected: wiping them would lock the operator out of the app.
func ClearableTables() []string {
	return []string{
		"products",
		"customers",
		"sales",
		"sale_items",
		"categories",
		"activity_logs",
		"auto_backups",
		"backup_settings",
	}
}

func isClearable(table string) bool {
	for _, t := range ClearableTables() {
		if t == table {
			return true
		}
	}
	return false
}

// Result reports what a finished workflow actually did. Failed tables
// do not roll back cleared ones; the caller shows both lists.
type Result struct {
	Cleared        []string
	Failed         []string
	BackupID       uint
	BackupFilename string
}

// Workflow is a single clear-data attempt. Not safe for concurrent use;
// the UI drives exactly one at a time.
type Workflow struct {
	store     *store.Store
	engine    *backup.Engine
	log       *zap.Logger
	now       func() time.Time
	backupDir string

	step     Step
	selected []string
	userID   uint
}

func NewWorkflow(st *store.Store, engine *backup.Engine, userID uint, backupDir string, log *zap.Logger) *Workflow {
	return &Workflow{
		store:     st,
		engine:    engine,
		log:       log,
		now:       time.Now,
		backupDir: backupDir,
		step:      StepSelection,
		userID:    userID,
	}
}

func (w *Workflow) Step() Step         { return w.step }
func (w *Workflow) Selected() []string { return w.selected }

// Select records which tables to wipe and advances to the password
// step. At least one table is required and every name must be on the
// clearable list.
func (w *Workflow) Select(tables []string) error {
	if w.step != StepSelection {
		return ErrWrongStep
	}
	if len(tables) == 0 {
		return ErrNothingSelected
	}
	for _, table := range tables {
		if !isClearable(table) {
			return fmt.Errorf("%w: %s", ErrNotClearable, table)
		}
	}
	w.selected = append([]string(nil), tables...)
	w.step = StepPassword
	return nil
}

// VerifyPassword checks the operator's password. A wrong password keeps
// the workflow on the password step so the user can retry.
func (w *Workflow) VerifyPassword(ctx context.Context, password string) error {
	if w.step != StepPassword {
		return ErrWrongStep
	}
	ok, err := w.store.VerifyPassword(ctx, w.userID, password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrVerifyFailed
	}
	w.step = StepConfirm
	return nil
}

// Confirm requires the exact phrase before anything destructive runs.
func (w *Workflow) Confirm(text string) error {
	if w.step != StepConfirm {
		return ErrWrongStep
	}
	if text != ConfirmPhrase {
		return ErrBadConfirmation
	}
	w.step = StepBackup
	return nil
}

// Cancel abandons the workflow. Only allowed before the safety backup
// starts; past that point the operation runs to completion.
func (w *Workflow) Cancel() error {
	switch w.step {
	case StepSelection, StepPassword, StepConfirm:
		w.step = StepSelection
		w.selected = nil
		return nil
	default:
		return ErrWrongStep
	}
}

// Execute takes the safety backup and clears the selected tables. If
// the backup cannot be written the whole operation aborts with the data
// untouched. Clearing is sequential per table: one failing table is
// recorded and the rest still clear.
func (w *Workflow) Execute(ctx context.Context) (*Result, error) {
	if w.step != StepBackup {
		return nil, ErrWrongStep
	}

	data, err := w.engine.ExportJSON(ctx, backup.DataTables())
	if err != nil {
		w.step = StepSelection
		return nil, fmt.Errorf("safety backup failed, nothing was cleared: %w", err)
	}

	var env struct {
		Metadata backup.Metadata `json:"metadata"`
	}
	_ = json.Unmarshal([]byte(data), &env)

	row := models.AutoBackup{
		BackupData: data,
		Metadata: models.BackupMetadata{
			RecordCounts: env.Metadata.RecordCounts,
			Version:      backup.EnvelopeVersion,
		},
		CreatedAt: w.now(),
	}
	if err := w.store.DB().WithContext(ctx).Create(&row).Error; err != nil {
		w.step = StepSelection
		return nil, fmt.Errorf("safety backup failed, nothing was cleared: %w", err)
	}

	result := &Result{
		BackupID:       row.ID,
		BackupFilename: backup.Filename(backup.FormatJSON, w.now()),
	}

	// A file copy next to the in-store snapshot, so recovery survives
	// even a lost database file. The row stays the primary path; a
	// failed write is reported as a missing filename, not an abort.
	path := filepath.Join(w.backupDir, result.BackupFilename)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		w.log.Warn("safety backup file not written",
			zap.String("path", path),
			zap.Error(err))
		result.BackupFilename = ""
	}

	w.step = StepClearing
	for _, table := range w.selected {
		var err error
		if table == "auto_backups" {
			// Clearing old snapshots must not destroy the safety
			// backup taken a moment ago.
			err = w.store.DB().WithContext(ctx).
				Where("id <> ?", row.ID).Delete(&models.AutoBackup{}).Error
		} else {
			err = w.store.ClearTable(ctx, table)
		}
		if err != nil {
			w.log.Error("clear table failed",
				zap.String("table", table),
				zap.Error(err))
			result.Failed = append(result.Failed, table)
			continue
		}
		result.Cleared = append(result.Cleared, table)
	}
	w.step = StepComplete

	w.log.Info("clear data finished",
		zap.Strings("cleared", result.Cleared),
		zap.Strings("failed", result.Failed),
		zap.Uint("safetyBackupId", result.BackupID))

	if err := w.store.LogActivity(ctx, w.userID, "clear_data",
		fmt.Sprintf("cleared %d tables, safety backup %d", len(result.Cleared), result.BackupID)); err != nil {
		w.log.Warn("activity log failed", zap.Error(err))
	}

	return result, nil
}
