package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-store/internal/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sentinel errors returned by the accessors. Callers branch on these
// with errors.Is; ErrDuplicate in particular lets the UI show a
// friendly "already exists" message instead of a generic failure.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("already exists")
	ErrNoMatch           = errors.New("invalid credentials")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Store is the single access path to the local database. One instance
// wraps the one process-wide *gorm.DB handle for the process lifetime.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// DB exposes the underlying handle for the backup engine and reports.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// TableRecordCounts returns the row count per logical table. Tables that
// cannot be counted (e.g. schema not yet upgraded) report zero instead
// of failing the whole call.
func (s *Store) TableRecordCounts(ctx context.Context) map[string]int64 {
	counts := make(map[string]int64)
	for _, name := range database.TableNames() {
		var n int64
		if err := s.db.WithContext(ctx).Table(name).Count(&n).Error; err != nil {
			s.log.Warn("counting table failed", zap.String("table", name), zap.Error(err))
			counts[name] = 0
			continue
		}
		counts[name] = n
	}
	return counts
}

// ClearTable empties one table. The name must be a known table; this is
// the only place raw table names reach SQL.
func (s *Store) ClearTable(ctx context.Context, name string) error {
	if !isKnownTable(name) {
		return fmt.Errorf("clear table %q: unknown table", name)
	}
	if err := s.db.WithContext(ctx).Exec("DELETE FROM " + name).Error; err != nil {
		return fmt.Errorf("clear table %q: %w", name, err)
	}
	return nil
}

func isKnownTable(name string) bool {
	for _, t := range database.TableNames() {
		if t == name {
			return true
		}
	}
	return false
}

// isUniqueViolation reports whether err came from a unique index.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
