package database

import (
	"fmt"

	"go-pos-store/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates (or opens) the local database file and syncs the schema.
//
// A failed migration is fatal to the caller: the store must never run
// against a partial schema. Re-opening an existing database is a no-op
// on schema. Use ":memory:" as the path for an ephemeral database.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Settings{},
		&models.ActivityLog{},
		&models.AutoBackup{},
		&models.BackupSettings{},
		&models.UserRole{},
	); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return db, nil
}

// TableNames lists every logical table, in creation order.
func TableNames() []string {
	return []string{
		"users",
		"categories",
		"products",
		"customers",
		"sales",
		"sale_items",
		"settings",
		"activity_logs",
		"auto_backups",
		"backup_settings",
		"user_roles",
	}
}
