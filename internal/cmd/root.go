// Package cmd wires the CLI commands around the store.
package cmd

import (
	"fmt"
	"os"

	"go-pos-store/internal/backup"
	"go-pos-store/internal/config"
	"go-pos-store/internal/database"
	"go-pos-store/internal/store"
	"go-pos-store/internal/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "pos",
	Short: "Local point-of-sale data store",
	Long: `pos manages a local point-of-sale database: seeding, backups,
restores, scheduled auto-backups, guarded data clearing and sales
reports. All data lives in a single SQLite file; no server, no network.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a command needs. Built per invocation, torn
// down when the command returns.
type app struct {
	cfg    *config.Config
	db     *gorm.DB
	store  *store.Store
	engine *backup.Engine
	log    *zap.Logger
}

func newApp() (*app, error) {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Env); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	log := util.GetLogger()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	st := store.New(db, log)
	return &app{
		cfg:    cfg,
		db:     db,
		store:  st,
		engine: backup.NewEngine(st, log),
		log:    log,
	}, nil
}

func (a *app) close() {
	util.SyncLogger()
}
