package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-pos-store/internal/backup"

	"github.com/spf13/cobra"
)

var autobackupCmd = &cobra.Command{
	Use:   "autobackup",
	Short: "Run and inspect automatic backups",
}

var autobackupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Take an automatic backup snapshot now",
	Long: `Run takes a snapshot immediately, stores it inside the database and
evicts the oldest snapshots beyond the configured keep count. The
schedule's last-backup marker advances as if the scheduler had run.`,
	RunE: runAutobackupRun,
}

var autobackupStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the auto-backup schedule and snapshot ring",
	RunE:  runAutobackupStats,
}

var (
	abEnabled   bool
	abFrequency string
	abKeep      int
)

var autobackupConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Change the auto-backup schedule",
	RunE:  runAutobackupConfig,
}

var autobackupWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the backup scheduler in the foreground",
	Long: `Watch checks once immediately and then every hour whether a backup
is due per the configured frequency, taking one when it is. Runs until
interrupted.`,
	RunE: runAutobackupWatch,
}

func init() {
	autobackupConfigCmd.Flags().BoolVar(&abEnabled, "enabled", true, "enable scheduled backups")
	autobackupConfigCmd.Flags().StringVar(&abFrequency, "frequency", "", "daily or weekly (default from POS_BACKUP_FREQUENCY)")
	autobackupConfigCmd.Flags().IntVar(&abKeep, "keep", 0, "snapshots to retain (default from POS_BACKUP_KEEP_COUNT)")

	autobackupCmd.AddCommand(autobackupRunCmd)
	autobackupCmd.AddCommand(autobackupStatsCmd)
	autobackupCmd.AddCommand(autobackupConfigCmd)
	autobackupCmd.AddCommand(autobackupWatchCmd)
	rootCmd.AddCommand(autobackupCmd)
}

func runAutobackupRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	manager := backup.NewAutoBackupManager(a.store, a.engine, a.log)
	row, err := manager.PerformAutoBackup(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Auto backup %d stored (%d bytes)\n", row.ID, len(row.BackupData))
	return nil
}

func runAutobackupWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	manager := backup.NewAutoBackupManager(a.store, a.engine, a.log)
	scheduler := backup.NewScheduler(manager, a.log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	fmt.Println("Backup scheduler running, press Ctrl+C to stop")
	<-ctx.Done()
	scheduler.Stop()
	fmt.Println("Scheduler stopped")
	return nil
}

func runAutobackupConfig(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	manager := backup.NewAutoBackupManager(a.store, a.engine, a.log)

	settings, err := manager.GetBackupSettings(ctx)
	if err != nil {
		return err
	}

	settings.Enabled = abEnabled
	settings.Frequency = a.cfg.Backup.DefaultFrequency
	if abFrequency != "" {
		settings.Frequency = abFrequency
	}
	settings.KeepBackupCount = a.cfg.Backup.DefaultKeepCount
	if abKeep > 0 {
		settings.KeepBackupCount = abKeep
	}

	if err := manager.SaveBackupSettings(ctx, settings); err != nil {
		return err
	}
	fmt.Printf("Schedule updated: %s, keep %d\n", settings.Frequency, settings.KeepBackupCount)
	return nil
}

func runAutobackupStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	manager := backup.NewAutoBackupManager(a.store, a.engine, a.log)

	settings, err := manager.GetBackupSettings(ctx)
	if err != nil {
		return err
	}
	stats := manager.GetStats(ctx)

	state := "disabled"
	if settings.Enabled {
		state = "enabled"
	}
	fmt.Printf("Schedule: %s, %s, keep %d\n", state, settings.Frequency, settings.KeepBackupCount)
	if stats.LastBackupDate != nil {
		fmt.Printf("Last backup: %s\n", stats.LastBackupDate.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Last backup: never")
	}
	fmt.Printf("Snapshots: %d (%d bytes total)\n", stats.Count, stats.TotalSizeBytes)
	if stats.Oldest != nil && stats.Newest != nil {
		fmt.Printf("Range: %s to %s\n",
			stats.Oldest.Format("2006-01-02 15:04:05"),
			stats.Newest.Format("2006-01-02 15:04:05"))
	}

	needed, err := manager.IsBackupNeeded(ctx)
	if err != nil {
		return err
	}
	if needed {
		fmt.Println("A backup is due")
	}
	return nil
}
