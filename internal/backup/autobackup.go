package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-pos-store/internal/models"
	"go-pos-store/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Auto-backup frequencies and their staleness thresholds.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"

	dailyInterval  = 24 * time.Hour
	weeklyInterval = 168 * time.Hour

	// How often the scheduler re-checks whether a backup is due. The
	// check is cheap, so it runs far more often than backups happen.
	checkInterval = time.Hour

	DefaultKeepBackupCount = 7
)

// AutoBackupManager owns the backup_settings row and the auto_backups
// ring: it decides when a snapshot is due, takes it, and evicts the
// oldest snapshots beyond the keep count.
type AutoBackupManager struct {
	store  *store.Store
	engine *Engine
	log    *zap.Logger
	now    func() time.Time
}

func NewAutoBackupManager(st *store.Store, engine *Engine, log *zap.Logger) *AutoBackupManager {
	return &AutoBackupManager{store: st, engine: engine, log: log, now: time.Now}
}

// GetBackupSettings returns the persisted settings, or defaults
// (enabled, daily, keep 7) when the row was never written.
func (m *AutoBackupManager) GetBackupSettings(ctx context.Context) (*models.BackupSettings, error) {
	var all []models.BackupSettings
	if err := m.store.DB().WithContext(ctx).Limit(1).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("get backup settings: %w", err)
	}
	if len(all) == 0 {
		return &models.BackupSettings{
			Enabled:         true,
			Frequency:       FrequencyDaily,
			KeepBackupCount: DefaultKeepBackupCount,
		}, nil
	}
	return &all[0], nil
}

// SaveBackupSettings persists the singleton row, creating it on first
// write.
func (m *AutoBackupManager) SaveBackupSettings(ctx context.Context, settings *models.BackupSettings) error {
	if settings.Frequency != FrequencyDaily && settings.Frequency != FrequencyWeekly {
		return fmt.Errorf("invalid backup frequency %q", settings.Frequency)
	}
	if settings.KeepBackupCount <= 0 {
		settings.KeepBackupCount = DefaultKeepBackupCount
	}

	current, err := m.GetBackupSettings(ctx)
	if err != nil {
		return err
	}
	settings.ID = current.ID
	settings.UpdatedAt = m.now()

	if err := m.store.DB().WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("save backup settings: %w", err)
	}
	return nil
}

// IsBackupNeeded reports whether enough time has passed since the last
// auto backup. Disabled settings never need one; a store that has never
// been backed up always does.
func (m *AutoBackupManager) IsBackupNeeded(ctx context.Context) (bool, error) {
	settings, err := m.GetBackupSettings(ctx)
	if err != nil {
		return false, err
	}
	if !settings.Enabled {
		return false, nil
	}
	if settings.LastBackupDate == nil {
		return true, nil
	}

	interval := dailyInterval
	if settings.Frequency == FrequencyWeekly {
		interval = weeklyInterval
	}
	return m.now().Sub(*settings.LastBackupDate) >= interval, nil
}

// PerformAutoBackup snapshots the data tables into an auto_backups row,
// advances the last-backup marker, and evicts snapshots beyond the keep
// count. The marker only advances after the snapshot row is committed,
// so a failed backup is retried on the next check.
func (m *AutoBackupManager) PerformAutoBackup(ctx context.Context) (*models.AutoBackup, error) {
	data, err := m.engine.ExportJSON(ctx, DataTables())
	if err != nil {
		return nil, fmt.Errorf("auto backup export: %w", err)
	}

	counts := make(map[string]int, len(DataTables()))
	var env Envelope
	if jsonErr := json.Unmarshal([]byte(data), &env); jsonErr == nil {
		counts = env.Metadata.RecordCounts
	}

	row := models.AutoBackup{
		BackupData: data,
		Metadata: models.BackupMetadata{
			RecordCounts: counts,
			Version:      EnvelopeVersion,
		},
		CreatedAt: m.now(),
	}
	if err := m.store.DB().WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("auto backup save: %w", err)
	}

	settings, err := m.GetBackupSettings(ctx)
	if err != nil {
		return nil, err
	}
	when := m.now()
	settings.LastBackupDate = &when
	if err := m.SaveBackupSettings(ctx, settings); err != nil {
		return nil, err
	}

	if err := m.evictOldBackups(ctx, settings.KeepBackupCount); err != nil {
		// The snapshot itself succeeded; eviction will run again next
		// cycle.
		m.log.Warn("auto backup eviction failed", zap.Error(err))
	}

	m.log.Info("auto backup completed",
		zap.Uint("backupId", row.ID),
		zap.Int("size", len(data)))
	return &row, nil
}

// evictOldBackups deletes the oldest snapshots until at most keep
// remain.
func (m *AutoBackupManager) evictOldBackups(ctx context.Context, keep int) error {
	if keep <= 0 {
		keep = DefaultKeepBackupCount
	}

	var count int64
	db := m.store.DB().WithContext(ctx)
	if err := db.Model(&models.AutoBackup{}).Count(&count).Error; err != nil {
		return err
	}
	excess := int(count) - keep
	if excess <= 0 {
		return nil
	}

	var victims []models.AutoBackup
	if err := db.Select("id").Order("created_at asc").Limit(excess).Find(&victims).Error; err != nil {
		return err
	}
	ids := make([]uint, 0, len(victims))
	for _, v := range victims {
		ids = append(ids, v.ID)
	}
	return db.Delete(&models.AutoBackup{}, ids).Error
}

// ListAutoBackups returns snapshots newest first, without the payload
// column so listing stays cheap.
func (m *AutoBackupManager) ListAutoBackups(ctx context.Context) ([]models.AutoBackup, error) {
	var rows []models.AutoBackup
	err := m.store.DB().WithContext(ctx).
		Select("id", "metadata", "created_at").
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list auto backups: %w", err)
	}
	return rows, nil
}

// GetAutoBackup loads one snapshot with its payload.
func (m *AutoBackupManager) GetAutoBackup(ctx context.Context, id uint) (*models.AutoBackup, error) {
	var row models.AutoBackup
	err := m.store.DB().WithContext(ctx).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("auto backup %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get auto backup: %w", err)
	}
	return &row, nil
}

// Stats describes the auto-backup ring for status displays.
type Stats struct {
	Count          int
	TotalSizeBytes int64
	Oldest         *time.Time
	Newest         *time.Time
	LastBackupDate *time.Time
}

// GetStats degrades to a zeroed report rather than failing the status
// screen over a broken table.
func (m *AutoBackupManager) GetStats(ctx context.Context) Stats {
	stats := Stats{}
	db := m.store.DB().WithContext(ctx)

	var rows []models.AutoBackup
	if err := db.Select("id", "backup_data", "created_at").Order("created_at asc").Find(&rows).Error; err != nil {
		m.log.Warn("auto backup stats unavailable", zap.Error(err))
		return stats
	}
	stats.Count = len(rows)
	for _, row := range rows {
		stats.TotalSizeBytes += int64(len(row.BackupData))
	}
	if len(rows) > 0 {
		oldest := rows[0].CreatedAt
		newest := rows[len(rows)-1].CreatedAt
		stats.Oldest = &oldest
		stats.Newest = &newest
	}

	if settings, err := m.GetBackupSettings(ctx); err == nil {
		stats.LastBackupDate = settings.LastBackupDate
	}
	return stats
}

// Scheduler drives the manager on an hourly check loop.
type Scheduler struct {
	manager *AutoBackupManager
	log     *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewScheduler(manager *AutoBackupManager, log *zap.Logger) *Scheduler {
	return &Scheduler{manager: manager, log: log}
}

// Start runs an immediate check, then re-checks hourly until the
// context is cancelled or Stop is called. Calling Start on a running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		s.checkAndRun(ctx)

		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.checkAndRun(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight backup to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// TriggerManualBackup takes a snapshot right now, regardless of the
// schedule.
func (s *Scheduler) TriggerManualBackup(ctx context.Context) (*models.AutoBackup, error) {
	return s.manager.PerformAutoBackup(ctx)
}

func (s *Scheduler) checkAndRun(ctx context.Context) {
	needed, err := s.manager.IsBackupNeeded(ctx)
	if err != nil {
		s.log.Warn("auto backup check failed", zap.Error(err))
		return
	}
	if !needed {
		return
	}
	if _, err := s.manager.PerformAutoBackup(ctx); err != nil {
		// Logged, never fatal: the next tick retries.
		s.log.Error("scheduled backup failed", zap.Error(err))
	}
}
