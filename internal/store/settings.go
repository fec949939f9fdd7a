package store

import (
	"context"
	"fmt"
	"time"

	"go-pos-store/internal/models"
)

// GetSettings returns the settings singleton, or nil when the store has
// never been seeded.
func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	var all []models.Settings
	if err := s.db.WithContext(ctx).Limit(1).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return &all[0], nil
}

// UpdateSettings merge-updates the singleton: the current row (or a
// fresh zero row on first write) is handed to mutate, then persisted.
func (s *Store) UpdateSettings(ctx context.Context, mutate func(*models.Settings)) (*models.Settings, error) {
	current, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = &models.Settings{}
	}

	mutate(current)
	current.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(current).Error; err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return current, nil
}
