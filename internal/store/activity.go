package store

import (
	"context"
	"fmt"
	"time"

	"go-pos-store/internal/models"
)

// LogActivity appends an audit-trail entry. Failures are reported but
// callers generally log and move on - the audit trail never blocks the
// operation it describes.
func (s *Store) LogActivity(ctx context.Context, userID uint, action, details string) error {
	entry := models.ActivityLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

// GetActivityLogs returns the newest entries first, capped at limit
// (0 means no cap).
func (s *Store) GetActivityLogs(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	q := s.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []models.ActivityLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("get activity logs: %w", err)
	}
	return logs, nil
}
