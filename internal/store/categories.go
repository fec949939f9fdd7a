package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pos-store/internal/models"

	"gorm.io/gorm"
)

type CategoryUpdate struct {
	Name        *string
	Description *string
	Color       *string
}

func (s *Store) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("get all categories: %w", err)
	}
	return categories, nil
}

func (s *Store) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &category, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("name = ?", category.Name).Count(&existing).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("category %q: %w", category.Name, ErrDuplicate)
	}

	now := time.Now()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", category.Name, ErrDuplicate)
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, id uint, upd CategoryUpdate) (*models.Category, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && *upd.Name != category.Name {
		var existing int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).
			Where("name = ? AND id <> ?", *upd.Name, id).Count(&existing).Error; err != nil {
			return nil, fmt.Errorf("update category %d: %w", id, err)
		}
		if existing > 0 {
			return nil, fmt.Errorf("category %q: %w", *upd.Name, ErrDuplicate)
		}
		category.Name = *upd.Name
	}
	if upd.Description != nil {
		category.Description = *upd.Description
	}
	if upd.Color != nil {
		category.Color = *upd.Color
	}
	category.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(category).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("category %q: %w", category.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	return category, nil
}

// DeleteCategory removes the category without touching its products.
// Their categoryId goes dangling and readers show them as uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete category %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return nil
}
