package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pos-store/internal/models"

	"gorm.io/gorm"
)

type ProductUpdate struct {
	Name              *string
	SKU               *string
	Barcode           *string
	CategoryID        *uint
	CostPrice         *float64
	SellingPrice      *float64
	Quantity          *int
	LowStockThreshold *int
	Supplier          *string
	Description       *string
	ImageURL          *string
}

// GetAllProducts returns the catalog sorted by name with each product's
// category resolved and attached. A dangling categoryId leaves the
// category nil rather than failing the read.
func (s *Store) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("get all products: %w", err)
	}

	categories, err := s.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}
	for i := range products {
		products[i].Category = byID[products[i].CategoryID]
	}
	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	s.attachCategory(ctx, &product)
	return &product, nil
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %q: %w", sku, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", sku, err)
	}
	s.attachCategory(ctx, &product)
	return &product, nil
}

// GetProductByBarcode serves the POS scanner path.
func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("barcode %q: %w", barcode, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product by barcode %q: %w", barcode, err)
	}
	s.attachCategory(ctx, &product)
	return &product, nil
}

func (s *Store) attachCategory(ctx context.Context, p *models.Product) {
	if p.CategoryID == 0 {
		return
	}
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, p.CategoryID).Error; err == nil {
		p.Category = &category
	}
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("sku = ?", product.SKU).Count(&existing).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("sku %q: %w", product.SKU, ErrDuplicate)
	}
	if product.Barcode != "" {
		if err := s.db.WithContext(ctx).Model(&models.Product{}).
			Where("barcode = ?", product.Barcode).Count(&existing).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("barcode %q: %w", product.Barcode, ErrDuplicate)
		}
	}

	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	if product.Quantity < 0 {
		product.Quantity = 0
	}

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sku %q: %w", product.SKU, ErrDuplicate)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, id uint, upd ProductUpdate) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	if upd.Name != nil {
		product.Name = *upd.Name
	}
	if upd.SKU != nil {
		product.SKU = *upd.SKU
	}
	if upd.Barcode != nil {
		if *upd.Barcode != "" && *upd.Barcode != product.Barcode {
			var existing int64
			if err := s.db.WithContext(ctx).Model(&models.Product{}).
				Where("barcode = ? AND id <> ?", *upd.Barcode, id).Count(&existing).Error; err != nil {
				return nil, fmt.Errorf("update product %d: %w", id, err)
			}
			if existing > 0 {
				return nil, fmt.Errorf("barcode %q: %w", *upd.Barcode, ErrDuplicate)
			}
		}
		product.Barcode = *upd.Barcode
	}
	if upd.CategoryID != nil {
		product.CategoryID = *upd.CategoryID
	}
	if upd.CostPrice != nil {
		product.CostPrice = *upd.CostPrice
	}
	if upd.SellingPrice != nil {
		product.SellingPrice = *upd.SellingPrice
	}
	if upd.Quantity != nil {
		product.Quantity = *upd.Quantity
		if product.Quantity < 0 {
			product.Quantity = 0
		}
	}
	if upd.LowStockThreshold != nil {
		product.LowStockThreshold = *upd.LowStockThreshold
	}
	if upd.Supplier != nil {
		product.Supplier = *upd.Supplier
	}
	if upd.Description != nil {
		product.Description = *upd.Description
	}
	if upd.ImageURL != nil {
		product.ImageURL = *upd.ImageURL
	}
	product.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("sku %q: %w", product.SKU, ErrDuplicate)
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetLowStockProducts returns products at or below their threshold.
func (s *Store) GetLowStockProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	var low []models.Product
	for _, p := range products {
		threshold := p.LowStockThreshold
		if threshold == 0 {
			threshold = 10
		}
		if p.Quantity <= threshold {
			low = append(low, p)
		}
	}
	return low, nil
}
