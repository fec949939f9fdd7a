package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go-pos-store/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CartLine is one line of a checkout request. UnitPrice zero means
// "charge the product's current selling price".
type CartLine struct {
	ProductID uint
	Quantity  int
	UnitPrice float64
}

// CheckStock pre-validates a cart against current stock so the POS
// screen can refuse an oversell before committing anything.
func (s *Store) CheckStock(ctx context.Context, lines []CartLine) error {
	for _, line := range lines {
		product, err := s.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if product.Quantity < line.Quantity {
			return fmt.Errorf("%s: have %d, want %d: %w",
				product.Name, product.Quantity, line.Quantity, ErrInsufficientStock)
		}
	}
	return nil
}

// CreateSale performs the compound checkout write: the sale row, one
// sale item per cart line (with the product name snapshotted and the
// line subtotal computed), and a stock decrement per referenced product,
// clamped at zero. The whole thing runs in one transaction - either
// every row and every decrement lands, or none do.
//
// Fixed write order inside the transaction: sale -> items -> stock.
func (s *Store) CreateSale(ctx context.Context, sale *models.Sale, lines []CartLine) (uint, error) {
	if len(lines) == 0 {
		return 0, errors.New("create sale: empty cart")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		type decrement struct {
			product *models.Product
			qty     int
		}
		var decrements []decrement
		var items []models.SaleItem

		for _, line := range lines {
			var product models.Product
			// SQLite serializes writers inside a transaction; no
			// row lock needed here.
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", line.ProductID, ErrNotFound)
				}
				return fmt.Errorf("loading product %d: %w", line.ProductID, err)
			}

			unitPrice := line.UnitPrice
			if unitPrice == 0 {
				unitPrice = product.SellingPrice
			}
			items = append(items, models.SaleItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   unitPrice,
				Subtotal:    math.Round(unitPrice*float64(line.Quantity)*100) / 100,
			})
			decrements = append(decrements, decrement{product: &product, qty: line.Quantity})
		}

		if sale.Status == "" {
			sale.Status = "completed"
		}
		if sale.CreatedAt.IsZero() {
			sale.CreatedAt = time.Now()
		}
		sale.Items = items

		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("creating sale record: %w", err)
		}

		for _, d := range decrements {
			d.product.Quantity -= d.qty
			if d.product.Quantity < 0 {
				d.product.Quantity = 0
			}
			d.product.UpdatedAt = time.Now()
			if err := tx.Save(d.product).Error; err != nil {
				return fmt.Errorf("updating stock for product %d: %w", d.product.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create sale: %w", err)
	}

	if sale.Status == "completed" && sale.CustomerID != nil {
		if err := s.RecordPurchase(ctx, *sale.CustomerID, sale.Total, sale.CreatedAt); err != nil {
			// The sale itself is committed; a failed loyalty update
			// is reported but does not undo the checkout.
			s.log.Warn("sale committed but loyalty update failed",
				zap.Uint("saleId", sale.ID),
				zap.Uint("customerId", *sale.CustomerID),
				zap.Error(err))
		}
	}

	return sale.ID, nil
}

// GetAllSales returns sales newest first with their line items and a
// summary of the cashier attached.
func (s *Store) GetAllSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	if err := s.db.WithContext(ctx).Preload("Items").
		Order("created_at desc").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("get all sales: %w", err)
	}

	users, err := s.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range sales {
		if u, ok := byID[sales[i].UserID]; ok {
			sales[i].User = &models.UserSummary{Username: u.Username, FullName: u.FullName}
		}
	}
	return sales, nil
}

func (s *Store) GetSaleByID(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).Preload("Items").First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("sale %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get sale %d: %w", id, err)
	}
	if user, err := s.GetUserByID(ctx, sale.UserID); err == nil {
		sale.User = &models.UserSummary{Username: user.Username, FullName: user.FullName}
	}
	return &sale, nil
}

// GetSaleItems returns the line items of one sale.
func (s *Store) GetSaleItems(ctx context.Context, saleID uint) ([]models.SaleItem, error) {
	var items []models.SaleItem
	if err := s.db.WithContext(ctx).Where("sale_id = ?", saleID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("get sale items for sale %d: %w", saleID, err)
	}
	return items, nil
}

// UpdateSaleStatus applies an explicit cancel/park/complete transition.
// Everything else about a sale is immutable once created.
func (s *Store) UpdateSaleStatus(ctx context.Context, id uint, status string) error {
	switch status {
	case "completed", "parked", "cancelled":
	default:
		return fmt.Errorf("update sale %d: invalid status %q", id, status)
	}
	res := s.db.WithContext(ctx).Model(&models.Sale{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update sale %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("sale %d: %w", id, ErrNotFound)
	}
	return nil
}
