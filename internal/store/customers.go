package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pos-store/internal/models"

	"gorm.io/gorm"
)

type CustomerUpdate struct {
	Name          *string
	Phone         *string
	Email         *string
	LoyaltyPoints *int
	Notes         *string
}

func (s *Store) GetAllCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Order("name").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("get all customers: %w", err)
	}
	return customers, nil
}

func (s *Store) GetCustomerByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return &customer, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id uint, upd CustomerUpdate) (*models.Customer, error) {
	customer, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		customer.Name = *upd.Name
	}
	if upd.Phone != nil {
		customer.Phone = *upd.Phone
	}
	if upd.Email != nil {
		customer.Email = *upd.Email
	}
	if upd.LoyaltyPoints != nil {
		customer.LoyaltyPoints = *upd.LoyaltyPoints
	}
	if upd.Notes != nil {
		customer.Notes = *upd.Notes
	}

	if err := s.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}
	return customer, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Customer{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete customer %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	return nil
}

// RecordPurchase rolls a completed sale into the customer's running
// totals: one loyalty point per whole currency unit spent.
func (s *Store) RecordPurchase(ctx context.Context, id uint, amount float64, when time.Time) error {
	customer, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return err
	}
	customer.LoyaltyPoints += int(amount)
	customer.TotalPurchases += amount
	customer.LastPurchaseDate = &when
	if err := s.db.WithContext(ctx).Save(customer).Error; err != nil {
		return fmt.Errorf("record purchase for customer %d: %w", id, err)
	}
	return nil
}
