// Package report aggregates completed sales into summaries and exports
// them as CSV.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"go-pos-store/internal/models"
	"go-pos-store/internal/store"
)

// SalesSummary covers one date range. Parked and cancelled sales are
// excluded from every figure.
type SalesSummary struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalDiscount float64 `json:"totalDiscount"`
	TotalTax      float64 `json:"totalTax"`
	AverageOrder  float64 `json:"averageOrder"`
}

// TopSeller is one product line aggregated across the range, keyed by
// the name snapshot so renamed or deleted products still report.
type TopSeller struct {
	ProductName  string  `json:"productName"`
	QuantitySold int     `json:"quantitySold"`
	Revenue      float64 `json:"revenue"`
}

type Reporter struct {
	store *store.Store
}

func NewReporter(st *store.Store) *Reporter {
	return &Reporter{store: st}
}

// GetSalesSummary aggregates completed sales between from and to
// (inclusive start, exclusive end).
func (r *Reporter) GetSalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	var summary SalesSummary
	err := r.store.DB().WithContext(ctx).
		Model(&models.Sale{}).
		Select(`COALESCE(SUM(total), 0) as total_revenue,
			COUNT(*) as total_orders,
			COALESCE(SUM(discount_amount), 0) as total_discount,
			COALESCE(SUM(tax_amount), 0) as total_tax`).
		Where("status = ? AND created_at >= ? AND created_at < ?", "completed", from, to).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}
	if summary.TotalOrders > 0 {
		summary.AverageOrder = summary.TotalRevenue / float64(summary.TotalOrders)
	}
	return &summary, nil
}

// GetTopSellers returns the best-selling products by quantity over the
// range, capped at limit.
func (r *Reporter) GetTopSellers(ctx context.Context, from, to time.Time, limit int) ([]TopSeller, error) {
	if limit <= 0 {
		limit = 10
	}
	var sellers []TopSeller
	err := r.store.DB().WithContext(ctx).
		Model(&models.SaleItem{}).
		Select(`sale_items.product_name,
			SUM(sale_items.quantity) as quantity_sold,
			SUM(sale_items.subtotal) as revenue`).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.status = ? AND sales.created_at >= ? AND sales.created_at < ?", "completed", from, to).
		Group("sale_items.product_name").
		Order("quantity_sold desc").
		Limit(limit).
		Scan(&sellers).Error
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	return sellers, nil
}

var csvHeader = []string{
	"Date", "Sale ID", "Customer", "Items",
	"Subtotal", "Discount", "Tax", "Total", "Payment Method",
}

// WriteCSV streams every sale in the range as one CSV row per sale.
// Walk-in sales (no customer on record) are labelled as such.
func (r *Reporter) WriteCSV(ctx context.Context, w io.Writer, from, to time.Time) error {
	var sales []models.Sale
	err := r.store.DB().WithContext(ctx).
		Preload("Items").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Find(&sales).Error
	if err != nil {
		return fmt.Errorf("export sales: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, sale := range sales {
		customer := "Walk-in"
		if sale.CustomerID != nil {
			customer = strconv.FormatUint(uint64(*sale.CustomerID), 10)
		}
		itemCount := 0
		for _, item := range sale.Items {
			itemCount += item.Quantity
		}
		row := []string{
			sale.CreatedAt.Format("2006-01-02 15:04:05"),
			strconv.FormatUint(uint64(sale.ID), 10),
			customer,
			strconv.Itoa(itemCount),
			fmt.Sprintf("%.2f", sale.Subtotal),
			fmt.Sprintf("%.2f", sale.DiscountAmount),
			fmt.Sprintf("%.2f", sale.TaxAmount),
			fmt.Sprintf("%.2f", sale.Total),
			sale.PaymentMethod,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSVFilename names an export after its date.
func CSVFilename(now time.Time) string {
	return fmt.Sprintf("sales-report-%s.csv", now.Format("2006-01-02"))
}
