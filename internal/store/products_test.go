package store

import (
	"context"
	"testing"

	"go-pos-store/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProduct(t *testing.T, s *Store, sku string, qty int, price float64) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:         "Product " + sku,
		SKU:          sku,
		SellingPrice: price,
		CostPrice:    price / 2,
		Quantity:     qty,
	}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	s := newTestStore(t)
	createTestProduct(t, s, "SKU-1", 10, 9.99)

	err := s.CreateProduct(context.Background(), &models.Product{
		Name: "Other", SKU: "SKU-1", SellingPrice: 5,
	})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProduct(ctx, &models.Product{
		Name: "A", SKU: "SKU-1", Barcode: "111", SellingPrice: 5,
	}))
	err := s.CreateProduct(ctx, &models.Product{
		Name: "B", SKU: "SKU-2", Barcode: "111", SellingPrice: 5,
	})
	require.ErrorIs(t, err, ErrDuplicate)

	// Empty barcodes never collide.
	require.NoError(t, s.CreateProduct(ctx, &models.Product{Name: "C", SKU: "SKU-3", SellingPrice: 5}))
	require.NoError(t, s.CreateProduct(ctx, &models.Product{Name: "D", SKU: "SKU-4", SellingPrice: 5}))
}

func TestCreateProductClampsNegativeQuantity(t *testing.T) {
	s := newTestStore(t)
	p := createTestProduct(t, s, "SKU-1", -5, 9.99)
	assert.Equal(t, 0, p.Quantity)
}

func TestUpdateProductDuplicateBarcode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProduct(ctx, &models.Product{
		Name: "A", SKU: "SKU-1", Barcode: "111", SellingPrice: 5,
	}))
	b := &models.Product{Name: "B", SKU: "SKU-2", Barcode: "222", SellingPrice: 5}
	require.NoError(t, s.CreateProduct(ctx, b))

	taken := "111"
	_, err := s.UpdateProduct(ctx, b.ID, ProductUpdate{Barcode: &taken})
	require.ErrorIs(t, err, ErrDuplicate)

	after, err := s.GetProductByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "222", after.Barcode, "rejected update must not change the row")

	// Re-asserting its own barcode is not a collision.
	own := "222"
	_, err = s.UpdateProduct(ctx, b.ID, ProductUpdate{Barcode: &own})
	require.NoError(t, err)

	// Clearing the barcode is always allowed, repeatedly.
	empty := ""
	_, err = s.UpdateProduct(ctx, b.ID, ProductUpdate{Barcode: &empty})
	require.NoError(t, err)
	a, err := s.GetProductBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	_, err = s.UpdateProduct(ctx, a.ID, ProductUpdate{Barcode: &empty})
	require.NoError(t, err)
}

func TestUpdateProductClampsNegativeQuantity(t *testing.T) {
	s := newTestStore(t)
	p := createTestProduct(t, s, "SKU-1", 10, 9.99)

	qty := -3
	updated, err := s.UpdateProduct(context.Background(), p.ID, ProductUpdate{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Quantity)
}

func TestGetProductByBarcode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateProduct(ctx, &models.Product{
		Name: "Scanned", SKU: "SKU-1", Barcode: "4006381333931", SellingPrice: 3.49,
	}))

	p, err := s.GetProductByBarcode(ctx, "4006381333931")
	require.NoError(t, err)
	assert.Equal(t, "Scanned", p.Name)

	_, err = s.GetProductByBarcode(ctx, "0000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllProductsAttachesCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cat := &models.Category{Name: "Drinks"}
	require.NoError(t, s.CreateCategory(ctx, cat))
	require.NoError(t, s.CreateProduct(ctx, &models.Product{
		Name: "Cola", SKU: "SKU-1", CategoryID: cat.ID, SellingPrice: 2,
	}))
	// Dangling category reference stays readable.
	require.NoError(t, s.CreateProduct(ctx, &models.Product{
		Name: "Orphan", SKU: "SKU-2", CategoryID: 999, SellingPrice: 2,
	}))

	products, err := s.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	byName := map[string]models.Product{}
	for _, p := range products {
		byName[p.Name] = p
	}
	require.NotNil(t, byName["Cola"].Category)
	assert.Equal(t, "Drinks", byName["Cola"].Category.Name)
	assert.Nil(t, byName["Orphan"].Category)
}

func TestGetLowStockProducts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProduct(ctx, &models.Product{
		Name: "Low", SKU: "SKU-1", Quantity: 2, LowStockThreshold: 5, SellingPrice: 1,
	}))
	require.NoError(t, s.CreateProduct(ctx, &models.Product{
		Name: "Fine", SKU: "SKU-2", Quantity: 50, LowStockThreshold: 5, SellingPrice: 1,
	}))
	// Threshold zero falls back to the default of 10.
	require.NoError(t, s.CreateProduct(ctx, &models.Product{
		Name: "DefaultThreshold", SKU: "SKU-3", Quantity: 8, SellingPrice: 1,
	}))

	low, err := s.GetLowStockProducts(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(low))
	for _, p := range low {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"Low", "DefaultThreshold"}, names)
}
