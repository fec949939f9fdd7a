package backup

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-pos-store/internal/database"
	"go-pos-store/internal/models"
	"go-pos-store/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	st := store.New(db, zap.NewNop())
	return NewEngine(st, zap.NewNop()), st
}

func seedSampleData(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, &models.User{
		Username: "admin", Password: "admin123", Role: "admin", IsActive: true,
	}))
	cat := &models.Category{Name: "Drinks", Color: "#10B981"}
	require.NoError(t, st.CreateCategory(ctx, cat))
	require.NoError(t, st.CreateProduct(ctx, &models.Product{
		Name: "Cola", SKU: "DRNK-001", CategoryID: cat.ID,
		CostPrice: 1, SellingPrice: 2.50, Quantity: 20,
	}))
	require.NoError(t, st.CreateCustomer(ctx, &models.Customer{Name: "Jane"}))
}

func TestExportEnvelopeStructure(t *testing.T) {
	engine, st := newTestEngine(t)
	seedSampleData(t, st)
	fixed := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	engine.now = func() time.Time { return fixed }

	data, err := engine.ExportJSON(context.Background(), DataTables())
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(data), &env))
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.Equal(t, "2026-08-28T10:30:00Z", env.Timestamp)
	assert.Equal(t, SchemaVersion, env.Metadata.SchemaVersion)
	assert.Len(t, env.Tables, len(DataTables()))
	assert.Equal(t, 1, env.Metadata.RecordCounts["users"])
	assert.Equal(t, 1, env.Metadata.RecordCounts["products"])

	// The envelope must carry the password hash, which the API JSON
	// shape normally hides.
	require.Len(t, env.Tables["users"], 1)
	hash, _ := env.Tables["users"][0]["password"].(string)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "admin123", hash)
}

func TestImportRoundTrip(t *testing.T) {
	engine, st := newTestEngine(t)
	seedSampleData(t, st)
	ctx := context.Background()

	data, err := engine.ExportJSON(ctx, DataTables())
	require.NoError(t, err)

	// Drift the live data, then restore.
	require.NoError(t, st.ClearTable(ctx, "products"))
	require.NoError(t, st.CreateCustomer(ctx, &models.Customer{Name: "Extra"}))

	require.NoError(t, engine.ImportJSON(ctx, data))

	products, err := st.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cola", products[0].Name)

	customers, err := st.GetAllCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 1, "import replaces table contents")

	// Credentials survive the round trip.
	user, err := st.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)
}

func TestImportOnlyTouchesEnvelopeTables(t *testing.T) {
	engine, st := newTestEngine(t)
	seedSampleData(t, st)
	ctx := context.Background()

	data, err := engine.ExportJSON(ctx, []string{"categories"})
	require.NoError(t, err)
	require.NoError(t, engine.ImportJSON(ctx, data))

	products, err := st.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1, "tables absent from the envelope stay intact")
}

func TestImportSnakeCaseEnvelope(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	legacy := `{
		"version": "1.0.0",
		"timestamp": "2024-01-15T08:00:00Z",
		"tables": {
			"products": [{
				"id": 1,
				"name": "Old Export",
				"sku": "OLD-001",
				"category_id": 3,
				"cost_price": 4.5,
				"selling_price": 9.99,
				"quantity": 12,
				"low_stock_threshold": 4,
				"image_url": "http://example.com/p.png",
				"created_at": "2024-01-10T00:00:00Z"
			}],
			"customers": [{
				"id": 1,
				"name": "Legacy Customer",
				"loyalty_points": 80,
				"total_purchases": 240.5,
				"last_purchase_date": "2024-01-14T18:30:00Z"
			}]
		},
		"metadata": {"recordCounts": {"products": 1, "customers": 1}, "schemaVersion": "1.0.0"}
	}`
	require.NoError(t, engine.ImportJSON(ctx, legacy))

	p, err := st.GetProductBySKU(ctx, "OLD-001")
	require.NoError(t, err)
	assert.Equal(t, uint(3), p.CategoryID)
	assert.Equal(t, 4.5, p.CostPrice)
	assert.Equal(t, 9.99, p.SellingPrice)
	assert.Equal(t, 12, p.Quantity)
	assert.Equal(t, 4, p.LowStockThreshold)
	assert.Equal(t, "http://example.com/p.png", p.ImageURL)

	customers, err := st.GetAllCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, 80, customers[0].LoyaltyPoints)
	assert.Equal(t, 240.5, customers[0].TotalPurchases)
	require.NotNil(t, customers[0].LastPurchaseDate)
}

func TestImportRejectsUnknownTable(t *testing.T) {
	engine, st := newTestEngine(t)
	seedSampleData(t, st)
	ctx := context.Background()

	bad := `{
		"version": "1.0.0",
		"timestamp": "2026-01-01T00:00:00Z",
		"tables": {"evil_table": []},
		"metadata": {"recordCounts": {}, "schemaVersion": "1.0.0"}
	}`
	err := engine.ImportJSON(ctx, bad)
	require.ErrorIs(t, err, ErrInvalidBackup)

	products, err := st.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1, "rejected import must not clear anything")
}

func TestImportBadRecordRollsBack(t *testing.T) {
	engine, st := newTestEngine(t)
	seedSampleData(t, st)
	ctx := context.Background()

	// Second users record has no username, which the decoder rejects.
	bad := `{
		"version": "1.0.0",
		"timestamp": "2026-01-01T00:00:00Z",
		"tables": {"users": [{"username": "first", "password": "x"}, {"role": "admin"}]},
		"metadata": {"recordCounts": {"users": 2}, "schemaVersion": "1.0.0"}
	}`
	require.Error(t, engine.ImportJSON(ctx, bad))

	users, err := st.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1, "failed import rolls back entirely")
	assert.Equal(t, "admin", users[0].Username)
}

func TestEncryptedRoundTrip(t *testing.T) {
	engine, st := newTestEngine(t)
	seedSampleData(t, st)
	ctx := context.Background()

	blob, err := engine.ExportEncrypted(ctx, DataTables(), "hunter2")
	require.NoError(t, err)
	assert.NotContains(t, blob, "Cola", "payload must not be readable")

	require.NoError(t, st.ClearTable(ctx, "products"))
	require.NoError(t, engine.ImportEncrypted(ctx, blob, "hunter2"))

	products, err := st.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cola", products[0].Name)
}

func TestImportEncryptedWrongPassword(t *testing.T) {
	engine, st := newTestEngine(t)
	seedSampleData(t, st)
	ctx := context.Background()

	blob, err := engine.ExportEncrypted(ctx, DataTables(), "hunter2")
	require.NoError(t, err)

	err = engine.ImportEncrypted(ctx, blob, "wrong")
	require.ErrorIs(t, err, ErrDecryptFailed)

	products, err := st.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1, "failed decryption must not write")
}

func TestValidateBackupData(t *testing.T) {
	engine, st := newTestEngine(t)
	seedSampleData(t, st)

	data, err := engine.ExportJSON(context.Background(), DataTables())
	require.NoError(t, err)

	preview, err := ValidateBackupData(data)
	require.NoError(t, err)
	assert.Equal(t, EnvelopeVersion, preview.Version)
	assert.Equal(t, 1, preview.RecordCounts["users"])
}

func TestValidateBackupDataFailures(t *testing.T) {
	cases := map[string]string{
		"not json":          `DELETE FROM users`,
		"missing version":   `{"timestamp": "t", "tables": {}, "metadata": {"recordCounts": {}}}`,
		"missing timestamp": `{"version": "1.0.0", "tables": {}, "metadata": {"recordCounts": {}}}`,
		"missing tables":    `{"version": "1.0.0", "timestamp": "t", "metadata": {"recordCounts": {}}}`,
		"missing counts":    `{"version": "1.0.0", "timestamp": "t", "tables": {}, "metadata": {}}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateBackupData(data)
			assert.ErrorIs(t, err, ErrInvalidBackup)
		})
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 28, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "pos-backup-2026-08-28T14-05-09.json", Filename(FormatJSON, at))
	assert.Equal(t, "pos-backup-2026-08-28T14-05-09.bak", Filename(FormatEncrypted, at))
}
