package cleardata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go-pos-store/internal/backup"
	"go-pos-store/internal/database"
	"go-pos-store/internal/models"
	"go-pos-store/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestWorkflow(t *testing.T) (*Workflow, *store.Store) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	st := store.New(db, zap.NewNop())
	ctx := context.Background()

	user := &models.User{Username: "admin", Password: "admin123", Role: "admin", IsActive: true}
	require.NoError(t, st.CreateUser(ctx, user))
	require.NoError(t, st.CreateProduct(ctx, &models.Product{
		Name: "Cola", SKU: "DRNK-001", SellingPrice: 2.50, Quantity: 20,
	}))
	require.NoError(t, st.CreateCustomer(ctx, &models.Customer{Name: "Jane"}))

	engine := backup.NewEngine(st, zap.NewNop())
	return NewWorkflow(st, engine, user.ID, t.TempDir(), zap.NewNop()), st
}

func advanceToConfirm(t *testing.T, wf *Workflow, tables []string) {
	t.Helper()
	require.NoError(t, wf.Select(tables))
	require.NoError(t, wf.VerifyPassword(context.Background(), "admin123"))
}

func TestSelectValidation(t *testing.T) {
	wf, _ := newTestWorkflow(t)

	assert.ErrorIs(t, wf.Select(nil), ErrNothingSelected)

	err := wf.Select([]string{"users"})
	require.ErrorIs(t, err, ErrNotClearable)
	err = wf.Select([]string{"settings"})
	require.ErrorIs(t, err, ErrNotClearable)
	err = wf.Select([]string{"products", "bogus"})
	require.ErrorIs(t, err, ErrNotClearable)
	assert.Equal(t, StepSelection, wf.Step(), "failed selection does not advance")

	require.NoError(t, wf.Select([]string{"products"}))
	assert.Equal(t, StepPassword, wf.Step())
}

func TestVerifyPasswordGate(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	ctx := context.Background()
	require.NoError(t, wf.Select([]string{"products"}))

	err := wf.VerifyPassword(ctx, "wrong")
	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.Equal(t, StepPassword, wf.Step(), "wrong password allows retry")

	require.NoError(t, wf.VerifyPassword(ctx, "admin123"))
	assert.Equal(t, StepConfirm, wf.Step())
}

func TestConfirmIsExact(t *testing.T) {
	for _, text := range []string{"delete", "Delete", "DELETE ", " DELETE", "DELETE!", ""} {
		t.Run("rejects "+text, func(t *testing.T) {
			wf, _ := newTestWorkflow(t)
			advanceToConfirm(t, wf, []string{"products"})
			assert.ErrorIs(t, wf.Confirm(text), ErrBadConfirmation)
			assert.Equal(t, StepConfirm, wf.Step())
		})
	}

	wf, _ := newTestWorkflow(t)
	advanceToConfirm(t, wf, []string{"products"})
	require.NoError(t, wf.Confirm("DELETE"))
	assert.Equal(t, StepBackup, wf.Step())
}

func TestStepOrderEnforced(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	ctx := context.Background()

	assert.ErrorIs(t, wf.VerifyPassword(ctx, "admin123"), ErrWrongStep)
	assert.ErrorIs(t, wf.Confirm("DELETE"), ErrWrongStep)
	_, err := wf.Execute(ctx)
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestExecuteClearsSelectedOnly(t *testing.T) {
	wf, st := newTestWorkflow(t)
	ctx := context.Background()
	advanceToConfirm(t, wf, []string{"products"})
	require.NoError(t, wf.Confirm("DELETE"))

	result, err := wf.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"products"}, result.Cleared)
	assert.Empty(t, result.Failed)
	assert.Equal(t, StepComplete, wf.Step())

	products, err := st.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	customers, err := st.GetAllCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 1, "unselected tables survive")

	users, err := st.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1, "accounts are never cleared")
}

func TestExecuteStoresSafetyBackupFirst(t *testing.T) {
	wf, st := newTestWorkflow(t)
	ctx := context.Background()
	advanceToConfirm(t, wf, []string{"products", "customers"})
	require.NoError(t, wf.Confirm("DELETE"))

	result, err := wf.Execute(ctx)
	require.NoError(t, err)
	require.NotZero(t, result.BackupID)
	assert.Contains(t, result.BackupFilename, "pos-backup-")

	// The safety snapshot holds the data that was just cleared.
	var row models.AutoBackup
	require.NoError(t, st.DB().First(&row, result.BackupID).Error)
	assert.Equal(t, 1, row.Metadata.RecordCounts["products"])
	assert.Equal(t, 1, row.Metadata.RecordCounts["customers"])

	engine := backup.NewEngine(st, zap.NewNop())
	require.NoError(t, engine.ImportJSON(ctx, row.BackupData))
	products, err := st.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1, "cleared data is recoverable from the snapshot")
}

func TestClearingSnapshotsKeepsSafetyBackup(t *testing.T) {
	wf, st := newTestWorkflow(t)
	ctx := context.Background()

	// Pre-existing snapshots that the selection is meant to remove.
	require.NoError(t, st.DB().Create(&models.AutoBackup{BackupData: "{}"}).Error)
	require.NoError(t, st.DB().Create(&models.AutoBackup{BackupData: "{}"}).Error)

	advanceToConfirm(t, wf, []string{"products", "auto_backups"})
	require.NoError(t, wf.Confirm("DELETE"))

	result, err := wf.Execute(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"products", "auto_backups"}, result.Cleared)

	// The just-taken safety backup survives as the only snapshot.
	var rows []models.AutoBackup
	require.NoError(t, st.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, result.BackupID, rows[0].ID)
	assert.Equal(t, 1, rows[0].Metadata.RecordCounts["products"])
}

func TestExecuteWritesBackupFile(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	advanceToConfirm(t, wf, []string{"products"})
	require.NoError(t, wf.Confirm("DELETE"))

	result, err := wf.Execute(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, result.BackupFilename)

	raw, err := os.ReadFile(filepath.Join(wf.backupDir, result.BackupFilename))
	require.NoError(t, err)
	preview, err := backup.ValidateBackupData(string(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, preview.RecordCounts["products"])
}

func TestCancelBeforeBackup(t *testing.T) {
	wf, st := newTestWorkflow(t)
	advanceToConfirm(t, wf, []string{"products"})

	require.NoError(t, wf.Cancel())
	assert.Equal(t, StepSelection, wf.Step())
	assert.Empty(t, wf.Selected())

	products, err := st.GetAllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCancelAfterConfirmRefused(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	advanceToConfirm(t, wf, []string{"products"})
	require.NoError(t, wf.Confirm("DELETE"))
	assert.ErrorIs(t, wf.Cancel(), ErrWrongStep)
}

func TestClearableTablesExcludeProtected(t *testing.T) {
	tables := ClearableTables()
	assert.NotContains(t, tables, "users")
	assert.NotContains(t, tables, "settings")
	assert.Contains(t, tables, "sales")
	assert.Contains(t, tables, "sale_items")
}
