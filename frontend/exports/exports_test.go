package exports

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gridstock/frontend/orders"
	"gridstock/frontend/products"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
)

func openExportsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "exports-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	require.NoError(t, sqlite.ApplyMigrations(context.Background(), db, migrationsDir))
	return db
}

func seedCatalog(t *testing.T, db *sqlite.DB) *audit.Service {
	t.Helper()
	ctx := context.Background()
	svc := audit.NewService()
	_, err := products.Create(ctx, db, svc, "ann", products.Input{ProductNumber: "BAG-002", Name: "Tote, large", Category: "bags", Quantity: 20})
	require.NoError(t, err)
	_, err = products.Create(ctx, db, svc, "ann", products.Input{ProductNumber: "BAG-001", Name: "Tote", Quantity: 10})
	require.NoError(t, err)
	_, err = orders.Withdraw(ctx, db, svc, "bob", orders.WithdrawRequest{
		Items:         []orders.WithdrawItem{{Number: "BAG-001", Quantity: 4}},
		RecipientName: "Dock 3",
	})
	require.NoError(t, err)
	return svc
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return records
}

func exportRuns(t *testing.T, db *sqlite.DB, exportType string) int {
	t.Helper()
	var n int
	require.NoError(t, db.R.NewRaw(`SELECT COUNT(1) FROM export_runs WHERE export_type = ?`, exportType).Scan(context.Background(), &n))
	return n
}

func TestProductsExportRoundTripsThroughImport(t *testing.T) {
	db := openExportsTestDB(t)
	svc := seedCatalog(t, db)

	rec := httptest.NewRecorder()
	ProductsExportCSVHandler(db, zap.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasker/exports/products.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "products-")

	records := readCSV(t, rec.Body.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, productsHeader, records[0])
	assert.Equal(t, []string{"BAG-001", "Tote", "6", "", ""}, records[1])
	assert.Equal(t, []string{"BAG-002", "Tote, large", "20", "bags", ""}, records[2])
	assert.Equal(t, 1, exportRuns(t, db, TypeProducts))

	summary, err := products.ImportCSV(context.Background(), db, svc, "ann", bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Unchanged)
	assert.Zero(t, summary.Inserted+summary.Updated+summary.Errors)
}

func TestAuditLogsExport(t *testing.T) {
	db := openExportsTestDB(t)
	seedCatalog(t, db)

	rec := httptest.NewRecorder()
	AuditLogsExportCSVHandler(db, zap.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasker/exports/audit-logs.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	records := readCSV(t, rec.Body.Bytes())
	require.Len(t, records, 4)
	assert.Equal(t, auditLogsHeader, records[0])
	actions := map[string]int{}
	for _, r := range records[1:] {
		actions[r[2]]++
		assert.Regexp(t, `^\d{2}/\d{2}/\d{4} \d{2}:\d{2}$`, r[0])
	}
	assert.Equal(t, 2, actions["added"])
	assert.Equal(t, 1, actions["quantity_taken"])
	assert.Equal(t, 1, exportRuns(t, db, TypeAuditLogs))
}

func TestOrdersExport(t *testing.T) {
	db := openExportsTestDB(t)
	seedCatalog(t, db)

	rec := httptest.NewRecorder()
	OrdersExportCSVHandler(db, zap.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasker/exports/orders.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	records := readCSV(t, rec.Body.Bytes())
	require.Len(t, records, 2)
	assert.Equal(t, ordersHeader, records[0])
	assert.Regexp(t, `^ORD-\d{8}-\d{6}-[0-9A-F]{8}$`, records[1][0])
	assert.Equal(t, []string{"bob", "Dock 3", "1", "4"}, records[1][2:6])
	assert.Equal(t, 1, exportRuns(t, db, TypeOrders))
}
