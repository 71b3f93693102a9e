package main

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"gridstock/frontend/products"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/config"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/warehouse"
)

func openSeedTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	require.NoError(t, sqlite.ApplyMigrations(context.Background(), db, migrationsDir))
	return db
}

func TestSeedPlacesProductsRowByRow(t *testing.T) {
	ctx := context.Background()
	db := openSeedTestDB(t)
	wh, _, err := warehouse.EnsureDefault(ctx, db, warehouse.Params{Name: "Main Warehouse", Rows: 2, Columns: 3})
	require.NoError(t, err)

	created, err := seed(ctx, db, audit.NewService(), wh, 7, 20)
	require.NoError(t, err)
	require.Equal(t, 7, created)

	res, err := products.Lookup(ctx, db, []string{"BAG-001", "BAG-004", "BAG-007"})
	require.NoError(t, err)
	require.Len(t, res, 3)
	require.Equal(t, int64(20), res[0].Quantity)
	require.Len(t, res[0].Locations, 1)
	require.Equal(t, "R1C1", res[0].Locations[0].FullLocation)
	require.Len(t, res[1].Locations, 1)
	require.Equal(t, "R2C1", res[1].Locations[0].FullLocation)
	require.True(t, res[2].Found)
	require.Empty(t, res[2].Locations, "products beyond the grid stay unplaced")

	again, err := seed(ctx, db, audit.NewService(), wh, 7, 20)
	require.NoError(t, err)
	require.Zero(t, again)
}

func TestRunCreatesConfiguredWarehouse(t *testing.T) {
	cfg := &config.Config{
		Database:  config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "seed-run.db")},
		Warehouse: config.WarehouseConfig{Name: "Overflow", Rows: 3, Columns: 4},
	}

	wh, created, err := run(context.Background(), cfg, 5, 7)
	require.NoError(t, err)
	require.Equal(t, "Overflow", wh.Name)
	require.Equal(t, 5, created)

	db, err := sqlite.OpenDB(cfg.Database.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	res, err := products.Lookup(context.Background(), db, []string{"BAG-005"})
	require.NoError(t, err)
	require.Equal(t, int64(7), res[0].Quantity)
	require.Equal(t, "R2C1", res[0].Locations[0].FullLocation)
}
