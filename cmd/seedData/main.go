package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"gridstock/frontend/locations"
	"gridstock/frontend/products"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/config"
	"gridstock/infrastructure/logging"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/warehouse"
	"gridstock/models"
)

const seedUser = "seed"

func main() {
	count := flag.Int("products", 15, "number of sample products to create")
	quantity := flag.Int64("quantity", 100, "starting quantity for each sample product")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Encoding: "console", Development: true})
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	wh, created, err := run(context.Background(), cfg, *count, *quantity)
	if err != nil {
		logger.Error("seed sample data", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("seeded sample products", zap.Int("created", created), zap.String("warehouse", wh.Name))
}

func run(ctx context.Context, cfg *config.Config, count int, quantity int64) (models.Warehouse, int, error) {
	db, err := sqlite.OpenDB(cfg.Database.Path)
	if err != nil {
		return models.Warehouse{}, 0, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(ctx, db, cfg.Database.MigrationsDir); err != nil {
		return models.Warehouse{}, 0, fmt.Errorf("apply migrations: %w", err)
	}
	wh, _, err := warehouse.EnsureDefault(ctx, db, warehouse.Params{
		Name:    cfg.Warehouse.Name,
		Rows:    cfg.Warehouse.Rows,
		Columns: cfg.Warehouse.Columns,
	})
	if err != nil {
		return models.Warehouse{}, 0, fmt.Errorf("ensure default warehouse: %w", err)
	}
	created, err := seed(ctx, db, audit.NewService(), wh, count, quantity)
	return wh, created, err
}

// seed creates BAG-001..BAG-<count> and lays them out row by row. Numbers
// that already exist are left alone.
func seed(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, wh models.Warehouse, count int, quantity int64) (int, error) {
	numbers := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		numbers = append(numbers, fmt.Sprintf("BAG-%03d", i))
	}
	existing, err := products.Lookup(ctx, db, numbers)
	if err != nil {
		return 0, err
	}

	created := 0
	for i, res := range existing {
		if res.Found {
			continue
		}
		p, err := products.Create(ctx, db, auditSvc, seedUser, products.Input{
			ProductNumber: res.ProductNumber,
			Name:          "Sample bag " + res.ProductNumber,
			Category:      "Bags",
			Quantity:      quantity,
		})
		if err != nil {
			return created, fmt.Errorf("create %s: %w", res.ProductNumber, err)
		}
		created++

		if i >= wh.RowsCount*wh.ColumnsCount {
			continue
		}
		ref := models.CellRef(i/wh.ColumnsCount+1, i%wh.ColumnsCount+1)
		if _, err := locations.MoveWithShift(ctx, db, auditSvc, seedUser, wh.ID, p.ID, ref); err != nil {
			return created, fmt.Errorf("place %s at %s: %w", p.ProductNumber, ref, err)
		}
	}
	return created, nil
}
