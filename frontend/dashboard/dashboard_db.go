package dashboard

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/warehouse"
)

// LoadStats gathers the admin dashboard figures for warehouseID.
func LoadStats(ctx context.Context, db *sqlite.DB, warehouseID int64, now time.Time) (Stats, error) {
	var s Stats
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		w, err := warehouse.Load(ctx, tx, warehouseID)
		if err != nil {
			return err
		}
		if err := tx.NewRaw(`
SELECT
  (SELECT COUNT(1) FROM locations WHERE warehouse_id = ?) AS locations_count,
  (SELECT COUNT(1) FROM products p JOIN locations l ON l.id = p.location_id WHERE l.warehouse_id = ?) AS occupied_cells,
  (SELECT COUNT(1) FROM products) AS products_count,
  (SELECT COALESCE(SUM(quantity), 0) FROM products) AS total_units,
  (SELECT COUNT(1) FROM products WHERE quantity = 0) AS out_of_stock,
  (SELECT COUNT(1) FROM orders WHERE created_at >= ?) AS orders_today`,
			w.ID, w.ID, dayStart).Scan(ctx, &s); err != nil {
			return err
		}
		s.WarehouseName = w.Name
		s.Rows = w.RowsCount
		s.Columns = w.ColumnsCount
		s.TotalCapacity = w.RowsCount * w.ColumnsCount
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	s.RecentActivity, err = audit.List(ctx, db, audit.Filter{PageSize: RecentActivityLimit, Order: audit.OrderNewest})
	if err != nil {
		return Stats{}, err
	}
	return s, nil
}
