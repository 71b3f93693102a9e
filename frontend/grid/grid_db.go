package grid

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/warehouse"
	"gridstock/models"
)

// AddRows grows the row extent by count, one full row at a time.
func AddRows(ctx context.Context, db *sqlite.DB, warehouseID int64, count int) (models.Warehouse, error) {
	return add(ctx, db, warehouseID, count, axisRows)
}

// AddColumns grows the column extent by count, one full column at a time.
func AddColumns(ctx context.Context, db *sqlite.DB, warehouseID int64, count int) (models.Warehouse, error) {
	return add(ctx, db, warehouseID, count, axisColumns)
}

func add(ctx context.Context, db *sqlite.DB, warehouseID int64, count int, a axis) (models.Warehouse, error) {
	if count < 1 || count > MaxResizeStep {
		return models.Warehouse{}, apperr.Validation("count", "must be between 1 and %d", MaxResizeStep)
	}
	var w models.Warehouse
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		w, err = warehouse.Load(ctx, tx, warehouseID)
		if err != nil {
			return err
		}
		if a == axisColumns {
			return AppendColumns(ctx, tx, &w, count)
		}
		return AppendRows(ctx, tx, &w, count)
	})
	if err != nil {
		return models.Warehouse{}, fmt.Errorf("add %s: %w", a, err)
	}
	return w, nil
}

// AppendRows adds n rows to w inside tx and materialises their cells.
func AppendRows(ctx context.Context, tx bun.IDB, w *models.Warehouse, n int) error {
	for i := 0; i < n; i++ {
		next := w.RowsCount + 1
		if _, err := warehouse.MaterializeCells(ctx, tx, w.ID, next, next, 1, w.ColumnsCount); err != nil {
			return err
		}
		w.RowsCount = next
	}
	return saveExtent(ctx, tx, w)
}

// AppendColumns adds n columns to w inside tx and materialises their cells.
func AppendColumns(ctx context.Context, tx bun.IDB, w *models.Warehouse, n int) error {
	for i := 0; i < n; i++ {
		next := w.ColumnsCount + 1
		if _, err := warehouse.MaterializeCells(ctx, tx, w.ID, 1, w.RowsCount, next, next); err != nil {
			return err
		}
		w.ColumnsCount = next
	}
	return saveExtent(ctx, tx, w)
}

func saveExtent(ctx context.Context, tx bun.IDB, w *models.Warehouse) error {
	_, err := tx.NewUpdate().
		Model(w).
		Column("rows_count", "columns_count").
		WherePK().
		Exec(ctx)
	return err
}

// RemoveRows drops the last count rows. Hosted products are detached first.
// count must be in [1, rows-1]: at least one row always remains, so removing
// the whole extent is a ValidationError rather than an empty grid.
func RemoveRows(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, warehouseID int64, count int) (RemoveResult, error) {
	return remove(ctx, db, auditSvc, user, warehouseID, count, axisRows)
}

// RemoveColumns drops the last count columns. Hosted products are detached
// first. Like RemoveRows, count must leave at least one column.
func RemoveColumns(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, warehouseID int64, count int) (RemoveResult, error) {
	return remove(ctx, db, auditSvc, user, warehouseID, count, axisColumns)
}

func remove(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, warehouseID int64, count int, a axis) (RemoveResult, error) {
	result := RemoveResult{}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		w, err := warehouse.Load(ctx, tx, warehouseID)
		if err != nil {
			return err
		}
		extent := a.extent(&w)
		if extent <= 1 {
			return apperr.Validation("count", "cannot remove the last of the %s", a)
		}
		if count < 1 || count > extent-1 {
			return apperr.Validation("count", "must be between 1 and %d", extent-1)
		}
		keep := extent - count

		hosted := make([]hostedProduct, 0)
		if err := tx.NewRaw(`
SELECT p.id, p.product_number, p.quantity, l.row_no, l.col_no
FROM products p
JOIN locations l ON l.id = p.location_id
WHERE l.warehouse_id = ? AND l.? > ?
ORDER BY l.row_no ASC, l.col_no ASC`, w.ID, bun.Ident(a.column()), keep).Scan(ctx, &hosted); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, p := range hosted {
			if _, err := tx.NewUpdate().
				Model((*models.Product)(nil)).
				Set("location_id = NULL").
				Set("updated_at = ?", now).
				Where("id = ?", p.ID).
				Exec(ctx); err != nil {
				return err
			}
			if _, err := auditSvc.Record(ctx, tx, audit.Entry{
				Action:         models.ActionLocationRemoved,
				ProductID:      p.ID,
				ProductNumber:  p.ProductNumber,
				QuantityBefore: p.Quantity,
				QuantityAfter:  p.Quantity,
				Notes:          fmt.Sprintf("Removed from %s (grid %s reduced)", models.CellRef(p.Row, p.Column), a),
				User:           user,
			}); err != nil {
				return err
			}
		}

		res, err := tx.NewDelete().
			Model((*models.Location)(nil)).
			Where("warehouse_id = ?", w.ID).
			Where("? > ?", bun.Ident(a.column()), keep).
			Exec(ctx)
		if err != nil {
			return err
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if a == axisColumns {
			w.ColumnsCount = keep
		} else {
			w.RowsCount = keep
		}
		if err := saveExtent(ctx, tx, &w); err != nil {
			return err
		}

		result = RemoveResult{
			Warehouse:        w,
			Rows:             w.RowsCount,
			Columns:          w.ColumnsCount,
			CellsRemoved:     removed,
			ProductsDetached: len(hosted),
		}
		return nil
	})
	if err != nil {
		return RemoveResult{}, fmt.Errorf("remove %s: %w", a, err)
	}
	return result, nil
}

// Backfill creates any missing cell inside the current extent and returns
// how many were created.
func Backfill(ctx context.Context, db *sqlite.DB, warehouseID int64) (int64, error) {
	var created int64
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		w, err := warehouse.Load(ctx, tx, warehouseID)
		if err != nil {
			return err
		}
		created, err = warehouse.MaterializeCells(ctx, tx, w.ID, 1, w.RowsCount, 1, w.ColumnsCount)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("backfill grid: %w", err)
	}
	return created, nil
}

// LoadGrid backfills the warehouse and returns every cell with its occupant.
func LoadGrid(ctx context.Context, db *sqlite.DB, warehouseID int64) (View, error) {
	if _, err := Backfill(ctx, db, warehouseID); err != nil {
		return View{}, err
	}

	var (
		w     models.Warehouse
		cells = make([]cellRow, 0)
	)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		w, err = warehouse.Load(ctx, tx, warehouseID)
		if err != nil {
			return err
		}
		return tx.NewRaw(`
SELECT l.id, l.row_no, l.col_no, l.notes, l.is_active, p.product_number
FROM locations l
LEFT JOIN products p ON p.location_id = l.id
WHERE l.warehouse_id = ? AND l.row_no <= ? AND l.col_no <= ?
ORDER BY l.row_no ASC, l.col_no ASC`, w.ID, w.RowsCount, w.ColumnsCount).Scan(ctx, &cells)
	})
	if err != nil {
		return View{}, fmt.Errorf("load grid: %w", err)
	}

	view := View{
		WarehouseID: w.ID,
		Name:        w.Name,
		Rows:        w.RowsCount,
		Columns:     w.ColumnsCount,
		Grid:        make(map[string]Cell, len(cells)),
	}
	for _, c := range cells {
		cell := Cell{
			LocationID: c.ID,
			Row:        c.Row,
			Column:     c.Column,
			Notes:      c.Notes,
			IsActive:   c.IsActive,
			Products:   []string{},
		}
		if c.ProductNumber != nil {
			cell.HasProducts = true
			cell.Products = append(cell.Products, *c.ProductNumber)
		}
		view.Grid[Key(c.Row, c.Column)] = cell
	}
	return view, nil
}

// Key is the grid map key for a cell.
func Key(row, column int) string {
	return strconv.Itoa(row) + "," + strconv.Itoa(column)
}
