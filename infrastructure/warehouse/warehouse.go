package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

const cellInsertChunk = 500

// Params describes a warehouse to create.
type Params struct {
	Name        string
	Description string
	Rows        int
	Columns     int
}

// Summary is a warehouse with its materialised cell count.
type Summary struct {
	models.Warehouse
	LocationsCount int `bun:"locations_count"`
	OccupiedCount  int `bun:"occupied_count"`
}

// Load returns the warehouse with id using tx.
func Load(ctx context.Context, tx bun.IDB, id int64) (models.Warehouse, error) {
	var w models.Warehouse
	err := tx.NewSelect().Model(&w).Where("w.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Warehouse{}, apperr.NotFound("warehouse", strconv.FormatInt(id, 10))
	}
	return w, err
}

// Default returns the first-created warehouse.
func Default(ctx context.Context, db *sqlite.DB) (models.Warehouse, error) {
	var w models.Warehouse
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&w).OrderExpr("w.id ASC").Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Warehouse{}, apperr.NotFound("warehouse", "")
	}
	return w, err
}

// DefaultID returns the id of the first-created warehouse.
func DefaultID(ctx context.Context, db *sqlite.DB) (int64, error) {
	w, err := Default(ctx, db)
	if err != nil {
		return 0, err
	}
	return w.ID, nil
}

// ResolveID parses raw as a warehouse id and falls back to the default
// warehouse when raw is empty.
func ResolveID(ctx context.Context, db *sqlite.DB, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultID(ctx, db)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("warehouse_id", "invalid warehouse id %q", raw)
	}
	return id, nil
}

// EnsureDefault creates a warehouse from params when none exists yet.
// The boolean result reports whether one was created.
func EnsureDefault(ctx context.Context, db *sqlite.DB, params Params) (models.Warehouse, bool, error) {
	w, err := Default(ctx, db)
	if err == nil {
		return w, false, nil
	}
	if !apperr.IsNotFound(err) {
		return models.Warehouse{}, false, err
	}
	w, err = Create(ctx, db, params)
	if err != nil {
		return models.Warehouse{}, false, err
	}
	return w, true, nil
}

// Create inserts a warehouse and materialises every cell of its grid.
func Create(ctx context.Context, db *sqlite.DB, params Params) (models.Warehouse, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return models.Warehouse{}, apperr.Validation("name", "is required")
	}
	if params.Rows < 1 || params.Columns < 1 {
		return models.Warehouse{}, apperr.Validation("rows", "rows and columns must be at least 1")
	}
	w := models.Warehouse{
		Name:         params.Name,
		Description:  strings.TrimSpace(params.Description),
		RowsCount:    params.Rows,
		ColumnsCount: params.Columns,
		CreatedAt:    time.Now().UTC(),
	}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&w).Exec(ctx); err != nil {
			return err
		}
		_, err := MaterializeCells(ctx, tx, w.ID, 1, w.RowsCount, 1, w.ColumnsCount)
		return err
	})
	if err != nil {
		return models.Warehouse{}, fmt.Errorf("create warehouse: %w", err)
	}
	return w, nil
}

// List returns every warehouse with cell and occupancy counts.
func List(ctx context.Context, db *sqlite.DB) ([]Summary, error) {
	out := make([]Summary, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT w.id, w.name, w.description, w.rows_count, w.columns_count, w.created_at,
       (SELECT COUNT(1) FROM locations l WHERE l.warehouse_id = w.id) AS locations_count,
       (SELECT COUNT(1) FROM products p JOIN locations l ON l.id = p.location_id WHERE l.warehouse_id = w.id) AS occupied_count
FROM warehouses w
ORDER BY w.id ASC`).Scan(ctx, &out)
	})
	return out, err
}

// MaterializeCells get-or-creates every cell in the inclusive row and column
// ranges and returns how many were created.
func MaterializeCells(ctx context.Context, tx bun.IDB, warehouseID int64, rowFrom, rowTo, colFrom, colTo int) (int64, error) {
	if rowFrom < 1 || colFrom < 1 || rowTo < rowFrom || colTo < colFrom {
		return 0, nil
	}
	now := time.Now().UTC()
	batch := make([]models.Location, 0, cellInsertChunk)
	var created int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		res, err := tx.NewInsert().
			Model(&batch).
			On("CONFLICT (warehouse_id, row_no, col_no) DO NOTHING").
			Returning("NULL").
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		created += n
		batch = batch[:0]
		return nil
	}

	for row := rowFrom; row <= rowTo; row++ {
		for col := colFrom; col <= colTo; col++ {
			batch = append(batch, models.Location{
				WarehouseID: warehouseID,
				Row:         row,
				Column:      col,
				IsActive:    true,
				CreatedAt:   now,
			})
			if len(batch) == cellInsertChunk {
				if err := flush(); err != nil {
					return created, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return created, err
	}
	return created, nil
}

// Cell returns the location at (row, column), or a NotFoundError.
func Cell(ctx context.Context, tx bun.IDB, warehouseID int64, row, column int) (models.Location, error) {
	var loc models.Location
	err := tx.NewSelect().
		Model(&loc).
		Where("l.warehouse_id = ? AND l.row_no = ? AND l.col_no = ?", warehouseID, row, column).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, apperr.NotFound("location", models.CellRef(row, column))
	}
	return loc, err
}

// EnsureCell get-or-creates the location at (row, column).
func EnsureCell(ctx context.Context, tx bun.IDB, warehouseID int64, row, column int) (models.Location, error) {
	if _, err := MaterializeCells(ctx, tx, warehouseID, row, row, column, column); err != nil {
		return models.Location{}, err
	}
	return Cell(ctx, tx, warehouseID, row, column)
}
