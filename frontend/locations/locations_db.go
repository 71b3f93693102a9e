package locations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"gridstock/frontend/grid"
	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/warehouse"
	"gridstock/models"
)

// MoveWithShift moves a product to ref inside one write transaction. When the
// move stays in one column, the products between the old and new rows slide
// one row towards the vacated cell, keeping their relative order.
func MoveWithShift(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, warehouseID, productID int64, ref string) (MoveResult, error) {
	row, column, err := ParseCellRef(ref)
	if err != nil {
		return MoveResult{}, err
	}

	var result MoveResult
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		w, err := warehouse.Load(ctx, tx, warehouseID)
		if err != nil {
			return err
		}
		p, err := loadProduct(ctx, tx, productID)
		if err != nil {
			return err
		}

		if row > w.RowsCount {
			result.RowsAdded = row - w.RowsCount
			if err := grid.AppendRows(ctx, tx, &w, result.RowsAdded); err != nil {
				return err
			}
		}
		if column > w.ColumnsCount {
			return fmt.Errorf("location not found after grid extension: %w", apperr.NotFound("location", models.CellRef(row, column)))
		}
		target, err := warehouse.EnsureCell(ctx, tx, w.ID, row, column)
		if err != nil {
			return err
		}
		result.To = target.FullLocation()

		old, err := currentLocation(ctx, tx, p)
		if err != nil {
			return err
		}
		if old != nil {
			result.From = old.FullLocation()
			if old.ID == target.ID {
				result.Message = fmt.Sprintf("Product %s is already at %s", p.ProductNumber, result.To)
				return nil
			}
		}

		plan, err := planCascade(ctx, tx, w.ID, p.ID, old, target)
		if err != nil {
			return err
		}
		planned := make(map[int64]struct{}, len(plan))
		for _, s := range plan {
			planned[s.ProductID] = struct{}{}
		}

		occ, err := occupantOf(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		if occ != nil && occ.ID != p.ID {
			if _, ok := planned[occ.ID]; !ok {
				return &apperr.OccupiedError{Location: target.FullLocation(), ProductNumber: occ.ProductNumber}
			}
		}

		detach := make([]int64, 0, len(plan)+1)
		detach = append(detach, p.ID)
		for _, s := range plan {
			detach = append(detach, s.ProductID)
		}
		now := time.Now().UTC()
		if _, err := tx.NewUpdate().
			Model((*models.Product)(nil)).
			Set("location_id = NULL").
			Set("updated_at = ?", now).
			Where("id IN (?)", bun.In(detach)).
			Exec(ctx); err != nil {
			return err
		}

		if err := attach(ctx, tx, p.ID, target, now); err != nil {
			return err
		}
		notes := "Assigned to " + target.FullLocation()
		if old != nil {
			notes = fmt.Sprintf("Moved from %s to %s", old.FullLocation(), target.FullLocation())
		}
		if _, err := auditSvc.Record(ctx, tx, audit.Entry{
			Action:         models.ActionLocationAssigned,
			ProductID:      p.ID,
			ProductNumber:  p.ProductNumber,
			QuantityBefore: p.Quantity,
			QuantityAfter:  p.Quantity,
			Notes:          notes,
			User:           user,
		}); err != nil {
			return err
		}

		for _, s := range plan {
			if s.ToRow > w.RowsCount {
				result.RowsAdded += s.ToRow - w.RowsCount
				if err := grid.AppendRows(ctx, tx, &w, s.ToRow-w.RowsCount); err != nil {
					return err
				}
			}
			cell, err := warehouse.EnsureCell(ctx, tx, w.ID, s.ToRow, s.Column)
			if err != nil {
				return err
			}
			if err := attach(ctx, tx, s.ProductID, cell, now); err != nil {
				return err
			}
			if _, err := auditSvc.Record(ctx, tx, audit.Entry{
				Action:         models.ActionLocationAssigned,
				ProductID:      s.ProductID,
				ProductNumber:  s.ProductNumber,
				QuantityBefore: s.Quantity,
				QuantityAfter:  s.Quantity,
				Notes:          fmt.Sprintf("Shifted from %s to %s (move of %s)", models.CellRef(s.Row, s.Column), cell.FullLocation(), p.ProductNumber),
				User:           user,
			}); err != nil {
				return err
			}
		}

		result.Shifted = len(plan)
		result.Message = fmt.Sprintf("Moved %s to %s", p.ProductNumber, target.FullLocation())
		if len(plan) > 0 {
			result.Message += fmt.Sprintf(", shifted %d products", len(plan))
		}
		return nil
	})
	if err != nil {
		return MoveResult{}, err
	}
	return result, nil
}

// planCascade lists the neighbours to shift for a same-column move, ordered
// by ascending source row.
func planCascade(ctx context.Context, tx bun.Tx, warehouseID, productID int64, old *models.Location, target models.Location) ([]shift, error) {
	if old == nil || old.WarehouseID != warehouseID || old.Column != target.Column || old.Row == target.Row {
		return nil, nil
	}
	lo, hi, step := old.Row+1, target.Row, -1
	if target.Row < old.Row {
		lo, hi, step = target.Row, old.Row-1, 1
	}

	plan := make([]shift, 0)
	if err := tx.NewRaw(`
SELECT p.id, p.product_number, p.quantity, l.row_no, l.col_no
FROM products p
JOIN locations l ON l.id = p.location_id
WHERE l.warehouse_id = ? AND l.col_no = ? AND l.row_no BETWEEN ? AND ? AND p.id <> ?
ORDER BY l.row_no ASC`, warehouseID, target.Column, lo, hi, productID).Scan(ctx, &plan); err != nil {
		return nil, err
	}
	for i := range plan {
		plan[i].ToRow = plan[i].Row + step
	}
	return plan, nil
}

// Assign places a product directly on a location without any cascade.
func Assign(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, productID, locationID int64) (MoveResult, error) {
	var result MoveResult
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		p, err := loadProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		target, err := loadLocation(ctx, tx, locationID)
		if err != nil {
			return err
		}
		result.To = target.FullLocation()
		old, err := currentLocation(ctx, tx, p)
		if err != nil {
			return err
		}
		if old != nil {
			result.From = old.FullLocation()
			if old.ID == target.ID {
				result.Message = fmt.Sprintf("Product %s is already at %s", p.ProductNumber, result.To)
				return nil
			}
		}
		occ, err := occupantOf(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		if occ != nil {
			return &apperr.OccupiedError{Location: target.FullLocation(), ProductNumber: occ.ProductNumber}
		}
		if err := attach(ctx, tx, p.ID, target, time.Now().UTC()); err != nil {
			return err
		}
		notes := "Assigned to " + target.FullLocation()
		if old != nil {
			notes = fmt.Sprintf("Moved from %s to %s", old.FullLocation(), target.FullLocation())
		}
		if _, err := auditSvc.Record(ctx, tx, audit.Entry{
			Action:         models.ActionLocationAssigned,
			ProductID:      p.ID,
			ProductNumber:  p.ProductNumber,
			QuantityBefore: p.Quantity,
			QuantityAfter:  p.Quantity,
			Notes:          notes,
			User:           user,
		}); err != nil {
			return err
		}
		result.Message = fmt.Sprintf("Assigned %s to %s", p.ProductNumber, target.FullLocation())
		return nil
	})
	if err != nil {
		return MoveResult{}, err
	}
	return result, nil
}

// Unassign clears a product's location. A product without one is left as is.
func Unassign(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, productID int64) (MoveResult, error) {
	var result MoveResult
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		p, err := loadProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		old, err := currentLocation(ctx, tx, p)
		if err != nil {
			return err
		}
		if old == nil {
			result.Message = fmt.Sprintf("Product %s has no location", p.ProductNumber)
			return nil
		}
		result.From = old.FullLocation()
		if _, err := tx.NewUpdate().
			Model((*models.Product)(nil)).
			Set("location_id = NULL").
			Set("updated_at = ?", time.Now().UTC()).
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
			Notes:          "Removed from " + old.FullLocation(),
			User:           user,
		}); err != nil {
			return err
		}
		result.Message = fmt.Sprintf("Removed %s from %s", p.ProductNumber, old.FullLocation())
		return nil
	})
	if err != nil {
		return MoveResult{}, err
	}
	return result, nil
}

// List returns a warehouse's cells ordered by row and column, optionally
// filtered on a notes substring.
func List(ctx context.Context, db *sqlite.DB, warehouseID int64, search string) ([]CellListing, error) {
	search = strings.TrimSpace(search)
	out := make([]CellListing, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := warehouse.Load(ctx, tx, warehouseID); err != nil {
			return err
		}
		return tx.NewRaw(`
SELECT l.id, l.warehouse_id, l.row_no, l.col_no, l.notes, l.is_active, l.created_at,
       p.id AS product_id, p.product_number, p.name AS product_name
FROM locations l
LEFT JOIN products p ON p.location_id = l.id
WHERE l.warehouse_id = ? AND (? = '' OR instr(lower(l.notes), lower(?)) > 0)
ORDER BY l.row_no ASC, l.col_no ASC`, warehouseID, search, search).Scan(ctx, &out)
	})
	return out, err
}

// UpdateCell edits a location's notes and active flag.
func UpdateCell(ctx context.Context, db *sqlite.DB, locationID int64, notes string, isActive bool) (models.Location, error) {
	var loc models.Location
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		loc, err = loadLocation(ctx, tx, locationID)
		if err != nil {
			return err
		}
		loc.Notes = strings.TrimSpace(notes)
		loc.IsActive = isActive
		_, err = tx.NewUpdate().Model(&loc).Column("notes", "is_active").WherePK().Exec(ctx)
		return err
	})
	return loc, err
}

func attach(ctx context.Context, tx bun.Tx, productID int64, loc models.Location, at time.Time) error {
	_, err := tx.NewUpdate().
		Model((*models.Product)(nil)).
		Set("location_id = ?", loc.ID).
		Set("updated_at = ?", at).
		Where("id = ?", productID).
		Exec(ctx)
	if sqlite.IsUniqueViolation(err) {
		return &apperr.OccupiedError{Location: loc.FullLocation()}
	}
	return err
}

func loadProduct(ctx context.Context, tx bun.Tx, id int64) (models.Product, error) {
	var p models.Product
	err := tx.NewSelect().Model(&p).Where("p.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, apperr.NotFound("product", strconv.FormatInt(id, 10))
	}
	return p, err
}

func loadLocation(ctx context.Context, tx bun.Tx, id int64) (models.Location, error) {
	var loc models.Location
	err := tx.NewSelect().Model(&loc).Where("l.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, apperr.NotFound("location", strconv.FormatInt(id, 10))
	}
	return loc, err
}

func currentLocation(ctx context.Context, tx bun.Tx, p models.Product) (*models.Location, error) {
	if p.LocationID == nil {
		return nil, nil
	}
	loc, err := loadLocation(ctx, tx, *p.LocationID)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func occupantOf(ctx context.Context, tx bun.Tx, locationID int64) (*occupant, error) {
	var occ occupant
	err := tx.NewRaw(`SELECT id, product_number FROM products WHERE location_id = ? LIMIT 1`, locationID).Scan(ctx, &occ)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &occ, nil
}
