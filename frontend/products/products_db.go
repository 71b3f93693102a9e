package products

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
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/validation"
	"gridstock/models"
)

// Create inserts a product and records an added entry.
func Create(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, in Input) (models.Product, error) {
	in = in.normalized()
	if err := validation.Struct(in); err != nil {
		return models.Product{}, err
	}
	var p models.Product
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		p, err = createTx(ctx, tx, auditSvc, user, in, "Product created")
		return err
	})
	return p, err
}

func createTx(ctx context.Context, tx bun.Tx, auditSvc *audit.Service, user string, in Input, notes string) (models.Product, error) {
	now := time.Now().UTC()
	p := models.Product{
		ProductNumber: in.ProductNumber,
		Name:          in.Name,
		Category:      in.Category,
		Description:   in.Description,
		Quantity:      in.Quantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := tx.NewInsert().Model(&p).Exec(ctx); err != nil {
		if sqlite.IsUniqueViolation(err) {
			return models.Product{}, apperr.Validation("product_number", "product %s already exists", in.ProductNumber)
		}
		return models.Product{}, fmt.Errorf("insert product %s: %w", in.ProductNumber, err)
	}
	if _, err := auditSvc.Record(ctx, tx, audit.Entry{
		Action:         models.ActionAdded,
		ProductID:      p.ID,
		ProductNumber:  p.ProductNumber,
		QuantityBefore: 0,
		QuantityAfter:  p.Quantity,
		Notes:          notes,
		User:           user,
	}); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Update edits a product. An updated entry is written only when the number,
// name, category or quantity changed.
func Update(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, id int64, in Input) (models.Product, error) {
	in = in.normalized()
	if err := validation.Struct(in); err != nil {
		return models.Product{}, err
	}
	var p models.Product
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := loadTx(ctx, tx, id)
		if err != nil {
			return err
		}
		p, _, err = updateTx(ctx, tx, auditSvc, user, before, in)
		return err
	})
	return p, err
}

func updateTx(ctx context.Context, tx bun.Tx, auditSvc *audit.Service, user string, before models.Product, in Input) (models.Product, bool, error) {
	changes := describeChanges(before, in)
	if len(changes) == 0 && before.Description == in.Description {
		return before, false, nil
	}

	after := before
	after.ProductNumber = in.ProductNumber
	after.Name = in.Name
	after.Category = in.Category
	after.Description = in.Description
	after.Quantity = in.Quantity
	after.UpdatedAt = time.Now().UTC()
	if _, err := tx.NewUpdate().
		Model(&after).
		Column("product_number", "name", "category", "description", "quantity", "updated_at").
		WherePK().
		Exec(ctx); err != nil {
		if sqlite.IsUniqueViolation(err) {
			return models.Product{}, false, apperr.Validation("product_number", "product %s already exists", in.ProductNumber)
		}
		return models.Product{}, false, fmt.Errorf("update product %d: %w", before.ID, err)
	}

	if len(changes) == 0 {
		return after, true, nil
	}
	if _, err := auditSvc.Record(ctx, tx, audit.Entry{
		Action:         models.ActionUpdated,
		ProductID:      after.ID,
		ProductNumber:  after.ProductNumber,
		QuantityBefore: before.Quantity,
		QuantityAfter:  after.Quantity,
		Notes:          "Changes: " + strings.Join(changes, " | "),
		User:           user,
	}); err != nil {
		return models.Product{}, false, err
	}
	return after, true, nil
}

func describeChanges(before models.Product, in Input) []string {
	changes := make([]string, 0, 4)
	if before.ProductNumber != in.ProductNumber {
		changes = append(changes, fmt.Sprintf("product_number: %s → %s", before.ProductNumber, in.ProductNumber))
	}
	if before.Name != in.Name {
		changes = append(changes, fmt.Sprintf("name: %s → %s", before.Name, in.Name))
	}
	if before.Category != in.Category {
		changes = append(changes, fmt.Sprintf("category: %s → %s", before.Category, in.Category))
	}
	if before.Quantity != in.Quantity {
		changes = append(changes, fmt.Sprintf("quantity: %d → %d", before.Quantity, in.Quantity))
	}
	return changes
}

// Delete records a deleted entry and removes the product. The product's
// audit entries go with it.
func Delete(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, id int64) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		p, err := loadTx(ctx, tx, id)
		if err != nil {
			return err
		}
		return deleteTx(ctx, tx, auditSvc, user, p)
	})
}

func deleteTx(ctx context.Context, tx bun.Tx, auditSvc *audit.Service, user string, p models.Product) error {
	if _, err := auditSvc.Record(ctx, tx, audit.Entry{
		Action:         models.ActionDeleted,
		ProductID:      p.ID,
		ProductNumber:  p.ProductNumber,
		QuantityBefore: p.Quantity,
		QuantityAfter:  0,
		Notes:          "Product deleted",
		User:           user,
	}); err != nil {
		return err
	}
	if _, err := tx.NewDelete().Model((*models.Product)(nil)).Where("id = ?", p.ID).Exec(ctx); err != nil {
		return fmt.Errorf("delete product %s: %w", p.ProductNumber, err)
	}
	return nil
}

// DeleteMany deletes every listed product in one transaction. Unknown and
// repeated ids are skipped; unknown ids are counted as missing.
func DeleteMany(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, ids []int64) (deleted int, missing int, err error) {
	seen := make(map[int64]struct{}, len(ids))
	filtered := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		filtered = append(filtered, id)
	}
	if len(filtered) == 0 {
		return 0, 0, nil
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for _, id := range filtered {
			p, err := loadTx(ctx, tx, id)
			if apperr.IsNotFound(err) {
				missing++
				continue
			}
			if err != nil {
				return err
			}
			if err := deleteTx(ctx, tx, auditSvc, user, p); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return deleted, missing, nil
}

// ResetAllQuantities zeroes every product's quantity in a single statement.
// No audit entries are written.
func ResetAllQuantities(ctx context.Context, db *sqlite.DB) (int64, error) {
	var affected int64
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Product)(nil)).
			Set("quantity = 0").
			Set("updated_at = ?", time.Now().UTC()).
			Where("1 = 1").
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

// Restock adds qty units to a product and records a quantity_added entry.
func Restock(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, id int64, qty int64, notes string) (models.Product, error) {
	if qty <= 0 {
		return models.Product{}, apperr.Validation("quantity", "must be greater than 0")
	}
	var p models.Product
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		p, err = loadTx(ctx, tx, id)
		if err != nil {
			return err
		}
		before := p.Quantity
		p.Quantity += qty
		p.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().Model(&p).Column("quantity", "updated_at").WherePK().Exec(ctx); err != nil {
			return err
		}
		notes = strings.TrimSpace(notes)
		if notes == "" {
			notes = fmt.Sprintf("Returned %d units", qty)
		}
		_, err = auditSvc.Record(ctx, tx, audit.Entry{
			Action:         models.ActionQuantityAdded,
			ProductID:      p.ID,
			ProductNumber:  p.ProductNumber,
			QuantityBefore: before,
			QuantityAfter:  p.Quantity,
			Notes:          notes,
			User:           user,
		})
		return err
	})
	return p, err
}

// Get returns one product with its location.
func Get(ctx context.Context, db *sqlite.DB, id int64) (models.Product, error) {
	var p models.Product
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&p).Relation("Location").Where("p.id = ?", id).Limit(1).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("product", strconv.FormatInt(id, 10))
		}
		return err
	})
	if err != nil {
		return models.Product{}, err
	}
	if p.LocationID == nil {
		p.Location = nil
	}
	return p, nil
}

// List returns products whose number or name contains search, ordered by number.
func List(ctx context.Context, db *sqlite.DB, search string, page int) (Page, error) {
	search = strings.TrimSpace(search)
	if page < 1 {
		page = 1
	}
	out := Page{Items: make([]models.Product, 0), Page: page, PageSize: DefaultPageSize, Search: search}
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&out.Items).Relation("Location")
		if search != "" {
			q.Where("(instr(lower(p.product_number), lower(?)) > 0 OR instr(lower(p.name), lower(?)) > 0)", search, search)
		}
		total, err := q.
			OrderExpr("p.product_number ASC").
			Limit(DefaultPageSize).
			Offset((page - 1) * DefaultPageSize).
			ScanAndCount(ctx)
		out.Total = total
		return err
	})
	if err != nil {
		return Page{}, err
	}
	for i := range out.Items {
		if out.Items[i].LocationID == nil {
			out.Items[i].Location = nil
		}
	}
	return out, nil
}

// ListNumbers returns the first numbers and names for autocomplete.
func ListNumbers(ctx context.Context, db *sqlite.DB) ([]NumberEntry, error) {
	out := make([]NumberEntry, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model((*models.Product)(nil)).
			Column("product_number", "name").
			OrderExpr("p.product_number ASC").
			Limit(ListNumbersLimit).
			Scan(ctx, &out)
	})
	return out, err
}

// Lookup resolves each non-blank number, in request order. Unknown numbers
// come back with Found false.
func Lookup(ctx context.Context, db *sqlite.DB, numbers []string) ([]LookupResult, error) {
	wanted := make([]string, 0, len(numbers))
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if n != "" {
			wanted = append(wanted, n)
		}
	}
	if len(wanted) == 0 {
		return []LookupResult{}, nil
	}

	rows := make([]models.Product, 0, len(wanted))
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&rows).
			Relation("Location").
			Where("p.product_number IN (?)", bun.In(wanted)).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	byNumber := make(map[string]models.Product, len(rows))
	for _, p := range rows {
		byNumber[p.ProductNumber] = p
	}

	results := make([]LookupResult, 0, len(wanted))
	for _, n := range wanted {
		p, ok := byNumber[n]
		if !ok {
			results = append(results, LookupResult{ProductNumber: n, Locations: []LocationInfo{}})
			continue
		}
		r := LookupResult{
			ProductNumber: p.ProductNumber,
			Found:         true,
			ID:            p.ID,
			Name:          p.Name,
			Category:      p.Category,
			Quantity:      p.Quantity,
			Locations:     []LocationInfo{},
		}
		if p.LocationID != nil && p.Location != nil {
			l := p.Location
			r.Locations = append(r.Locations, LocationInfo{
				ID:           l.ID,
				FullLocation: l.FullLocation(),
				Row:          l.Row,
				Column:       l.Column,
				X:            l.Column,
				Y:            l.Row,
				Notes:        l.Notes,
			})
		}
		results = append(results, r)
	}
	return results, nil
}

func loadTx(ctx context.Context, tx bun.Tx, id int64) (models.Product, error) {
	var p models.Product
	err := tx.NewSelect().Model(&p).Where("p.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, apperr.NotFound("product", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (in Input) normalized() Input {
	in.ProductNumber = strings.TrimSpace(in.ProductNumber)
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	return in
}
