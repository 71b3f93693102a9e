package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/validation"
	"gridstock/models"
)

// Withdraw applies every line of req in one write transaction and records an
// order. Any missing product or short stock rolls back the whole batch.
// A batch with no non-blank numbers is a ValidationError and records no order.
func Withdraw(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, req WithdrawRequest) (WithdrawResult, error) {
	if err := validation.Struct(req); err != nil {
		return WithdrawResult{}, err
	}
	items := make([]WithdrawItem, 0, len(req.Items))
	for _, item := range req.Items {
		item.Number = strings.TrimSpace(item.Number)
		if item.Number == "" {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return WithdrawResult{}, apperr.Validation("products", "at least one product is required")
	}

	numbers := make([]string, 0, len(items))
	for _, item := range items {
		numbers = append(numbers, item.Number)
	}

	result := WithdrawResult{UpdatedProducts: make([]models.OrderLine, 0, len(items))}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		rows := make([]models.Product, 0, len(numbers))
		if err := tx.NewSelect().
			Model(&rows).
			Where("p.product_number IN (?)", bun.In(numbers)).
			Scan(ctx); err != nil {
			return err
		}
		byNumber := make(map[string]*models.Product, len(rows))
		for i := range rows {
			byNumber[rows[i].ProductNumber] = &rows[i]
		}

		now := time.Now().UTC()
		var total int64
		for _, item := range items {
			p, ok := byNumber[item.Number]
			if !ok {
				return apperr.NotFound("product", item.Number)
			}
			if item.Quantity > p.Quantity {
				return &apperr.InsufficientQuantityError{
					ProductNumber: p.ProductNumber,
					Available:     p.Quantity,
					Requested:     item.Quantity,
				}
			}

			before := p.Quantity
			p.Quantity -= item.Quantity
			if item.Quantity > 0 {
				p.UpdatedAt = now
				if _, err := tx.NewUpdate().Model(p).Column("quantity", "updated_at").WherePK().Exec(ctx); err != nil {
					return err
				}
			}
			if _, err := auditSvc.Record(ctx, tx, audit.Entry{
				Action:         models.ActionQuantityTaken,
				ProductID:      p.ID,
				ProductNumber:  p.ProductNumber,
				QuantityBefore: before,
				QuantityAfter:  p.Quantity,
				Notes:          fmt.Sprintf("Withdrew %d units", item.Quantity),
				User:           user,
			}); err != nil {
				return err
			}

			total += item.Quantity
			result.UpdatedProducts = append(result.UpdatedProducts, models.OrderLine{
				ProductNumber: p.ProductNumber,
				OldQuantity:   before,
				NewQuantity:   p.Quantity,
				QuantityTaken: item.Quantity,
			})
		}

		data, err := json.Marshal(result.UpdatedProducts)
		if err != nil {
			return err
		}
		order := models.Order{
			ProductsData:    string(data),
			TotalProducts:   len(result.UpdatedProducts),
			TotalQuantities: total,
			RecipientName:   strings.TrimSpace(req.RecipientName),
			Notes:           strings.TrimSpace(req.Notes),
			User:            user,
			CreatedAt:       now,
		}
		if order.User == "" {
			order.User = audit.DefaultUser
		}
		if err := insertOrder(ctx, tx, &order, now); err != nil {
			return err
		}
		result.Order = order
		result.OrderNumber = order.OrderNumber
		return nil
	})
	if err != nil {
		return WithdrawResult{}, err
	}
	return result, nil
}

// insertOrder assigns a fresh order number, retrying on collision.
func insertOrder(ctx context.Context, tx bun.Tx, order *models.Order, at time.Time) error {
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = NewOrderNumber(at)
		_, err = tx.NewInsert().Model(order).Exec(ctx)
		if err == nil {
			return nil
		}
		if !sqlite.IsUniqueViolation(err) {
			return fmt.Errorf("insert order: %w", err)
		}
	}
	return fmt.Errorf("allocate order number after %d attempts: %w", orderNumberAttempts, err)
}

// NewOrderNumber formats ORD-YYYYMMDD-HHMMSS-<8 hex>.
func NewOrderNumber(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "ORD-" + at.UTC().Format("20060102-150405") + "-" + strings.ToUpper(suffix)
}
