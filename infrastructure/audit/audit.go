package audit

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

// DefaultUser is recorded when no actor is known.
const DefaultUser = "System"

// DefaultPageSize caps browse queries.
const DefaultPageSize = 200

// Order selects the listing order.
type Order int

const (
	// OrderByAction clusters entries by action, newest first within each action.
	OrderByAction Order = iota
	// OrderNewest is pure reverse chronology.
	OrderNewest
)

// Entry is one state transition to record. QuantityChange is derived.
type Entry struct {
	Action         string
	ProductID      int64
	ProductNumber  string
	QuantityBefore int64
	QuantityAfter  int64
	Notes          string
	User           string
}

// Filter narrows List and Count.
type Filter struct {
	Search   string
	Action   string
	Since    time.Time
	Until    time.Time
	Page     int
	PageSize int
	Order    Order
}

// Service writes audit records inside the caller transaction.
type Service struct {
	now func() time.Time
}

func NewService() *Service {
	return &Service{now: time.Now}
}

// Record inserts one immutable entry using tx.
func (s *Service) Record(ctx context.Context, tx bun.Tx, e Entry) (models.AuditLog, error) {
	if !IsValidAction(e.Action) {
		return models.AuditLog{}, apperr.Validation("action", "unknown audit action %q", e.Action)
	}
	user := strings.TrimSpace(e.User)
	if user == "" {
		user = DefaultUser
	}
	log := models.AuditLog{
		Action:         e.Action,
		ProductID:      e.ProductID,
		ProductNumber:  e.ProductNumber,
		QuantityBefore: e.QuantityBefore,
		QuantityAfter:  e.QuantityAfter,
		QuantityChange: e.QuantityAfter - e.QuantityBefore,
		Notes:          e.Notes,
		User:           user,
		CreatedAt:      s.clock().UTC(),
	}
	if _, err := tx.NewInsert().Model(&log).Exec(ctx); err != nil {
		return models.AuditLog{}, fmt.Errorf("record audit %s for %s: %w", e.Action, e.ProductNumber, err)
	}
	return log, nil
}

func (s *Service) clock() time.Time {
	if s == nil || s.now == nil {
		return time.Now()
	}
	return s.now()
}

// IsValidAction reports whether action is one of the known kinds.
func IsValidAction(action string) bool {
	return slices.Contains(models.AuditActions, action)
}

// List returns one page of entries matching f.
func List(ctx context.Context, db *sqlite.DB, f Filter) ([]models.AuditLog, error) {
	f = f.normalized()
	logs := make([]models.AuditLog, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&logs)
		applyFilter(q, f)
		switch f.Order {
		case OrderNewest:
			q.OrderExpr("al.created_at DESC, al.id DESC")
		default:
			q.OrderExpr("al.action ASC, al.created_at DESC, al.id DESC")
		}
		return q.Limit(f.PageSize).Offset((f.Page - 1) * f.PageSize).Scan(ctx)
	})
	return logs, err
}

// Count returns the number of entries matching f, ignoring paging.
func Count(ctx context.Context, db *sqlite.DB, f Filter) (int, error) {
	f = f.normalized()
	var count int
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model((*models.AuditLog)(nil))
		applyFilter(q, f)
		var err error
		count, err = q.Count(ctx)
		return err
	})
	return count, err
}

// Purge deletes every entry. It is the only deletion path for the trail.
func Purge(ctx context.Context, db *sqlite.DB) (int64, error) {
	var deleted int64
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*models.AuditLog)(nil)).Where("1 = 1").Exec(ctx)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}

func applyFilter(q *bun.SelectQuery, f Filter) {
	if f.Search != "" {
		q.Where("instr(lower(al.product_number), lower(?)) > 0", f.Search)
	}
	if f.Action != "" {
		q.Where("al.action = ?", f.Action)
	}
	if !f.Since.IsZero() {
		q.Where("al.created_at >= ?", f.Since.UTC())
	}
	if !f.Until.IsZero() {
		q.Where("al.created_at < ?", f.Until.UTC())
	}
}

func (f Filter) normalized() Filter {
	f.Search = strings.TrimSpace(f.Search)
	f.Action = strings.TrimSpace(f.Action)
	if !IsValidAction(f.Action) {
		f.Action = ""
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > DefaultPageSize {
		f.PageSize = DefaultPageSize
	}
	return f
}
