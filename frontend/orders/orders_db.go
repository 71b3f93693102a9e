package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

// ListOrders returns orders newest first, filtered on an order number or
// recipient substring.
func ListOrders(ctx context.Context, db *sqlite.DB, search string, page int) (Page, error) {
	search = strings.TrimSpace(search)
	if page < 1 {
		page = 1
	}
	out := Page{Items: make([]models.Order, 0), Page: page, PageSize: DefaultPageSize, Search: search}
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&out.Items)
		if search != "" {
			q.Where("(instr(lower(o.order_number), lower(?)) > 0 OR instr(lower(o.recipient_name), lower(?)) > 0)", search, search)
		}
		total, err := q.
			OrderExpr("o.created_at DESC, o.id DESC").
			Limit(DefaultPageSize).
			Offset((page - 1) * DefaultPageSize).
			ScanAndCount(ctx)
		out.Total = total
		return err
	})
	if err != nil {
		return Page{}, err
	}
	return out, nil
}

// GetOrder loads an order by number and decodes its lines.
func GetOrder(ctx context.Context, db *sqlite.DB, number string) (Detail, error) {
	number = strings.TrimSpace(number)
	var o models.Order
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&o).Where("o.order_number = ?", number).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Detail{}, apperr.NotFound("order", number)
	}
	if err != nil {
		return Detail{}, err
	}
	lines, err := DecodeLines(o.ProductsData)
	if err != nil {
		return Detail{}, fmt.Errorf("decode order %s: %w", o.OrderNumber, err)
	}
	return Detail{Order: o, Lines: lines}, nil
}

// DeleteOrder removes an order. Quantities are not restored.
func DeleteOrder(ctx context.Context, db *sqlite.DB, id int64) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*models.Order)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("order", strconv.FormatInt(id, 10))
		}
		return nil
	})
}

// DecodeLines parses an order's products_data snapshot.
func DecodeLines(data string) ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0)
	if strings.TrimSpace(data) == "" {
		return lines, nil
	}
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}
