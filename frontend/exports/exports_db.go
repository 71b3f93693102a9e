package exports

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

func writeAuditLogsCSV(ctx context.Context, db *sqlite.DB, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write(auditLogsHeader); err != nil {
		return err
	}

	rows := make([]auditRow, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT strftime('%d/%m/%Y %H:%M', al.created_at) AS created_at,
       al.user, al.action, al.product_number,
       al.quantity_before, al.quantity_after, al.quantity_change, al.notes
FROM audit_logs al
ORDER BY al.created_at DESC, al.id DESC`).Scan(ctx, &rows)
	})
	if err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.CreatedAt,
			r.User,
			r.Action,
			r.ProductNumber,
			toString(r.QuantityBefore),
			toString(r.QuantityAfter),
			toString(r.QuantityChange),
			r.Notes,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}

func writeOrdersCSV(ctx context.Context, db *sqlite.DB, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write(ordersHeader); err != nil {
		return err
	}

	rows := make([]orderRow, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT o.order_number, strftime('%d/%m/%Y %H:%M', o.created_at) AS created_at,
       o.user, o.recipient_name, o.total_products, o.total_quantities, o.notes
FROM orders o
ORDER BY o.created_at DESC, o.id DESC`).Scan(ctx, &rows)
	})
	if err != nil {
		return err
	}

	for _, r := range rows {
		if err := writer.Write([]string{r.OrderNumber, r.CreatedAt, r.User, r.RecipientName, toString(r.TotalProducts), toString(r.TotalQuantities), r.Notes}); err != nil {
			return err
		}
	}
	return writer.Error()
}

func writeProductsCSV(ctx context.Context, db *sqlite.DB, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write(productsHeader); err != nil {
		return err
	}

	products := make([]models.Product, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&products).OrderExpr("p.product_number ASC").Scan(ctx)
	})
	if err != nil {
		return err
	}

	for _, p := range products {
		if err := writer.Write([]string{p.ProductNumber, p.Name, toString(p.Quantity), p.Category, p.Description}); err != nil {
			return err
		}
	}
	return writer.Error()
}

func recordExportRun(ctx context.Context, db *sqlite.DB, userID *int64, exportType string) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var uid any
		if userID != nil {
			uid = *userID
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO export_runs (user_id, export_type, created_at) VALUES (?, ?, ?)`, uid, exportType, time.Now().UTC())
		return err
	})
}

func toString(v int64) string {
	return strconv.FormatInt(v, 10)
}
