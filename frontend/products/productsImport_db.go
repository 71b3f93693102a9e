package products

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/validation"
	"gridstock/models"
)

var importHeader = []string{"product_number", "name", "quantity", "category", "description"}

// ImportCSV upserts products from r. The header must start with
// product_number,name,quantity and may add category,description.
// Rows that fail to parse or validate are counted and skipped.
func ImportCSV(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, user string, reader io.Reader) (ImportSummary, error) {
	summary := ImportSummary{}
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return summary, fmt.Errorf("read header: %w", err)
	}
	if !validHeader(header) {
		return summary, fmt.Errorf("invalid CSV header; expected product_number,name,quantity[,category,description]")
	}
	cols := len(header)

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for {
			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil || len(record) < 3 {
				summary.Errors++
				continue
			}
			in, ok := parseRecord(record, cols)
			if !ok {
				summary.Errors++
				continue
			}

			var existing models.Product
			err = tx.NewSelect().Model(&existing).Where("p.product_number = ?", in.ProductNumber).Limit(1).Scan(ctx)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				if _, err := createTx(ctx, tx, auditSvc, user, in, "Imported from CSV"); err != nil {
					return err
				}
				summary.Inserted++
			case err != nil:
				return err
			default:
				if cols < 4 {
					in.Category = existing.Category
				}
				if cols < 5 {
					in.Description = existing.Description
				}
				_, changed, err := updateTx(ctx, tx, auditSvc, user, existing, in)
				if err != nil {
					return err
				}
				if changed {
					summary.Updated++
				} else {
					summary.Unchanged++
				}
			}
		}
		return nil
	})
	return summary, err
}

func validHeader(header []string) bool {
	if len(header) < 3 || len(header) > len(importHeader) {
		return false
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), importHeader[i]) {
			return false
		}
	}
	return true
}

func parseRecord(record []string, cols int) (Input, bool) {
	qty, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
	if err != nil {
		return Input{}, false
	}
	in := Input{
		ProductNumber: record[0],
		Name:          record[1],
		Quantity:      qty,
	}
	if cols > 3 && len(record) > 3 {
		in.Category = record[3]
	}
	if cols > 4 && len(record) > 4 {
		in.Description = record[4]
	}
	in = in.normalized()
	if validation.Struct(in) != nil {
		return Input{}, false
	}
	return in, true
}
