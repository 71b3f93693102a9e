package auditlogs

import (
	"context"
	"strings"

	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

// LoadListing returns one page of entries matching f together with the total.
func LoadListing(ctx context.Context, db *sqlite.DB, f audit.Filter) (Listing, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > audit.DefaultPageSize {
		f.PageSize = audit.DefaultPageSize
	}
	logs, err := audit.List(ctx, db, f)
	if err != nil {
		return Listing{}, err
	}
	total, err := audit.Count(ctx, db, f)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Logs: logs, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

func LoadPageData(ctx context.Context, db *sqlite.DB, f audit.Filter) (PageData, error) {
	listing, err := LoadListing(ctx, db, f)
	if err != nil {
		return PageData{}, err
	}
	data := PageData{
		Search:     strings.TrimSpace(f.Search),
		Action:     f.Action,
		Page:       listing.Page,
		Total:      listing.Total,
		TotalPages: (listing.Total + listing.PageSize - 1) / listing.PageSize,
		Rows:       make([]Row, 0, len(listing.Logs)),
	}
	if !audit.IsValidAction(data.Action) {
		data.Action = ""
	}
	for _, l := range listing.Logs {
		data.Rows = append(data.Rows, toRow(l))
	}
	return data, nil
}

func toRow(l models.AuditLog) Row {
	return Row{
		CreatedAtUK:    l.CreatedAt.UTC().Format(DisplayTimeLayout),
		Actor:          defaultActor(l.User),
		Action:         l.Action,
		ProductNumber:  l.ProductNumber,
		QuantityBefore: l.QuantityBefore,
		QuantityAfter:  l.QuantityAfter,
		QuantityChange: l.QuantityChange,
		Notes:          strings.TrimSpace(l.Notes),
	}
}

func defaultActor(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return audit.DefaultUser
	}
	return actor
}
