package auditlogs

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"gridstock/frontend/shared/html"
	"gridstock/frontend/shared/nav"
	"gridstock/models"
)

func AuditLogsPage(navData nav.TopNavData, data PageData) templ.Component {
	return html.Page("Audit log", navData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := html.Status(w, data.Message); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<form method="get" action="/tasker/audit-logs"><input type="search" name="q" placeholder="Product number" value="%s"><select name="action"><option value="">All actions</option>`, html.Esc(data.Search)); err != nil {
			return err
		}
		for _, action := range models.AuditActions {
			selected := ""
			if action == data.Action {
				selected = " selected"
			}
			if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, action, selected, action); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select><button type="submit">Filter</button></form>`); err != nil {
			return err
		}
		if data.CanPurge {
			if _, err := io.WriteString(w, `<form method="post" action="/tasker/audit-logs/purge" onsubmit="return confirm('Delete every audit entry?')"><button type="submit" class="danger">Purge audit log</button></form>`); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, `<p>%d entries</p><table><thead><tr><th>When</th><th>User</th><th>Action</th><th>Product</th><th>Before</th><th>After</th><th>Change</th><th>Notes</th></tr></thead><tbody>`, data.Total); err != nil {
			return err
		}
		if len(data.Rows) == 0 {
			if _, err := io.WriteString(w, `<tr><td colspan="8">No audit entries.</td></tr>`); err != nil {
				return err
			}
		}
		for _, row := range data.Rows {
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%+d</td><td>%s</td></tr>`,
				html.Esc(row.CreatedAtUK), html.Esc(row.Actor), html.Esc(row.Action), html.Esc(row.ProductNumber),
				row.QuantityBefore, row.QuantityAfter, row.QuantityChange, html.Esc(row.Notes)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</tbody></table>"); err != nil {
			return err
		}
		return pager(w, data)
	}))
}

func pager(w io.Writer, data PageData) error {
	if data.TotalPages <= 1 {
		return nil
	}
	base := "/tasker/audit-logs?q=" + url.QueryEscape(data.Search) + "&action=" + url.QueryEscape(data.Action)
	if data.Page > 1 {
		if _, err := fmt.Fprintf(w, `<a href="%s&page=%d">Previous</a> `, html.Esc(base), data.Page-1); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, `<span>Page %d of %d</span>`, data.Page, data.TotalPages); err != nil {
		return err
	}
	if data.Page < data.TotalPages {
		if _, err := fmt.Fprintf(w, ` <a href="%s&page=%d">Next</a>`, html.Esc(base), data.Page+1); err != nil {
			return err
		}
	}
	return nil
}
