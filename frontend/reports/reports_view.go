package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"gridstock/frontend/shared/html"
	"gridstock/frontend/shared/nav"
	"gridstock/models"
)

func ReportsPage(navData nav.TopNavData, data PageData) templ.Component {
	return html.Page("Daily report", navData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := html.Status(w, data.Message); err != nil {
			return err
		}
		rep := data.Report
		if _, err := fmt.Fprintf(w, `<form method="get" action="/tasker/reports"><input type="date" name="date" value="%s"><button type="submit">Show</button></form>`, html.Esc(rep.Date)); err != nil {
			return err
		}
		if data.CanSave {
			if _, err := fmt.Fprintf(w, `<form method="post" action="/tasker/reports/archive"><input type="hidden" name="date" value="%s"><button type="submit">Archive this day</button></form>`, html.Esc(rep.Date)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<dl class="stats"><dt>Added</dt><dd>%d</dd><dt>Updated</dt><dd>%d</dd><dt>Deleted</dt><dd>%d</dd><dt>Withdrawals</dt><dd>%d</dd><dt>Locations assigned</dt><dd>%d</dd><dt>Units added</dt><dd>%d</dd><dt>Units removed</dt><dd>%d</dd></dl>`,
			rep.ProductsAdded, rep.ProductsUpdated, rep.ProductsDeleted, rep.QuantitiesTaken, rep.LocationsAssigned, rep.TotalAdded, rep.TotalRemoved); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<table><thead><tr><th>Action</th><th>Entries</th><th>Net change</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, action := range models.AuditActions {
			s := rep.Breakdown[action]
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%d</td><td>%d</td></tr>`, html.Esc(action), s.Count, s.NetChange); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tbody></table><h2>Archived reports</h2><table><thead><tr><th>Date</th><th>Withdrawals</th><th>Units removed</th><th>Saved</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, a := range data.Archives {
			saved := "manual"
			if a.IsAutoSaved {
				saved = "auto"
			}
			if _, err := fmt.Fprintf(w, `<tr><td><a href="/tasker/reports?date=%s">%s</a></td><td>%d</td><td>%d</td><td>%s</td></tr>`,
				html.Esc(a.ReportDate), html.Esc(a.ReportDate), a.QuantitiesTaken, a.TotalRemoved, saved); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody></table>")
		return err
	}))
}
