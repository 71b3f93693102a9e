package orders

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"gridstock/frontend/shared/html"
	"gridstock/frontend/shared/nav"
)

func OrdersPage(navData nav.TopNavData, data PageData) templ.Component {
	return html.Page("Orders", navData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := html.Status(w, data.Message); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<form method="get" action="/tasker/orders" class="search"><input type="search" name="q" value="%s" placeholder="Order number or recipient"><button type="submit">Search</button></form><p>%d orders</p>`,
			html.Esc(data.Page.Search), data.Page.Total); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<table><thead><tr><th>Order</th><th>Date</th><th>Recipient</th><th>Products</th><th>Units</th><th>User</th><th></th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, o := range data.Page.Items {
			if _, err := fmt.Fprintf(w, `<tr><td><a href="/tasker/orders/%s.pdf">%s</a></td><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%s</td><td>`,
				url.PathEscape(o.OrderNumber), html.Esc(o.OrderNumber), o.CreatedAt.Format("02/01/2006 15:04"),
				html.Esc(o.RecipientName), o.TotalProducts, o.TotalQuantities, html.Esc(o.User)); err != nil {
				return err
			}
			if data.CanDelete {
				if _, err := fmt.Fprintf(w, `<form method="post" action="/tasker/orders/%d/delete" onsubmit="return confirm('Delete order %s?')"><button type="submit">Delete</button></form>`, o.ID, html.Esc(o.OrderNumber)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</td></tr>"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</tbody></table>"); err != nil {
			return err
		}
		if data.TotalPages > 1 {
			_, err := fmt.Fprintf(w, `<p>Page %d of %d · <a href="/tasker/orders?q=%s&page=%d">Next</a></p>`,
				data.Page.Page, data.TotalPages, url.QueryEscape(data.Page.Search), min(data.Page.Page+1, data.TotalPages))
			return err
		}
		return nil
	}))
}
