package dashboard

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"gridstock/frontend/shared/html"
	"gridstock/frontend/shared/nav"
)

func DashboardPage(navData nav.TopNavData, s Stats) templ.Component {
	return html.Page("Dashboard", navData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="stats"><h2>%s</h2><dl>
<dt>Grid</dt><dd>%d × %d</dd>
<dt>Capacity</dt><dd>%d</dd>
<dt>Locations</dt><dd>%d</dd>
<dt>Occupied</dt><dd>%d</dd>
<dt>Products</dt><dd>%d</dd>
<dt>Units in stock</dt><dd>%d</dd>
<dt>Out of stock</dt><dd>%d</dd>
<dt>Orders today</dt><dd>%d</dd>
</dl></section>`,
			html.Esc(s.WarehouseName), s.Rows, s.Columns, s.TotalCapacity, s.LocationsCount, s.OccupiedCells,
			s.ProductsCount, s.TotalUnits, s.OutOfStock, s.OrdersToday); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<h2>Recent activity</h2><table><thead><tr><th>When</th><th>Action</th><th>Product</th><th>Change</th><th>User</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, l := range s.RecentActivity {
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%+d</td><td>%s</td></tr>`,
				l.CreatedAt.Format("02/01/2006 15:04"), html.Esc(l.Action), html.Esc(l.ProductNumber), l.QuantityChange, html.Esc(l.User)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody></table>")
		return err
	}))
}
