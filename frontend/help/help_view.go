package help

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"gridstock/frontend/shared/html"
	"gridstock/frontend/shared/nav"
)

const staffHelp = `<h2>Cells</h2>
<p>Every cell is addressed as <code>R&lt;row&gt;C&lt;column&gt;</code>, for example <code>R3C7</code>. A cell holds at most one product.</p>
<h2>Moving products</h2>
<p>Moving a product to a cell in the same column shifts the products in between by one row towards the old cell, so the column stays packed. Moving to a row past the bottom of the grid adds rows; columns are never added by a move.</p>
<h2>Withdrawals</h2>
<p>A withdrawal takes stock from several products at once. If any line asks for more than is on hand, nothing is taken. Each successful withdrawal creates an order with a printable slip.</p>
<h2>CSV import</h2>
<p>The header must be <code>product_number,name,quantity</code>, optionally followed by <code>category,description</code>. Existing product numbers are updated, new ones are created and bad rows are counted and skipped. The product export uses the same layout.</p>`

const adminHelp = `<h2>Maintenance</h2>
<p>Rows and columns can be added or removed up to 50 at a time from the grid API. Removing rows or columns detaches any products stored in the removed cells and records it in the audit log. At least one row and one column always remain.</p>
<p>Resetting quantities sets every product to 0 without audit entries. Purging the audit log cannot be undone.</p>`

func HelpPage(navData nav.TopNavData, data PageData) templ.Component {
	return html.Page("Help", navData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, staffHelp); err != nil {
			return err
		}
		if !data.IsAdmin {
			return nil
		}
		_, err := io.WriteString(w, adminHelp)
		return err
	}))
}
