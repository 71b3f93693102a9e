package products

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

func ProductsPage(navData nav.TopNavData, data PageData) templ.Component {
	return html.Page("Products", navData, productsBody(navData.Role == models.RoleAdmin, data))
}

func productsBody(admin bool, data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := html.Status(w, data.Message); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<form method="get" action="/tasker/products" class="search"><input type="search" name="q" value="%s" placeholder="Number or name"><button type="submit">Search</button></form>`, html.Esc(data.Page.Search)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<details><summary>New product</summary><form method="post" action="/tasker/products">
<input name="product_number" placeholder="Number" required>
<input name="name" placeholder="Name" required>
<input name="category" placeholder="Category">
<input name="quantity" type="number" min="0" value="0">
<textarea name="description" placeholder="Description"></textarea>
<button type="submit">Create</button></form></details>`); err != nil {
			return err
		}
		if admin {
			if _, err := io.WriteString(w, `<form method="post" action="/tasker/products/import" enctype="multipart/form-data"><label>CSV (product_number,name,quantity[,category,description]) <input type="file" name="file" accept=".csv"></label><button type="submit">Import</button></form>
<form method="post" action="/tasker/products/reset" onsubmit="return confirm('Reset every quantity to 0?')"><button type="submit">Reset all quantities</button></form>`); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, `<p>%d products</p><form method="post" action="/tasker/products/delete" id="bulk-delete"></form><table><thead><tr><th></th><th>Number</th><th>Name</th><th>Category</th><th>Quantity</th><th>Location</th><th></th></tr></thead><tbody>`, data.Page.Total); err != nil {
			return err
		}
		for _, p := range data.Page.Items {
			location := "-"
			if p.Location != nil {
				location = p.Location.FullLocation()
			}
			if _, err := fmt.Fprintf(w, `<tr><td><input type="checkbox" name="ids" value="%d" form="bulk-delete"></td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>`,
				p.ID, html.Esc(p.ProductNumber), html.Esc(p.Name), html.Esc(p.Category), p.Quantity, html.Esc(location)); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, `<details><summary>Edit</summary><form method="post" action="/tasker/products/%d/edit"><input name="product_number" value="%s"><input name="name" value="%s"><input name="category" value="%s"><input name="quantity" type="number" min="0" value="%d"><textarea name="description">%s</textarea><button type="submit">Save</button></form></details>`,
				p.ID, html.Esc(p.ProductNumber), html.Esc(p.Name), html.Esc(p.Category), p.Quantity, html.Esc(p.Description)); err != nil {
				return err
			}
			if admin {
				if _, err := fmt.Fprintf(w, `<form method="post" action="/tasker/products/%d/delete" onsubmit="return confirm('Delete %s?')"><button type="submit">Delete</button></form>`, p.ID, html.Esc(p.ProductNumber)); err != nil {
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
		if admin {
			if _, err := io.WriteString(w, `<button type="submit" form="bulk-delete">Delete selected</button>`); err != nil {
				return err
			}
		}
		return pager(w, data)
	})
}

func pager(w io.Writer, data PageData) error {
	if data.TotalPages <= 1 {
		return nil
	}
	q := url.QueryEscape(data.Page.Search)
	if data.Page.Page > 1 {
		if _, err := fmt.Fprintf(w, `<a href="/tasker/products?q=%s&page=%d">Previous</a> `, q, data.Page.Page-1); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, `<span>Page %d of %d</span>`, data.Page.Page, data.TotalPages); err != nil {
		return err
	}
	if data.Page.Page < data.TotalPages {
		if _, err := fmt.Fprintf(w, ` <a href="/tasker/products?q=%s&page=%d">Next</a>`, q, data.Page.Page+1); err != nil {
			return err
		}
	}
	return nil
}
