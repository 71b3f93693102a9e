package adminusers

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"gridstock/frontend/shared/html"
	"gridstock/frontend/shared/nav"
)

func UsersListPage(navData nav.TopNavData, data PageData) templ.Component {
	return html.Page("Users", navData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := html.Status(w, data.Status); err != nil {
			return err
		}
		if data.ErrorMessage != "" {
			if _, err := fmt.Fprintf(w, `<p class="error">%s</p>`, html.Esc(data.ErrorMessage)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<table><thead><tr><th>ID</th><th>Username</th><th>Role</th><th>Created</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, u := range data.Users {
			if _, err := fmt.Fprintf(w, `<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				u.ID, html.Esc(u.Username), html.Esc(u.Role), u.CreatedAt.UTC().Format("02/01/2006")); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tbody></table><h2>New user</h2><form method="post" action="/tasker/admin/users"><label>Username <input name="username" required></label><label>Password <input type="password" name="password" required minlength="12"></label><label>Role <select name="role">`); err != nil {
			return err
		}
		for _, role := range data.Roles {
			if _, err := fmt.Fprintf(w, `<option value="%s">%s</option>`, html.Esc(role), html.Esc(role)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</select></label><button type="submit">Create user</button></form>`)
		return err
	}))
}
