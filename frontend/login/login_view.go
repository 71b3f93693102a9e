package login

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"gridstock/frontend/shared/html"
)

func GetLoginScreen(errorMessage string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>Sign in · gridstock</title><link rel="stylesheet" href="/assets/app.css"></head><body><main class="container narrow"><h1>gridstock</h1>`); err != nil {
			return err
		}
		if errorMessage != "" {
			if _, err := fmt.Fprintf(w, `<p class="error">%s</p>`, html.Esc(errorMessage)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<form method="post" action="/login"><label>Username <input name="username" autocomplete="username" required autofocus></label><label>Password <input type="password" name="password" autocomplete="current-password" required></label><button type="submit">Sign in</button></form></main>`); err != nil {
			return err
		}
		if err := html.CSRFScript().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}
