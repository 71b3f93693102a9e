package html

import (
	"context"
	"fmt"
	stdhtml "html"
	"io"

	"github.com/a-h/templ"

	"gridstock/frontend/shared/nav"
)

// Page renders body inside the shared layout with the top navigation.
func Page(title string, navData nav.TopNavData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s · gridstock</title><link rel="stylesheet" href="/assets/app.css"></head><body>`, Esc(title)); err != nil {
			return err
		}
		if err := topNav(navData).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<main class="container"><h1>%s</h1>`, Esc(title)); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</main>"); err != nil {
			return err
		}
		if err := CSRFScript().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

func topNav(data nav.TopNavData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<nav class="topnav"><a class="brand" href="/tasker/products">gridstock</a><ul>`); err != nil {
			return err
		}
		for _, l := range data.Links {
			if _, err := fmt.Fprintf(w, `<li><a href="%s">%s</a></li>`, Esc(l.Href), Esc(l.Label)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `</ul><form method="post" action="/logout"><span>%s (%s)</span> <button type="submit">Log out</button></form></nav>`, Esc(data.Username), Esc(data.Role))
		return err
	})
}

// Status renders a flash message, or nothing when msg is empty.
func Status(w io.Writer, msg string) error {
	if msg == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, `<p class="status">%s</p>`, Esc(msg))
	return err
}

// Esc escapes s for use in HTML text and attribute values.
func Esc(s string) string {
	return stdhtml.EscapeString(s)
}
