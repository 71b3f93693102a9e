package html

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"gridstock/frontend/shared/nav"
)

func TestPageEscapesAndWrapsBody(t *testing.T) {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>body</p>")
		return err
	})
	var buf bytes.Buffer
	err := Page("<Products>", nav.TopNavData{Username: "ann", Links: []nav.Link{{Label: "Orders", Href: "/tasker/orders"}}}, body).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"&lt;Products&gt;", "<p>body</p>", `href="/tasker/orders"`, "X-CSRF-Token"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
	if strings.Contains(out, "<Products>") {
		t.Fatal("title was not escaped")
	}
}
