package html

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// CSRFScript copies the CSRF cookie into a hidden _csrf field on every POST form.
func CSRFScript() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, csrfScript)
		return err
	})
}

const csrfScript = `<script>
(function () {
  var match = document.cookie.match(/(?:^|;\s*)X-CSRF-Token=([^;]*)/);
  if (!match) return;
  var token = decodeURIComponent(match[1]);
  document.querySelectorAll("form[method='post'], form[method='POST']").forEach(function (form) {
    if (form.querySelector("input[name='_csrf']")) return;
    var input = document.createElement("input");
    input.type = "hidden";
    input.name = "_csrf";
    input.value = token;
    form.appendChild(input);
  });
  window.csrfToken = token;
})();
</script>`
