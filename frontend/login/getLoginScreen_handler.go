package login

import (
	"bytes"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/logging"
)

// maxLoginMessageRunes caps the ?error= text echoed back on the login screen.
const maxLoginMessageRunes = 200

// GetLoginScreenHandler serves GET /login. A failed login redirects here with
// its message in ?error=.
func GetLoginScreenHandler(log *zap.Logger) http.HandlerFunc {
	log = logging.OrNop(log)
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := GetLoginScreen(loginMessage(r.URL.Query().Get("error"))).Render(r.Context(), &buf); err != nil {
			log.Error("render login screen", zap.Error(err))
			http.Error(w, apperr.PublicMessage(err, "failed to render login screen"), apperr.HTTPStatus(err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = buf.WriteTo(w)
	}
}

func loginMessage(raw string) string {
	msg := strings.TrimSpace(raw)
	if utf8.RuneCountInString(msg) <= maxLoginMessageRunes {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:maxLoginMessageRunes]) + "…"
}
