package login

import (
	"net/http"

	"go.uber.org/zap"

	"gridstock/infrastructure/cache"
	sessioncookie "gridstock/infrastructure/session"
	"gridstock/infrastructure/sqlite"
)

// LogoutHandler removes session state and clears the cookie.
func LogoutHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache, cookies sessioncookie.Cookies, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessioncookie.CookieName)
		if err == nil && cookie.Value != "" {
			sessionCache.DeleteSessionBySessionToken(cookie.Value)
			if err := DeleteSessionByToken(r.Context(), db, cookie.Value); err != nil {
				log.Error("delete session on logout", zap.Error(err))
			}
		}
		http.SetCookie(w, cookies.Clear())
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
