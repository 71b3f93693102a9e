package login

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"gridstock/infrastructure/cache"
	sessioncookie "gridstock/infrastructure/session"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

// HomePath is where a fresh login lands.
const HomePath = "/tasker/products"

// CreateLoginHandler authenticates the user and issues a session cookie.
func CreateLoginHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache, userCache *cache.UserCache, cookies sessioncookie.Cookies, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := strings.TrimSpace(r.FormValue("password"))
		if username == "" || password == "" {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("username and password are required"), http.StatusSeeOther)
			return
		}

		user, err := Authenticate(r.Context(), db, username, password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				log.Info("login rejected", zap.String("username", username))
				http.Redirect(w, r, "/login?error="+url.QueryEscape(ErrInvalidCredentials.Error()), http.StatusSeeOther)
				return
			}
			log.Error("login failed", zap.String("username", username), zap.Error(err))
			http.Redirect(w, r, "/login?error="+url.QueryEscape("authentication failed"), http.StatusSeeOther)
			return
		}

		session := newSession(user, cookies.Expiry(time.Now()))
		if err := persistSession(r.Context(), db, session); err != nil {
			log.Error("persist session", zap.String("username", user.Username), zap.Error(err))
			http.Redirect(w, r, "/login?error="+url.QueryEscape("failed to create session"), http.StatusSeeOther)
			return
		}

		sessionCache.AddSession(session)
		userCache.Add(user.Username, user)

		http.SetCookie(w, cookies.Issue(session.ID))
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
	}
}

func newSession(user models.User, expiresAt time.Time) models.Session {
	return models.Session{
		ID:        newSessionToken(),
		UserID:    user.ID,
		User:      user,
		UserRoles: []string{user.Role},
		ExpiresAt: expiresAt,
	}
}

func newSessionToken() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
