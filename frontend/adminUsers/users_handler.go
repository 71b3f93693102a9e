package adminusers

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/frontend/shared/nav"
	"gridstock/infrastructure/cache"
	"gridstock/infrastructure/sqlite"
)

// UsersPageQueryHandler renders the admin users list page.
func UsersPageQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		data, err := LoadUsersPageData(r.Context(), db)
		if err != nil {
			log.Error("admin users: failed to load data", zap.Error(err))
			http.Error(w, "failed to load users", http.StatusInternalServerError)
			return
		}

		data.Status = r.URL.Query().Get("status")
		data.ErrorMessage = r.URL.Query().Get("error")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := UsersListPage(nav.BuildTopNavData(session), data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render users page", http.StatusInternalServerError)
			return
		}
	}
}

func CreateUserCommandHandler(db *sqlite.DB, userCache *cache.UserCache, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessioncontext.GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/tasker/admin/users?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := strings.TrimSpace(r.FormValue("password"))
		role := strings.TrimSpace(r.FormValue("role"))

		user, err := CreateUser(r.Context(), db, username, password, role)
		if err != nil {
			// Validation and policy messages are safe to show as-is.
			log.Info("admin users: create rejected", zap.String("username", username), zap.Error(err))
			http.Redirect(w, r, "/tasker/admin/users?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}
		userCache.Add(user.Username, user)
		log.Info("admin users: created",
			zap.String("username", user.Username),
			zap.String("role", user.Role),
			zap.String("by", sessioncontext.ActorFromContext(r.Context())))

		http.Redirect(w, r, "/tasker/admin/users?status="+url.QueryEscape("user created"), http.StatusSeeOther)
	}
}
