package help

import (
	"net/http"

	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/frontend/shared/nav"
	"gridstock/infrastructure/rbac"
)

type PageData struct {
	IsAdmin bool
}

func HelpPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		data := PageData{IsAdmin: session.User.Role == rbac.RoleAdmin}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := HelpPage(nav.BuildTopNavData(session), data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render help page", http.StatusInternalServerError)
			return
		}
	}
}
