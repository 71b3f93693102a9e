package dashboard

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/frontend/shared/nav"
	"gridstock/frontend/shared/respond"
	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/warehouse"
)

// DashboardQueryHandler renders the admin dashboard, or JSON with ?format=json.
func DashboardQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asJSON := r.URL.Query().Get("format") == "json"
		stats, err := loadForRequest(r, db)
		if err != nil {
			if asJSON {
				respond.Error(w, log, err, "failed to load dashboard")
				return
			}
			status := apperr.HTTPStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("load dashboard", zap.Error(err))
			}
			http.Error(w, apperr.PublicMessage(err, "failed to load dashboard"), status)
			return
		}
		if asJSON {
			respond.OK(w, stats)
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := DashboardPage(nav.BuildTopNavData(session), stats).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
			return
		}
	}
}

func loadForRequest(r *http.Request, db *sqlite.DB) (Stats, error) {
	warehouseID, err := warehouse.ResolveID(r.Context(), db, r.URL.Query().Get("warehouse_id"))
	if err != nil {
		return Stats{}, err
	}
	return LoadStats(r.Context(), db, warehouseID, time.Now())
}
