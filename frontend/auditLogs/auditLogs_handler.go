package auditlogs

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/frontend/shared/nav"
	"gridstock/frontend/shared/respond"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
)

// AuditLogsPageQueryHandler browses the trail, or returns JSON with ?format=json.
func AuditLogsPageQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := filterFromQuery(r.URL.Query())
		if r.URL.Query().Get("format") == "json" {
			listing, err := LoadListing(r.Context(), db, f)
			if err != nil {
				respond.Error(w, log, err, "failed to load audit logs")
				return
			}
			respond.OK(w, listing)
			return
		}

		data, err := LoadPageData(r.Context(), db, f)
		if err != nil {
			log.Error("load audit logs", zap.Error(err))
			http.Error(w, "failed to load audit logs", http.StatusInternalServerError)
			return
		}
		data.Message = strings.TrimSpace(r.URL.Query().Get("status"))
		data.CanPurge = sessioncontext.IsAdmin(r.Context())

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := AuditLogsPage(nav.BuildTopNavData(session), data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render audit logs page", http.StatusInternalServerError)
			return
		}
	}
}

func AuditLogsPurgeCommandHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := audit.Purge(r.Context(), db)
		if err != nil {
			log.Error("purge audit logs", zap.Error(err))
			http.Redirect(w, r, "/tasker/audit-logs?status="+url.QueryEscape("Failed to purge audit logs"), http.StatusSeeOther)
			return
		}
		log.Info("audit logs purged",
			zap.Int64("deleted", deleted),
			zap.String("user", sessioncontext.ActorFromContext(r.Context())))
		http.Redirect(w, r, "/tasker/audit-logs?status="+url.QueryEscape(fmt.Sprintf("Deleted %d audit entries", deleted)), http.StatusSeeOther)
	}
}

func filterFromQuery(q url.Values) audit.Filter {
	f := audit.Filter{
		Search: strings.TrimSpace(q.Get("q")),
		Action: strings.TrimSpace(q.Get("action")),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		f.Page = page
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		f.PageSize = size
	}
	if q.Get("order") == "newest" {
		f.Order = audit.OrderNewest
	}
	return f
}
