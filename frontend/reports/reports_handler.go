package reports

import (
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/frontend/shared/nav"
	"gridstock/frontend/shared/respond"
	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/sqlite"
)

// ReportsPageQueryHandler renders the daily report, or JSON with ?format=json.
func ReportsPageQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asJSON := r.URL.Query().Get("format") == "json"
		day, err := ParseDay(r.URL.Query().Get("date"), time.Now())
		if err != nil {
			if asJSON {
				respond.Error(w, log, err, "")
				return
			}
			http.Error(w, apperr.PublicMessage(err, "invalid date"), http.StatusBadRequest)
			return
		}
		report, err := BuildDailyReport(r.Context(), db, day)
		if err != nil {
			if asJSON {
				respond.Error(w, log, err, "failed to build report")
				return
			}
			log.Error("build daily report", zap.Error(err))
			http.Error(w, "failed to build report", http.StatusInternalServerError)
			return
		}
		if asJSON {
			respond.OK(w, report)
			return
		}

		archives, err := ListArchives(r.Context(), db, 30)
		if err != nil {
			log.Error("list report archives", zap.Error(err))
			http.Error(w, "failed to load archives", http.StatusInternalServerError)
			return
		}
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		data := PageData{
			Message:  r.URL.Query().Get("status"),
			Report:   report,
			Archives: archives,
			CanSave:  sessioncontext.IsAdmin(r.Context()),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ReportsPage(nav.BuildTopNavData(session), data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render reports page", http.StatusInternalServerError)
			return
		}
	}
}

func ReportsArchiveCommandHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/tasker/reports?status="+url.QueryEscape("Error: invalid form"), http.StatusSeeOther)
			return
		}
		day, err := ParseDay(r.PostForm.Get("date"), time.Now())
		if err != nil {
			http.Redirect(w, r, "/tasker/reports?status="+url.QueryEscape("Error: "+apperr.PublicMessage(err, "invalid date")), http.StatusSeeOther)
			return
		}
		a, err := Archive(r.Context(), db, day, false)
		if err != nil {
			log.Error("archive daily report", zap.Error(err))
			http.Redirect(w, r, "/tasker/reports?status="+url.QueryEscape("Failed to archive report"), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/tasker/reports?date="+a.ReportDate+"&status="+url.QueryEscape("Archived report "+a.ReportDate), http.StatusSeeOther)
	}
}
