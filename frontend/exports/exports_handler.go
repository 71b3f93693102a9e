package exports

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/infrastructure/sqlite"
)

type csvWriter func(ctx context.Context, db *sqlite.DB, w io.Writer) error

func AuditLogsExportCSVHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return exportHandler(db, log, "audit-logs", TypeAuditLogs, writeAuditLogsCSV)
}

func OrdersExportCSVHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return exportHandler(db, log, "orders", TypeOrders, writeOrdersCSV)
}

func ProductsExportCSVHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return exportHandler(db, log, "products", TypeProducts, writeProductsCSV)
}

func exportHandler(db *sqlite.DB, log *zap.Logger, name, exportType string, write csvWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := name + "-" + time.Now().UTC().Format("20060102") + ".csv"
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		if err := write(r.Context(), db, w); err != nil {
			log.Error("export csv failed", zap.String("type", exportType), zap.Error(err))
			http.Error(w, "failed to export csv", http.StatusInternalServerError)
			return
		}
		if err := recordExportRun(r.Context(), db, sessionUserIDFromContext(r), exportType); err != nil {
			log.Error("record export run failed", zap.String("type", exportType), zap.Error(err))
		}
	}
}

func sessionUserIDFromContext(r *http.Request) *int64 {
	session, ok := sessioncontext.GetSessionFromContext(r.Context())
	if !ok || session.UserID <= 0 {
		return nil
	}
	id := session.UserID
	return &id
}
