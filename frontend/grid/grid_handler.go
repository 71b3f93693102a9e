package grid

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/frontend/shared/respond"
	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/warehouse"
)

func GridQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := warehouse.ResolveID(r.Context(), db, r.URL.Query().Get("warehouse_id"))
		if err != nil {
			respond.Error(w, log, err, "failed to resolve warehouse")
			return
		}
		view, err := LoadGrid(r.Context(), db, warehouseID)
		if err != nil {
			respond.Error(w, log, err, "failed to load grid")
			return
		}
		respond.OK(w, view)
	}
}

// GridResizeCommandHandler serves POST /tasker/api/grid/{axis}/{op}.
func GridResizeCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a axis
		switch chi.URLParam(r, "axis") {
		case "rows":
			a = axisRows
		case "columns":
			a = axisColumns
		default:
			respond.Error(w, log, apperr.Validation("axis", "must be rows or columns"), "")
			return
		}

		req := resizeRequest{Count: 1}
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		warehouseID, err := warehouse.ResolveID(r.Context(), db, r.URL.Query().Get("warehouse_id"))
		if err != nil {
			respond.Error(w, log, err, "failed to resolve warehouse")
			return
		}

		switch chi.URLParam(r, "op") {
		case "add":
			var wh any
			if a == axisColumns {
				wh, err = AddColumns(r.Context(), db, warehouseID, req.Count)
			} else {
				wh, err = AddRows(r.Context(), db, warehouseID, req.Count)
			}
			if err != nil {
				respond.Error(w, log, err, "failed to resize grid")
				return
			}
			log.Info("grid extended", zap.Int64("warehouse_id", warehouseID), zap.Stringer("axis", a), zap.Int("count", req.Count))
			respond.OK(w, wh)
		case "remove":
			user := sessioncontext.ActorFromContext(r.Context())
			var res RemoveResult
			if a == axisColumns {
				res, err = RemoveColumns(r.Context(), db, auditSvc, user, warehouseID, req.Count)
			} else {
				res, err = RemoveRows(r.Context(), db, auditSvc, user, warehouseID, req.Count)
			}
			if err != nil {
				respond.Error(w, log, err, "failed to resize grid")
				return
			}
			log.Info("grid reduced",
				zap.Int64("warehouse_id", warehouseID),
				zap.Stringer("axis", a),
				zap.Int64("cells_removed", res.CellsRemoved),
				zap.Int("products_detached", res.ProductsDetached))
			respond.OK(w, res)
		default:
			respond.Error(w, log, apperr.Validation("op", "must be add or remove"), "")
		}
	}
}

func GridBackfillCommandHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := warehouse.ResolveID(r.Context(), db, r.URL.Query().Get("warehouse_id"))
		if err != nil {
			respond.Error(w, log, err, "failed to resolve warehouse")
			return
		}
		created, err := Backfill(r.Context(), db, warehouseID)
		if err != nil {
			respond.Error(w, log, err, "failed to backfill grid")
			return
		}
		respond.OK(w, map[string]int64{"created": created})
	}
}
