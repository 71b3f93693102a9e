package locations

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gridstock/frontend/grid"
	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/frontend/shared/respond"
	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/validation"
	"gridstock/infrastructure/warehouse"
)

// MoveProductCommandHandler serves POST /tasker/api/products/{id}/move.
func MoveProductCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, ok := idParam(r)
		if !ok {
			respond.Error(w, log, apperr.Validation("id", "invalid product id"), "")
			return
		}
		var req moveRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		if err := validation.Struct(req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		warehouseID, err := warehouse.ResolveID(r.Context(), db, r.URL.Query().Get("warehouse_id"))
		if err != nil {
			respond.Error(w, log, err, "failed to resolve warehouse")
			return
		}

		user := sessioncontext.ActorFromContext(r.Context())
		res, err := MoveWithShift(r.Context(), db, auditSvc, user, warehouseID, productID, req.Location)
		if err != nil {
			respond.Error(w, log, err, "failed to move product")
			return
		}
		if res.RowsAdded > grid.MaxResizeStep {
			log.Warn("move grew the grid past a single resize step",
				zap.Int64("warehouse_id", warehouseID),
				zap.String("to", res.To),
				zap.Int("rows_added", res.RowsAdded),
				zap.String("user", user))
		}
		log.Info("product moved",
			zap.Int64("product_id", productID),
			zap.String("from", res.From),
			zap.String("to", res.To),
			zap.Int("shifted", res.Shifted),
			zap.String("user", user))
		respond.JSON(w, http.StatusOK, moveResponse{Success: true, Message: res.Message, Shifted: res.Shifted, From: res.From, To: res.To, RowsAdded: res.RowsAdded})
	}
}

func AssignProductCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, ok := idParam(r)
		if !ok {
			respond.Error(w, log, apperr.Validation("id", "invalid product id"), "")
			return
		}
		var req assignRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		if err := validation.Struct(req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		res, err := Assign(r.Context(), db, auditSvc, sessioncontext.ActorFromContext(r.Context()), productID, req.LocationID)
		if err != nil {
			respond.Error(w, log, err, "failed to assign location")
			return
		}
		respond.JSON(w, http.StatusOK, moveResponse{Success: true, Message: res.Message, From: res.From, To: res.To})
	}
}

func UnassignProductCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, ok := idParam(r)
		if !ok {
			respond.Error(w, log, apperr.Validation("id", "invalid product id"), "")
			return
		}
		res, err := Unassign(r.Context(), db, auditSvc, sessioncontext.ActorFromContext(r.Context()), productID)
		if err != nil {
			respond.Error(w, log, err, "failed to remove location")
			return
		}
		respond.JSON(w, http.StatusOK, moveResponse{Success: true, Message: res.Message, From: res.From})
	}
}

// LocationsQueryHandler serves GET /tasker/api/locations.
func LocationsQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := warehouse.ResolveID(r.Context(), db, r.URL.Query().Get("warehouse_id"))
		if err != nil {
			respond.Error(w, log, err, "failed to resolve warehouse")
			return
		}
		cells, err := List(r.Context(), db, warehouseID, r.URL.Query().Get("q"))
		if err != nil {
			respond.Error(w, log, err, "failed to load locations")
			return
		}
		respond.OK(w, cells)
	}
}

// UpdateCellCommandHandler serves POST /tasker/api/locations/{id}.
func UpdateCellCommandHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, ok := idParam(r)
		if !ok {
			respond.Error(w, log, apperr.Validation("id", "invalid location id"), "")
			return
		}
		var req updateCellRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		if err := validation.Struct(req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		loc, err := UpdateCell(r.Context(), db, locationID, req.Notes, active)
		if err != nil {
			respond.Error(w, log, err, "failed to update location")
			return
		}
		respond.OK(w, loc)
	}
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
