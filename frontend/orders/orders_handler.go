package orders

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/frontend/shared/nav"
	"gridstock/frontend/shared/respond"
	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
)

// WithdrawCommandHandler serves POST /tasker/api/withdraw.
func WithdrawCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WithdrawRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		user := sessioncontext.ActorFromContext(r.Context())
		res, err := Withdraw(r.Context(), db, auditSvc, user, req)
		if err != nil {
			respond.Error(w, log, err, "failed to withdraw products")
			return
		}
		log.Info("withdrawal committed",
			zap.String("order_number", res.OrderNumber),
			zap.String("user", user),
			zap.Int("lines", len(res.UpdatedProducts)))
		respond.JSON(w, http.StatusOK, withdrawResponse{
			Success:         true,
			UpdatedProducts: res.UpdatedProducts,
			OrderNumber:     res.OrderNumber,
			Message:         fmt.Sprintf("Withdrew %d products", len(res.UpdatedProducts)),
		})
	}
}

func OrdersPageQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		list, err := ListOrders(r.Context(), db, r.URL.Query().Get("q"), page)
		if err != nil {
			log.Error("list orders", zap.Error(err))
			http.Error(w, "failed to load orders", http.StatusInternalServerError)
			return
		}
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		navData := nav.BuildTopNavData(session)
		data := PageData{
			Message:    r.URL.Query().Get("status"),
			Page:       list,
			TotalPages: (list.Total + list.PageSize - 1) / list.PageSize,
			CanDelete:  sessioncontext.IsAdmin(r.Context()),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := OrdersPage(navData, data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render orders page", http.StatusInternalServerError)
			return
		}
	}
}

// OrderPDFQueryHandler serves GET /tasker/orders/{number}.pdf.
func OrderPDFQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := GetOrder(r.Context(), db, chi.URLParam(r, "number"))
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("load order", zap.Error(err))
			}
			http.Error(w, apperr.PublicMessage(err, "failed to load order"), status)
			return
		}
		pdf, err := RenderOrderPDF(detail)
		if err != nil {
			log.Error("render order pdf", zap.String("order_number", detail.OrderNumber), zap.Error(err))
			http.Error(w, "failed to render order", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", detail.OrderNumber+".pdf"))
		_, _ = w.Write(pdf)
	}
}

func OrderDeleteCommandHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			redirectWithStatus(w, r, "Invalid order id")
			return
		}
		if err := DeleteOrder(r.Context(), db, id); err != nil {
			if apperr.HTTPStatus(err) == http.StatusInternalServerError {
				log.Error("delete order", zap.Int64("order_id", id), zap.Error(err))
			}
			redirectWithStatus(w, r, "Error: "+apperr.PublicMessage(err, "failed to delete order"))
			return
		}
		redirectWithStatus(w, r, "Deleted order")
	}
}

func redirectWithStatus(w http.ResponseWriter, r *http.Request, status string) {
	http.Redirect(w, r, "/tasker/orders?status="+url.QueryEscape(status), http.StatusSeeOther)
}
