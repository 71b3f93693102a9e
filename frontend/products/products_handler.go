package products

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/frontend/shared/nav"
	"gridstock/frontend/shared/respond"
	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/validation"
)

const productsPath = "/tasker/products"

func ProductsPageQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		list, err := List(r.Context(), db, r.URL.Query().Get("q"), page)
		if err != nil {
			log.Error("list products", zap.Error(err))
			http.Error(w, "failed to load products", http.StatusInternalServerError)
			return
		}
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		navData := nav.BuildTopNavData(session)
		data := PageData{
			Message:    r.URL.Query().Get("status"),
			Page:       list,
			TotalPages: (list.Total + list.PageSize - 1) / list.PageSize,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ProductsPage(navData, data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render products page", http.StatusInternalServerError)
			return
		}
	}
}

func ProductCreateCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := inputFromForm(r)
		if err != nil {
			redirectWithStatus(w, r, "Error: "+apperr.PublicMessage(err, "invalid form"))
			return
		}
		p, err := Create(r.Context(), db, auditSvc, sessioncontext.ActorFromContext(r.Context()), in)
		if err != nil {
			if apperr.HTTPStatus(err) == http.StatusInternalServerError {
				log.Error("create product", zap.Error(err))
			}
			redirectWithStatus(w, r, "Error: "+apperr.PublicMessage(err, "failed to create product"))
			return
		}
		redirectWithStatus(w, r, "Created product "+p.ProductNumber)
	}
}

func ProductUpdateCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := productIDParam(r)
		if !ok {
			redirectWithStatus(w, r, "Invalid product id")
			return
		}
		in, err := inputFromForm(r)
		if err != nil {
			redirectWithStatus(w, r, "Error: "+apperr.PublicMessage(err, "invalid form"))
			return
		}
		p, err := Update(r.Context(), db, auditSvc, sessioncontext.ActorFromContext(r.Context()), id, in)
		if err != nil {
			if apperr.HTTPStatus(err) == http.StatusInternalServerError {
				log.Error("update product", zap.Int64("product_id", id), zap.Error(err))
			}
			redirectWithStatus(w, r, "Error: "+apperr.PublicMessage(err, "failed to update product"))
			return
		}
		redirectWithStatus(w, r, "Updated product "+p.ProductNumber)
	}
}

func ProductDeleteCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := productIDParam(r)
		if !ok {
			redirectWithStatus(w, r, "Invalid product id")
			return
		}
		if err := Delete(r.Context(), db, auditSvc, sessioncontext.ActorFromContext(r.Context()), id); err != nil {
			if apperr.HTTPStatus(err) == http.StatusInternalServerError {
				log.Error("delete product", zap.Int64("product_id", id), zap.Error(err))
			}
			redirectWithStatus(w, r, "Error: "+apperr.PublicMessage(err, "failed to delete product"))
			return
		}
		redirectWithStatus(w, r, "Deleted 1 product")
	}
}

// ProductsBulkDeleteCommandHandler deletes every id posted in the ids field.
func ProductsBulkDeleteCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectWithStatus(w, r, "Error: invalid form")
			return
		}
		ids := make([]int64, 0, len(r.PostForm["ids"]))
		for _, raw := range r.PostForm["ids"] {
			id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err == nil && id > 0 {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			redirectWithStatus(w, r, "Select at least one product")
			return
		}
		deleted, missing, err := DeleteMany(r.Context(), db, auditSvc, sessioncontext.ActorFromContext(r.Context()), ids)
		if err != nil {
			log.Error("bulk delete products", zap.Int("requested", len(ids)), zap.Error(err))
			redirectWithStatus(w, r, "Failed to delete products")
			return
		}
		redirectWithStatus(w, r, fmt.Sprintf("Deleted %d products (%d missing)", deleted, missing))
	}
}

func ProductsResetCommandHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		affected, err := ResetAllQuantities(r.Context(), db)
		if err != nil {
			log.Error("reset quantities", zap.Error(err))
			redirectWithStatus(w, r, "Failed to reset quantities")
			return
		}
		log.Warn("all product quantities reset",
			zap.String("user", sessioncontext.ActorFromContext(r.Context())),
			zap.Int64("products", affected))
		redirectWithStatus(w, r, fmt.Sprintf("Reset quantities of %d products", affected))
	}
}

func ProductsImportCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			redirectWithStatus(w, r, "Error: invalid upload")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			redirectWithStatus(w, r, "Error: file is required")
			return
		}
		defer file.Close()

		summary, err := ImportCSV(r.Context(), db, auditSvc, sessioncontext.ActorFromContext(r.Context()), file)
		if err != nil {
			log.Warn("product import failed", zap.Error(err))
			redirectWithStatus(w, r, "Error: "+err.Error())
			return
		}
		log.Info("products imported",
			zap.Int("inserted", summary.Inserted),
			zap.Int("updated", summary.Updated),
			zap.Int("errors", summary.Errors))
		redirectWithStatus(w, r, fmt.Sprintf("Imported: %d inserted, %d updated, %d unchanged, %d errors",
			summary.Inserted, summary.Updated, summary.Unchanged, summary.Errors))
	}
}

// ProductNumbersQueryHandler feeds the withdrawal form's autocomplete.
func ProductNumbersQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := ListNumbers(r.Context(), db)
		if err != nil {
			respond.Error(w, log, err, "failed to load products")
			return
		}
		respond.OK(w, entries)
	}
}

// ProductSearchQueryHandler resolves a list of product numbers to their cells.
func ProductSearchQueryHandler(db *sqlite.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lookupRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		numbers := make([]string, 0, len(req.Products))
		requested := make(map[string]int64, len(req.Products))
		for _, item := range req.Products {
			n := strings.TrimSpace(item.ProductNumber)
			numbers = append(numbers, n)
			if _, ok := requested[n]; !ok && item.Quantity > 0 {
				requested[n] = item.Quantity
			}
		}
		results, err := Lookup(r.Context(), db, numbers)
		if err != nil {
			respond.Error(w, log, err, "failed to search products")
			return
		}
		for i := range results {
			results[i].RequestedQuantity = requested[results[i].ProductNumber]
		}
		respond.OK(w, results)
	}
}

func ProductRestockCommandHandler(db *sqlite.DB, auditSvc *audit.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := productIDParam(r)
		if !ok {
			respond.Error(w, log, apperr.Validation("id", "invalid product id"), "")
			return
		}
		var req restockRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		if err := validation.Struct(req); err != nil {
			respond.Error(w, log, err, "")
			return
		}
		p, err := Restock(r.Context(), db, auditSvc, sessioncontext.ActorFromContext(r.Context()), id, req.Quantity, req.Notes)
		if err != nil {
			respond.Error(w, log, err, "failed to restock product")
			return
		}
		respond.OK(w, p)
	}
}

func inputFromForm(r *http.Request) (Input, error) {
	if err := r.ParseForm(); err != nil {
		return Input{}, apperr.Validation("form", "invalid form")
	}
	qtyRaw := strings.TrimSpace(r.PostForm.Get("quantity"))
	var qty int64
	if qtyRaw != "" {
		var err error
		qty, err = strconv.ParseInt(qtyRaw, 10, 64)
		if err != nil {
			return Input{}, apperr.Validation("quantity", "must be a whole number")
		}
	}
	return Input{
		ProductNumber: r.PostForm.Get("product_number"),
		Name:          r.PostForm.Get("name"),
		Category:      r.PostForm.Get("category"),
		Description:   r.PostForm.Get("description"),
		Quantity:      qty,
	}, nil
}

func productIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func redirectWithStatus(w http.ResponseWriter, r *http.Request, status string) {
	http.Redirect(w, r, productsPath+"?status="+url.QueryEscape(status), http.StatusSeeOther)
}
