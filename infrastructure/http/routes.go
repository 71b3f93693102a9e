package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminusers "gridstock/frontend/adminUsers"
	auditlogs "gridstock/frontend/auditLogs"
	"gridstock/frontend/dashboard"
	exportspage "gridstock/frontend/exports"
	"gridstock/frontend/grid"
	"gridstock/frontend/help"
	"gridstock/frontend/locations"
	"gridstock/frontend/login"
	"gridstock/frontend/orders"
	"gridstock/frontend/products"
	"gridstock/frontend/reports"
	"gridstock/infrastructure/rbac"
)

// RegisterLoginRoutes registers login/logout routes. Login posts are rate limited per IP.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler(s.Log))
	s.router.With(s.LoginLimiter.Middleware).Post("/login", login.CreateLoginHandler(s.DB, s.SessionCache, s.UserCache, s.Cookies, s.Log))
	s.router.Post("/logout", login.LogoutHandler(s.DB, s.SessionCache, s.Cookies, s.Log))
}

// RegisterAdminRoutes registers maintenance routes. Staff gets no grant for any of them.
func (s *Server) RegisterAdminRoutes(r chi.Router) chi.Router {
	s.Rbac.Add(rbac.RoleAdmin, "GRID_RESIZE", http.MethodPost, "/tasker/api/grid/*/*")
	r.Post("/api/grid/{axis}/{op}", grid.GridResizeCommandHandler(s.DB, s.Audit, s.Log))
	s.Rbac.Add(rbac.RoleAdmin, "GRID_BACKFILL", http.MethodPost, "/tasker/api/grid/backfill")
	r.Post("/api/grid/backfill", grid.GridBackfillCommandHandler(s.DB, s.Log))
	s.Rbac.Add(rbac.RoleAdmin, "LOCATION_EDIT", http.MethodPost, "/tasker/api/locations/*")
	r.Post("/api/locations/{id}", locations.UpdateCellCommandHandler(s.DB, s.Log))

	s.Rbac.Add(rbac.RoleAdmin, "PRODUCT_DELETE", http.MethodPost, "/tasker/products/*/delete")
	r.Post("/products/{id}/delete", products.ProductDeleteCommandHandler(s.DB, s.Audit, s.Log))
	s.Rbac.Add(rbac.RoleAdmin, "PRODUCT_DELETE_BULK", http.MethodPost, "/tasker/products/delete")
	r.Post("/products/delete", products.ProductsBulkDeleteCommandHandler(s.DB, s.Audit, s.Log))
	s.Rbac.Add(rbac.RoleAdmin, "PRODUCT_RESET", http.MethodPost, "/tasker/products/reset")
	r.Post("/products/reset", products.ProductsResetCommandHandler(s.DB, s.Log))

	s.Rbac.Add(rbac.RoleAdmin, "ORDER_DELETE", http.MethodPost, "/tasker/orders/*/delete")
	r.Post("/orders/{id}/delete", orders.OrderDeleteCommandHandler(s.DB, s.Log))

	s.Rbac.Add(rbac.RoleAdmin, "AUDIT_PURGE", http.MethodPost, "/tasker/audit-logs/purge")
	r.Post("/audit-logs/purge", auditlogs.AuditLogsPurgeCommandHandler(s.DB, s.Log))

	s.Rbac.Add(rbac.RoleAdmin, "REPORT_ARCHIVE", http.MethodPost, "/tasker/reports/archive")
	r.Post("/reports/archive", reports.ReportsArchiveCommandHandler(s.DB, s.Log))

	s.Rbac.Add(rbac.RoleAdmin, "DASHBOARD_VIEW", http.MethodGet, "/tasker/dashboard")
	r.Get("/dashboard", dashboard.DashboardQueryHandler(s.DB, s.Log))

	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_LIST_VIEW", http.MethodGet, "/tasker/admin/users")
	r.Get("/admin/users", adminusers.UsersPageQueryHandler(s.DB, s.Log))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_CREATE", http.MethodPost, "/tasker/admin/users")
	r.Post("/admin/users", adminusers.CreateUserCommandHandler(s.DB, s.UserCache, s.Log))
	return r
}

// RegisterFrontendRoutes registers the day-to-day routes open to staff.
func (s *Server) RegisterFrontendRoutes(r chi.Router) chi.Router {
	s.RegisterProductRoutes(r)
	s.RegisterStockMovementRoutes(r)
	s.RegisterRecordRoutes(r)

	s.Rbac.Add(rbac.RoleStaff, "HELP_VIEW", http.MethodGet, "/tasker/help")
	r.Get("/help", help.HelpPageQueryHandler())
	return r
}

func (s *Server) RegisterProductRoutes(r chi.Router) {
	s.Rbac.Add(rbac.RoleStaff, "PRODUCTS_VIEW", http.MethodGet, "/tasker/products")
	r.Get("/products", products.ProductsPageQueryHandler(s.DB, s.Log))
	s.Rbac.Add(rbac.RoleStaff, "PRODUCT_CREATE", http.MethodPost, "/tasker/products")
	r.Post("/products", products.ProductCreateCommandHandler(s.DB, s.Audit, s.Log))
	s.Rbac.Add(rbac.RoleStaff, "PRODUCT_EDIT", http.MethodPost, "/tasker/products/*/edit")
	r.Post("/products/{id}/edit", products.ProductUpdateCommandHandler(s.DB, s.Audit, s.Log))
	s.Rbac.Add(rbac.RoleStaff, "PRODUCT_IMPORT", http.MethodPost, "/tasker/products/import")
	r.Post("/products/import", products.ProductsImportCommandHandler(s.DB, s.Audit, s.Log))

	s.Rbac.Add(rbac.RoleStaff, "PRODUCT_NUMBERS", http.MethodGet, "/tasker/api/products")
	r.Get("/api/products", products.ProductNumbersQueryHandler(s.DB, s.Log))
	s.Rbac.Add(rbac.RoleStaff, "PRODUCT_SEARCH", http.MethodPost, "/tasker/api/search")
	r.Post("/api/search", products.ProductSearchQueryHandler(s.DB, s.Log))
	s.Rbac.Add(rbac.RoleStaff, "PRODUCT_RESTOCK", http.MethodPost, "/tasker/api/products/*/restock")
	r.Post("/api/products/{id}/restock", products.ProductRestockCommandHandler(s.DB, s.Audit, s.Log))
}

func (s *Server) RegisterStockMovementRoutes(r chi.Router) {
	s.Rbac.Add(rbac.RoleStaff, "GRID_VIEW", http.MethodGet, "/tasker/api/grid")
	r.Get("/api/grid", grid.GridQueryHandler(s.DB, s.Log))
	s.Rbac.Add(rbac.RoleStaff, "LOCATIONS_VIEW", http.MethodGet, "/tasker/api/locations")
	r.Get("/api/locations", locations.LocationsQueryHandler(s.DB, s.Log))

	s.Rbac.Add(rbac.RoleStaff, "PRODUCT_MOVE", http.MethodPost, "/tasker/api/products/*/move")
	r.Post("/api/products/{id}/move", locations.MoveProductCommandHandler(s.DB, s.Audit, s.Log))
	s.Rbac.Add(rbac.RoleStaff, "PRODUCT_ASSIGN", http.MethodPost, "/tasker/api/products/*/assign")
	r.Post("/api/products/{id}/assign", locations.AssignProductCommandHandler(s.DB, s.Audit, s.Log))
	s.Rbac.Add(rbac.RoleStaff, "PRODUCT_UNASSIGN", http.MethodPost, "/tasker/api/products/*/unassign")
	r.Post("/api/products/{id}/unassign", locations.UnassignProductCommandHandler(s.DB, s.Audit, s.Log))

	s.Rbac.Add(rbac.RoleStaff, "WITHDRAW", http.MethodPost, "/tasker/api/withdraw")
	r.Post("/api/withdraw", orders.WithdrawCommandHandler(s.DB, s.Audit, s.Log))
}

func (s *Server) RegisterRecordRoutes(r chi.Router) {
	s.Rbac.Add(rbac.RoleStaff, "ORDERS_VIEW", http.MethodGet, "/tasker/orders")
	r.Get("/orders", orders.OrdersPageQueryHandler(s.DB, s.Log))
	s.Rbac.Add(rbac.RoleStaff, "ORDER_PDF", http.MethodGet, "/tasker/orders/*")
	r.Get("/orders/{number}.pdf", orders.OrderPDFQueryHandler(s.DB, s.Log))

	s.Rbac.Add(rbac.RoleStaff, "AUDIT_VIEW", http.MethodGet, "/tasker/audit-logs")
	r.Get("/audit-logs", auditlogs.AuditLogsPageQueryHandler(s.DB, s.Log))

	s.Rbac.Add(rbac.RoleStaff, "EXPORTS", http.MethodGet, "/tasker/exports/*")
	r.Get("/exports/audit-logs.csv", exportspage.AuditLogsExportCSVHandler(s.DB, s.Log))
	r.Get("/exports/orders.csv", exportspage.OrdersExportCSVHandler(s.DB, s.Log))
	r.Get("/exports/products.csv", exportspage.ProductsExportCSVHandler(s.DB, s.Log))

	s.Rbac.Add(rbac.RoleStaff, "REPORTS_VIEW", http.MethodGet, "/tasker/reports")
	r.Get("/reports", reports.ReportsPageQueryHandler(s.DB, s.Log))
}
