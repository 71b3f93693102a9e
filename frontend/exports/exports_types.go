package exports

// Export types recorded in export_runs.
const (
	TypeAuditLogs = "audit_logs_csv"
	TypeOrders    = "orders_csv"
	TypeProducts  = "products_csv"
)

var (
	auditLogsHeader = []string{"created_at", "user", "action", "product_number", "quantity_before", "quantity_after", "quantity_change", "notes"}
	ordersHeader    = []string{"order_number", "created_at", "user", "recipient_name", "total_products", "total_quantities", "notes"}
	// productsHeader matches the import format so an export can be re-imported.
	productsHeader = []string{"product_number", "name", "quantity", "category", "description"}
)

type auditRow struct {
	CreatedAt      string `bun:"created_at"`
	User           string `bun:"user"`
	Action         string `bun:"action"`
	ProductNumber  string `bun:"product_number"`
	QuantityBefore int64  `bun:"quantity_before"`
	QuantityAfter  int64  `bun:"quantity_after"`
	QuantityChange int64  `bun:"quantity_change"`
	Notes          string `bun:"notes"`
}

type orderRow struct {
	OrderNumber     string `bun:"order_number"`
	CreatedAt       string `bun:"created_at"`
	User            string `bun:"user"`
	RecipientName   string `bun:"recipient_name"`
	TotalProducts   int64  `bun:"total_products"`
	TotalQuantities int64  `bun:"total_quantities"`
	Notes           string `bun:"notes"`
}
