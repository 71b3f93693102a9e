package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// User represents an authenticated app user.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,unique,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Role         string    `bun:"role,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// User roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Session is used by middleware and auth handlers.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID                string         `bun:"id,pk"`
	UserID            int64          `bun:"user_id,notnull"`
	User              User           `bun:"rel:belongs-to,join:user_id=id"`
	UserRoles         []string       `bun:"-"`
	ScreenPermissions map[string]int `bun:"-"`
	ExpiresAt         time.Time      `bun:"expires_at,notnull"`
	CreatedAt         time.Time      `bun:"created_at,notnull"`
	UpdatedAt         time.Time      `bun:"updated_at,notnull"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Warehouse is the grid extent that owns its locations.
type Warehouse struct {
	bun.BaseModel `bun:"table:warehouses,alias:w"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Description  string    `bun:"description,notnull" json:"description"`
	RowsCount    int       `bun:"rows_count,notnull" json:"rows_count"`
	ColumnsCount int       `bun:"columns_count,notnull" json:"columns_count"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Location is one addressable cell of a warehouse grid.
type Location struct {
	bun.BaseModel `bun:"table:locations,alias:l"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	WarehouseID int64     `bun:"warehouse_id,notnull" json:"warehouse_id"`
	Row         int       `bun:"row_no,notnull" json:"row"`
	Column      int       `bun:"col_no,notnull" json:"column"`
	Notes       string    `bun:"notes,notnull" json:"notes"`
	IsActive    bool      `bun:"is_active,notnull" json:"is_active"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

// FullLocation renders the cell as R<row>C<column>.
func (l Location) FullLocation() string {
	return CellRef(l.Row, l.Column)
}

// CellRef formats a row/column pair the way cells are addressed on labels.
func CellRef(row, column int) string {
	return fmt.Sprintf("R%dC%d", row, column)
}

// Product is a catalog item with a quantity and at most one cell.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	ProductNumber string    `bun:"product_number,unique,notnull" json:"product_number"`
	Name          string    `bun:"name,notnull" json:"name"`
	Category      string    `bun:"category,notnull" json:"category"`
	Description   string    `bun:"description,notnull" json:"description"`
	LocationID    *int64    `bun:"location_id" json:"location_id"`
	Location      *Location `bun:"rel:belongs-to,join:location_id=id" json:"location,omitempty"`
	Quantity      int64     `bun:"quantity,notnull" json:"quantity"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// Audit actions.
const (
	ActionAdded            = "added"
	ActionUpdated          = "updated"
	ActionDeleted          = "deleted"
	ActionQuantityTaken    = "quantity_taken"
	ActionQuantityAdded    = "quantity_added"
	ActionLocationAssigned = "location_assigned"
	ActionLocationRemoved  = "location_removed"
)

// AuditActions lists every action in display order.
var AuditActions = []string{
	ActionAdded,
	ActionUpdated,
	ActionDeleted,
	ActionQuantityTaken,
	ActionQuantityAdded,
	ActionLocationAssigned,
	ActionLocationRemoved,
}

// AuditLog captures immutable change history for product operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	Action         string    `bun:"action,notnull" json:"action"`
	ProductID      int64     `bun:"product_id,notnull" json:"product_id"`
	ProductNumber  string    `bun:"product_number,notnull" json:"product_number"`
	QuantityBefore int64     `bun:"quantity_before,notnull" json:"quantity_before"`
	QuantityAfter  int64     `bun:"quantity_after,notnull" json:"quantity_after"`
	QuantityChange int64     `bun:"quantity_change,notnull" json:"quantity_change"`
	Notes          string    `bun:"notes,notnull" json:"notes"`
	User           string    `bun:"user,notnull" json:"user"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"created_at"`
}

// OrderLine is one product delta inside an order snapshot.
type OrderLine struct {
	ProductNumber string `json:"product_number"`
	OldQuantity   int64  `json:"old_quantity"`
	NewQuantity   int64  `json:"new_quantity"`
	QuantityTaken int64  `json:"quantity_taken"`
}

// Order is the immutable record of one successful withdrawal batch.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	OrderNumber     string    `bun:"order_number,unique,notnull" json:"order_number"`
	ProductsData    string    `bun:"products_data,notnull" json:"products_data"`
	TotalProducts   int       `bun:"total_products,notnull" json:"total_products"`
	TotalQuantities int64     `bun:"total_quantities,notnull" json:"total_quantities"`
	RecipientName   string    `bun:"recipient_name,notnull" json:"recipient_name"`
	Notes           string    `bun:"notes,notnull" json:"notes"`
	User            string    `bun:"user,notnull" json:"user"`
	CreatedAt       time.Time `bun:"created_at,notnull" json:"created_at"`
}

// DailyReportArchive stores one day's aggregated audit activity.
type DailyReportArchive struct {
	bun.BaseModel `bun:"table:daily_report_archives,alias:dra"`

	ID                int64     `bun:"id,pk,autoincrement" json:"id"`
	ReportDate        string    `bun:"report_date,unique,notnull" json:"report_date"`
	ProductsAdded     int64     `bun:"products_added,notnull" json:"products_added"`
	ProductsUpdated   int64     `bun:"products_updated,notnull" json:"products_updated"`
	ProductsDeleted   int64     `bun:"products_deleted,notnull" json:"products_deleted"`
	QuantitiesTaken   int64     `bun:"quantities_taken,notnull" json:"quantities_taken"`
	LocationsAssigned int64     `bun:"locations_assigned,notnull" json:"locations_assigned"`
	TotalAdded        int64     `bun:"total_added,notnull" json:"total_added"`
	TotalRemoved      int64     `bun:"total_removed,notnull" json:"total_removed"`
	ReportData        string    `bun:"report_data,notnull" json:"report_data"`
	IsAutoSaved       bool      `bun:"is_auto_saved,notnull" json:"is_auto_saved"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"created_at"`
}
