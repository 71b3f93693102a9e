package dashboard

import "gridstock/models"

// RecentActivityLimit is the number of audit entries on the dashboard.
const RecentActivityLimit = 10

// Stats summarises the default warehouse and catalog.
type Stats struct {
	WarehouseName  string            `json:"warehouse_name"`
	Rows           int               `json:"rows"`
	Columns        int               `json:"columns"`
	TotalCapacity  int               `json:"total_capacity"`
	LocationsCount int               `bun:"locations_count" json:"locations_count"`
	OccupiedCells  int               `bun:"occupied_cells" json:"occupied_cells"`
	ProductsCount  int               `bun:"products_count" json:"products_count"`
	TotalUnits     int64             `bun:"total_units" json:"total_units"`
	OutOfStock     int               `bun:"out_of_stock" json:"out_of_stock"`
	OrdersToday    int               `bun:"orders_today" json:"orders_today"`
	RecentActivity []models.AuditLog `bun:"-" json:"recent_activity"`
}
