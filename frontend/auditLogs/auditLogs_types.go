package auditlogs

import "gridstock/models"

// DisplayTimeLayout is how entry times appear on the page.
const DisplayTimeLayout = "02/01/2006 15:04"

type PageData struct {
	Message    string
	Search     string
	Action     string
	Page       int
	TotalPages int
	Total      int
	CanPurge   bool
	Rows       []Row
}

// Row is one audit entry prepared for display.
type Row struct {
	CreatedAtUK    string
	Actor          string
	Action         string
	ProductNumber  string
	QuantityBefore int64
	QuantityAfter  int64
	QuantityChange int64
	Notes          string
}

// Listing is the JSON shape of one filtered page.
type Listing struct {
	Logs     []models.AuditLog `json:"logs"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
