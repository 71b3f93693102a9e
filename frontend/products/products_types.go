package products

import "gridstock/models"

// DefaultPageSize is the product list page length.
const DefaultPageSize = 50

// ListNumbersLimit caps the autocomplete feed.
const ListNumbersLimit = 100

// Input carries the editable product fields.
type Input struct {
	ProductNumber string `json:"product_number" validate:"notblank,max=64"`
	Name          string `json:"name" validate:"notblank,max=200"`
	Category      string `json:"category" validate:"max=100"`
	Description   string `json:"description" validate:"max=2000"`
	Quantity      int64  `json:"quantity" validate:"gte=0"`
}

// Page is one page of the product list.
type Page struct {
	Items    []models.Product `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Search   string           `json:"search"`
}

// LocationInfo describes where a looked-up product sits. X is the column
// and Y is the row, matching the grid screen's axes.
type LocationInfo struct {
	ID           int64  `json:"id"`
	FullLocation string `json:"full_location"`
	Row          int    `json:"row"`
	Column       int    `json:"column"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Notes        string `json:"notes"`
}

// LookupResult is one entry of a search-by-number response.
type LookupResult struct {
	ProductNumber string         `json:"product_number"`
	Found         bool           `json:"found"`
	ID            int64          `json:"id,omitempty"`
	Name          string         `json:"name,omitempty"`
	Category      string         `json:"category,omitempty"`
	Quantity      int64          `json:"quantity"`
	Locations     []LocationInfo `json:"locations"`
	// RequestedQuantity echoes the quantity the caller intends to take.
	RequestedQuantity int64 `json:"requested_quantity,omitempty"`
}

// NumberEntry feeds product-number autocomplete.
type NumberEntry struct {
	Number string `bun:"product_number" json:"number"`
	Name   string `bun:"name" json:"name"`
}

// ImportSummary reports a CSV import.
type ImportSummary struct {
	Inserted  int
	Updated   int
	Unchanged int
	Errors    int
}

type restockRequest struct {
	Quantity int64  `json:"quantity" validate:"gt=0"`
	Notes    string `json:"notes" validate:"max=500"`
}

type lookupItem struct {
	ProductNumber string `json:"product_number"`
	Quantity      int64  `json:"quantity"`
}

type lookupRequest struct {
	Products []lookupItem `json:"products"`
}

// PageData is rendered by the products page.
type PageData struct {
	Message    string
	Page       Page
	TotalPages int
}
