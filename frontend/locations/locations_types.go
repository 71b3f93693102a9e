package locations

import "gridstock/models"

// MoveResult reports a reassignment. Shifted counts cascaded neighbours and
// RowsAdded the rows appended to reach the target.
type MoveResult struct {
	Message   string `json:"message"`
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
	Shifted   int    `json:"shifted"`
	RowsAdded int    `json:"rows_added,omitempty"`
}

// CellListing is a location with its occupant, if any.
type CellListing struct {
	models.Location
	ProductID     *int64  `bun:"product_id" json:"product_id"`
	ProductNumber *string `bun:"product_number" json:"product_number"`
	ProductName   *string `bun:"product_name" json:"product_name"`
}

// shift is one planned cascade step.
type shift struct {
	ProductID     int64  `bun:"id"`
	ProductNumber string `bun:"product_number"`
	Quantity      int64  `bun:"quantity"`
	Row           int    `bun:"row_no"`
	Column        int    `bun:"col_no"`
	ToRow         int    `bun:"-"`
}

type occupant struct {
	ID            int64  `bun:"id"`
	ProductNumber string `bun:"product_number"`
}

type moveRequest struct {
	Location string `json:"location" validate:"required,cellref"`
}

type assignRequest struct {
	LocationID int64 `json:"location_id" validate:"gt=0"`
}

type updateCellRequest struct {
	Notes    string `json:"notes" validate:"max=500"`
	IsActive *bool  `json:"is_active"`
}

type moveResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Shifted   int    `json:"shifted"`
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
	RowsAdded int    `json:"rows_added,omitempty"`
}
