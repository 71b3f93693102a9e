package grid

import "gridstock/models"

// MaxResizeStep bounds a single add request.
const MaxResizeStep = 50

// Cell is one entry of the grid view keyed by "row,column".
type Cell struct {
	LocationID  int64    `json:"location_id"`
	Row         int      `json:"row"`
	Column      int      `json:"column"`
	Notes       string   `json:"notes"`
	IsActive    bool     `json:"is_active"`
	HasProducts bool     `json:"has_products"`
	Products    []string `json:"products"`
}

// View is the full grid of one warehouse.
type View struct {
	WarehouseID int64           `json:"warehouse_id"`
	Name        string          `json:"name"`
	Rows        int             `json:"rows"`
	Columns     int             `json:"columns"`
	Grid        map[string]Cell `json:"grid"`
}

// RemoveResult describes a shrink.
type RemoveResult struct {
	Warehouse        models.Warehouse `json:"-"`
	Rows             int              `json:"rows"`
	Columns          int              `json:"columns"`
	CellsRemoved     int64            `json:"cells_removed"`
	ProductsDetached int              `json:"products_detached"`
}

type resizeRequest struct {
	Count int `json:"count"`
}

type axis int

const (
	axisRows axis = iota
	axisColumns
)

func (a axis) column() string {
	if a == axisColumns {
		return "col_no"
	}
	return "row_no"
}

func (a axis) String() string {
	if a == axisColumns {
		return "columns"
	}
	return "rows"
}

func (a axis) extent(w *models.Warehouse) int {
	if a == axisColumns {
		return w.ColumnsCount
	}
	return w.RowsCount
}

type hostedProduct struct {
	ID            int64  `bun:"id"`
	ProductNumber string `bun:"product_number"`
	Quantity      int64  `bun:"quantity"`
	Row           int    `bun:"row_no"`
	Column        int    `bun:"col_no"`
}

type cellRow struct {
	ID            int64   `bun:"id"`
	Row           int     `bun:"row_no"`
	Column        int     `bun:"col_no"`
	Notes         string  `bun:"notes"`
	IsActive      bool    `bun:"is_active"`
	ProductNumber *string `bun:"product_number"`
}
