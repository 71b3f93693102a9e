package orders

import "gridstock/models"

// DefaultPageSize is the order list page length.
const DefaultPageSize = 50

const orderNumberAttempts = 5

// WithdrawItem is one requested line. Number is trimmed; blank numbers are dropped.
type WithdrawItem struct {
	Number   string `json:"number"`
	Quantity int64  `json:"quantity" validate:"gte=0"`
}

// WithdrawRequest is a batch of lines applied all-or-nothing.
type WithdrawRequest struct {
	Items         []WithdrawItem `json:"products" validate:"dive"`
	RecipientName string         `json:"recipient_name" validate:"max=200"`
	Notes         string         `json:"notes" validate:"max=1000"`
}

// WithdrawResult is returned after a committed batch.
type WithdrawResult struct {
	UpdatedProducts []models.OrderLine `json:"updated_products"`
	OrderNumber     string             `json:"order_number"`
	Order           models.Order       `json:"-"`
}

type withdrawResponse struct {
	Success         bool               `json:"success"`
	UpdatedProducts []models.OrderLine `json:"updated_products"`
	OrderNumber     string             `json:"order_number"`
	Message         string             `json:"message"`
}

// Page is one page of the order list.
type Page struct {
	Items    []models.Order `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Search   string         `json:"search"`
}

// Detail is an order with its decoded lines.
type Detail struct {
	models.Order
	Lines []models.OrderLine `json:"lines"`
}

type PageData struct {
	Message    string
	Page       Page
	TotalPages int
	CanDelete  bool
}
