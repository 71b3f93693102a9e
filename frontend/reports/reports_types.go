package reports

import "gridstock/models"

// DateLayout is the report_date format.
const DateLayout = "2006-01-02"

// ActionStats aggregates one action kind over a day.
type ActionStats struct {
	Action    string `bun:"action" json:"action"`
	Count     int64  `bun:"count" json:"count"`
	NetChange int64  `bun:"net_change" json:"net_change"`
	Added     int64  `bun:"added" json:"added"`
	Removed   int64  `bun:"removed" json:"removed"`
}

// DailyReport is one day of audit activity.
type DailyReport struct {
	Date              string                 `json:"date"`
	ProductsAdded     int64                  `json:"products_added"`
	ProductsUpdated   int64                  `json:"products_updated"`
	ProductsDeleted   int64                  `json:"products_deleted"`
	QuantitiesTaken   int64                  `json:"quantities_taken"`
	QuantitiesAdded   int64                  `json:"quantities_added"`
	LocationsAssigned int64                  `json:"locations_assigned"`
	LocationsRemoved  int64                  `json:"locations_removed"`
	TotalAdded        int64                  `json:"total_added"`
	TotalRemoved      int64                  `json:"total_removed"`
	Breakdown         map[string]ActionStats `json:"breakdown"`
}

type PageData struct {
	Message  string
	Report   DailyReport
	Archives []models.DailyReportArchive
	CanSave  bool
}
