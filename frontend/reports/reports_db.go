package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

// BuildDailyReport aggregates the audit entries created on day (UTC).
func BuildDailyReport(ctx context.Context, db *sqlite.DB, day time.Time) (DailyReport, error) {
	start := truncateDay(day)
	end := start.AddDate(0, 0, 1)

	stats := make([]ActionStats, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT action,
       COUNT(1) AS count,
       COALESCE(SUM(quantity_change), 0) AS net_change,
       COALESCE(SUM(CASE WHEN quantity_change > 0 THEN quantity_change ELSE 0 END), 0) AS added,
       COALESCE(SUM(CASE WHEN quantity_change < 0 THEN -quantity_change ELSE 0 END), 0) AS removed
FROM audit_logs
WHERE created_at >= ? AND created_at < ?
GROUP BY action
ORDER BY action ASC`, start, end).Scan(ctx, &stats)
	})
	if err != nil {
		return DailyReport{}, fmt.Errorf("build daily report %s: %w", start.Format(DateLayout), err)
	}
	return summarize(start, stats), nil
}

func summarize(day time.Time, stats []ActionStats) DailyReport {
	r := DailyReport{Date: day.Format(DateLayout), Breakdown: make(map[string]ActionStats, len(models.AuditActions))}
	for _, action := range models.AuditActions {
		r.Breakdown[action] = ActionStats{Action: action}
	}
	for _, s := range stats {
		r.Breakdown[s.Action] = s
		r.TotalAdded += s.Added
		switch s.Action {
		case models.ActionAdded:
			r.ProductsAdded = s.Count
		case models.ActionUpdated:
			r.ProductsUpdated = s.Count
		case models.ActionDeleted:
			r.ProductsDeleted = s.Count
		case models.ActionQuantityTaken:
			r.QuantitiesTaken = s.Count
			r.TotalRemoved = s.Removed
		case models.ActionQuantityAdded:
			r.QuantitiesAdded = s.Count
		case models.ActionLocationAssigned:
			r.LocationsAssigned = s.Count
		case models.ActionLocationRemoved:
			r.LocationsRemoved = s.Count
		}
	}
	return r
}

// Archive stores the report for day, replacing any earlier archive of it.
func Archive(ctx context.Context, db *sqlite.DB, day time.Time, auto bool) (models.DailyReportArchive, error) {
	report, err := BuildDailyReport(ctx, db, day)
	if err != nil {
		return models.DailyReportArchive{}, err
	}
	data, err := json.Marshal(report)
	if err != nil {
		return models.DailyReportArchive{}, err
	}
	a := models.DailyReportArchive{
		ReportDate:        report.Date,
		ProductsAdded:     report.ProductsAdded,
		ProductsUpdated:   report.ProductsUpdated,
		ProductsDeleted:   report.ProductsDeleted,
		QuantitiesTaken:   report.QuantitiesTaken,
		LocationsAssigned: report.LocationsAssigned,
		TotalAdded:        report.TotalAdded,
		TotalRemoved:      report.TotalRemoved,
		ReportData:        string(data),
		IsAutoSaved:       auto,
		CreatedAt:         time.Now().UTC(),
	}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&a).
			On("CONFLICT (report_date) DO UPDATE").
			Set("products_added = EXCLUDED.products_added").
			Set("products_updated = EXCLUDED.products_updated").
			Set("products_deleted = EXCLUDED.products_deleted").
			Set("quantities_taken = EXCLUDED.quantities_taken").
			Set("locations_assigned = EXCLUDED.locations_assigned").
			Set("total_added = EXCLUDED.total_added").
			Set("total_removed = EXCLUDED.total_removed").
			Set("report_data = EXCLUDED.report_data").
			Set("is_auto_saved = EXCLUDED.is_auto_saved").
			Set("created_at = EXCLUDED.created_at").
			Exec(ctx)
		return err
	})
	if err != nil {
		return models.DailyReportArchive{}, fmt.Errorf("archive report %s: %w", report.Date, err)
	}
	return a, nil
}

// AutoArchive archives the day before now unless it is already archived.
// Errors are logged and swallowed so a failing archive never blocks callers.
func AutoArchive(ctx context.Context, db *sqlite.DB, log *zap.Logger, now time.Time) {
	day := truncateDay(now).AddDate(0, 0, -1)
	date := day.Format(DateLayout)

	_, err := GetArchive(ctx, db, date)
	if err == nil {
		return
	}
	if !apperr.IsNotFound(err) {
		log.Warn("auto archive lookup failed", zap.String("report_date", date), zap.Error(err))
		return
	}
	a, err := Archive(ctx, db, day, true)
	if err != nil {
		log.Warn("auto archive failed", zap.String("report_date", date), zap.Error(err))
		return
	}
	log.Info("daily report archived",
		zap.String("report_date", a.ReportDate),
		zap.Int64("quantities_taken", a.QuantitiesTaken),
		zap.Int64("total_removed", a.TotalRemoved))
}

// RunAutoArchiver calls AutoArchive immediately and then on every tick until
// ctx is cancelled.
func RunAutoArchiver(ctx context.Context, db *sqlite.DB, log *zap.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	AutoArchive(ctx, db, log, time.Now())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			AutoArchive(ctx, db, log, now)
		}
	}
}

// GetArchive returns the archive stored for date (YYYY-MM-DD).
func GetArchive(ctx context.Context, db *sqlite.DB, date string) (models.DailyReportArchive, error) {
	var a models.DailyReportArchive
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&a).Where("dra.report_date = ?", date).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.DailyReportArchive{}, apperr.NotFound("report", date)
	}
	return a, err
}

// ListArchives returns up to limit archives, newest report first.
func ListArchives(ctx context.Context, db *sqlite.DB, limit int) ([]models.DailyReportArchive, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}
	out := make([]models.DailyReportArchive, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&out).OrderExpr("dra.report_date DESC").Limit(limit).Scan(ctx)
	})
	return out, err
}

// ParseDay reads a YYYY-MM-DD date; an empty value means today.
func ParseDay(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return truncateDay(now), nil
	}
	day, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation("date", "must be YYYY-MM-DD")
	}
	return day, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
