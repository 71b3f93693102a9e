package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gridstock/frontend/shared/nav"
	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

func openReportsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "reports-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	require.NoError(t, sqlite.ApplyMigrations(context.Background(), db, migrationsDir))
	return db
}

type logAt struct {
	action string
	before int64
	after  int64
	at     time.Time
}

func seedLogs(t *testing.T, db *sqlite.DB, entries []logAt) {
	t.Helper()
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		p := models.Product{ProductNumber: "BAG-001", Name: "Bag", CreatedAt: now, UpdatedAt: now}
		if _, err := tx.NewInsert().Model(&p).Exec(ctx); err != nil {
			return err
		}
		for _, e := range entries {
			l := models.AuditLog{
				Action:         e.action,
				ProductID:      p.ID,
				ProductNumber:  p.ProductNumber,
				QuantityBefore: e.before,
				QuantityAfter:  e.after,
				QuantityChange: e.after - e.before,
				User:           "System",
				CreatedAt:      e.at.UTC(),
			}
			if _, err := tx.NewInsert().Model(&l).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestBuildDailyReport(t *testing.T) {
	db := openReportsTestDB(t)
	day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	seedLogs(t, db, []logAt{
		{action: models.ActionAdded, before: 0, after: 10, at: day.Add(1 * time.Hour)},
		{action: models.ActionQuantityTaken, before: 10, after: 7, at: day.Add(2 * time.Hour)},
		{action: models.ActionQuantityTaken, before: 7, after: 7, at: day.Add(3 * time.Hour)},
		{action: models.ActionQuantityAdded, before: 7, after: 9, at: day.Add(4 * time.Hour)},
		{action: models.ActionUpdated, before: 9, after: 5, at: day.Add(5 * time.Hour)},
		{action: models.ActionLocationAssigned, before: 5, after: 5, at: day.Add(23*time.Hour + 59*time.Minute)},
		{action: models.ActionQuantityTaken, before: 5, after: 1, at: day.AddDate(0, 0, 1)},
		{action: models.ActionQuantityTaken, before: 5, after: 1, at: day.Add(-time.Second)},
	})

	r, err := BuildDailyReport(context.Background(), db, day.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "2026-05-10", r.Date)
	assert.Equal(t, int64(1), r.ProductsAdded)
	assert.Equal(t, int64(1), r.ProductsUpdated)
	assert.Equal(t, int64(2), r.QuantitiesTaken)
	assert.Equal(t, int64(1), r.QuantitiesAdded)
	assert.Equal(t, int64(1), r.LocationsAssigned)
	assert.Equal(t, int64(12), r.TotalAdded)
	assert.Equal(t, int64(3), r.TotalRemoved)
	assert.Equal(t, int64(-3), r.Breakdown[models.ActionQuantityTaken].NetChange)
	assert.Equal(t, int64(0), r.Breakdown[models.ActionDeleted].Count)
	assert.Len(t, r.Breakdown, len(models.AuditActions))
}

func TestArchiveUpsertsByDate(t *testing.T) {
	db := openReportsTestDB(t)
	day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	seedLogs(t, db, []logAt{{action: models.ActionQuantityTaken, before: 4, after: 1, at: day.Add(time.Hour)}})

	first, err := Archive(context.Background(), db, day, true)
	require.NoError(t, err)
	assert.True(t, first.IsAutoSaved)
	assert.Equal(t, int64(3), first.TotalRemoved)

	second, err := Archive(context.Background(), db, day, false)
	require.NoError(t, err)
	assert.False(t, second.IsAutoSaved)

	archives, err := ListArchives(context.Background(), db, 10)
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, "2026-05-10", archives[0].ReportDate)
	assert.False(t, archives[0].IsAutoSaved)

	var data DailyReport
	require.NoError(t, json.Unmarshal([]byte(archives[0].ReportData), &data))
	assert.Equal(t, int64(1), data.QuantitiesTaken)
}

func TestAutoArchiveArchivesYesterdayOnce(t *testing.T) {
	db := openReportsTestDB(t)
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	now := time.Date(2026, 5, 11, 8, 0, 0, 0, time.UTC)

	AutoArchive(context.Background(), db, log, now)
	AutoArchive(context.Background(), db, log, now)

	a, err := GetArchive(context.Background(), db, "2026-05-10")
	require.NoError(t, err)
	assert.True(t, a.IsAutoSaved)
	assert.Equal(t, 1, logs.FilterMessage("daily report archived").Len())

	_, err = GetArchive(context.Background(), db, "2026-05-11")
	assert.True(t, apperr.IsNotFound(err))
}

func TestAutoArchiveSwallowsErrors(t *testing.T) {
	db := openReportsTestDB(t)
	core, logs := observer.New(zapcore.WarnLevel)
	require.NoError(t, db.Close())

	assert.NotPanics(t, func() {
		AutoArchive(context.Background(), db, zap.New(core), time.Now())
	})
	assert.Equal(t, 1, logs.Len())
}

func TestParseDay(t *testing.T) {
	now := time.Date(2026, 5, 11, 22, 30, 0, 0, time.UTC)
	d, err := ParseDay("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDay("11/05/2026", now)
	assert.True(t, apperr.IsValidation(err))
}

func TestReportsPageRenders(t *testing.T) {
	var buf bytes.Buffer
	report := summarize(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), nil)
	err := ReportsPage(navForTest(), PageData{Report: report, CanSave: true}).Render(context.Background(), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `value="2026-05-10"`)
	assert.Contains(t, buf.String(), "/tasker/reports/archive")
}

func navForTest() nav.TopNavData {
	return nav.BuildTopNavData(models.Session{User: models.User{Username: "ann", Role: models.RoleAdmin}})
}
