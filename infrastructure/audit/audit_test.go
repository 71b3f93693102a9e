package audit

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

func openAuditTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "audit-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime caller unavailable")
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "sqlite", "migrations")
	require.NoError(t, sqlite.ApplyMigrations(context.Background(), db, migrationsDir))
	return db
}

func seedProduct(t *testing.T, db *sqlite.DB, number string) int64 {
	t.Helper()
	var id int64
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO products (product_number, name, quantity, created_at, updated_at) VALUES (?, ?, 10, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, number, number); err != nil {
			return err
		}
		return tx.NewRaw(`SELECT id FROM products WHERE product_number = ?`, number).Scan(ctx, &id)
	})
	require.NoError(t, err)
	return id
}

func record(t *testing.T, db *sqlite.DB, svc *Service, e Entry) models.AuditLog {
	t.Helper()
	var out models.AuditLog
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		var err error
		out, err = svc.Record(ctx, tx, e)
		return err
	})
	require.NoError(t, err)
	return out
}

func TestRecordComputesQuantityChangeAndDefaultsUser(t *testing.T) {
	db := openAuditTestDB(t)
	id := seedProduct(t, db, "BAG-001")

	log := record(t, db, NewService(), Entry{
		Action:         models.ActionQuantityTaken,
		ProductID:      id,
		ProductNumber:  "BAG-001",
		QuantityBefore: 10,
		QuantityAfter:  7,
	})

	assert.Equal(t, int64(-3), log.QuantityChange)
	assert.Equal(t, DefaultUser, log.User)
	assert.NotZero(t, log.ID)

	logs, err := List(context.Background(), db, Filter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(-3), logs[0].QuantityChange)
	assert.Equal(t, "System", logs[0].User)
}

func TestRecordRejectsUnknownAction(t *testing.T) {
	db := openAuditTestDB(t)
	id := seedProduct(t, db, "BAG-001")

	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := NewService().Record(ctx, tx, Entry{Action: "teleported", ProductID: id, ProductNumber: "BAG-001"})
		return err
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestListFiltersAndBrowseOrder(t *testing.T) {
	db := openAuditTestDB(t)
	bag1 := seedProduct(t, db, "BAG-001")
	bag2 := seedProduct(t, db, "BAG-002")
	box := seedProduct(t, db, "BOX-900")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc := &Service{now: func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}}

	record(t, db, svc, Entry{Action: models.ActionQuantityTaken, ProductID: bag1, ProductNumber: "BAG-001", QuantityBefore: 10, QuantityAfter: 9})
	record(t, db, svc, Entry{Action: models.ActionAdded, ProductID: bag2, ProductNumber: "BAG-002", QuantityAfter: 10})
	record(t, db, svc, Entry{Action: models.ActionQuantityTaken, ProductID: bag2, ProductNumber: "BAG-002", QuantityBefore: 10, QuantityAfter: 8})
	record(t, db, svc, Entry{Action: models.ActionAdded, ProductID: box, ProductNumber: "BOX-900", QuantityAfter: 10})

	logs, err := List(context.Background(), db, Filter{})
	require.NoError(t, err)
	require.Len(t, logs, 4)
	got := make([]string, 0, len(logs))
	for _, l := range logs {
		got = append(got, l.Action+":"+l.ProductNumber)
	}
	assert.Equal(t, []string{
		"added:BOX-900",
		"added:BAG-002",
		"quantity_taken:BAG-002",
		"quantity_taken:BAG-001",
	}, got)

	logs, err = List(context.Background(), db, Filter{Search: "bag", Action: models.ActionQuantityTaken, Order: OrderNewest})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "BAG-002", logs[0].ProductNumber)
	assert.Equal(t, "BAG-001", logs[1].ProductNumber)

	count, err := Count(context.Background(), db, Filter{Search: "BAG"})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	logs, err = List(context.Background(), db, Filter{Order: OrderNewest, Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "BAG-001", logs[0].ProductNumber)

	logs, err = List(context.Background(), db, Filter{Since: base.Add(2 * time.Minute), Until: base.Add(4 * time.Minute), Order: OrderNewest})
	require.NoError(t, err)
	require.Len(t, logs, 2)
}

func TestPurgeDeletesAllEntries(t *testing.T) {
	db := openAuditTestDB(t)
	id := seedProduct(t, db, "BAG-001")
	svc := NewService()
	record(t, db, svc, Entry{Action: models.ActionAdded, ProductID: id, ProductNumber: "BAG-001", QuantityAfter: 10})
	record(t, db, svc, Entry{Action: models.ActionQuantityTaken, ProductID: id, ProductNumber: "BAG-001", QuantityBefore: 10, QuantityAfter: 5})

	deleted, err := Purge(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := Count(context.Background(), db, Filter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}
