package orders

import (
	"context"
	"path/filepath"
	"regexp"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

func openOrdersTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "orders-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	require.NoError(t, sqlite.ApplyMigrations(context.Background(), db, migrationsDir))
	return db
}

func seedProducts(t *testing.T, db *sqlite.DB, quantities map[string]int64) {
	t.Helper()
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		for number, qty := range quantities {
			p := models.Product{ProductNumber: number, Name: number, Quantity: qty, CreatedAt: now, UpdatedAt: now}
			if _, err := tx.NewInsert().Model(&p).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func quantityOf(t *testing.T, db *sqlite.DB, number string) int64 {
	t.Helper()
	var qty int64
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT quantity FROM products WHERE product_number = ?`, number).Scan(ctx, &qty)
	})
	require.NoError(t, err)
	return qty
}

func countOrders(t *testing.T, db *sqlite.DB) int {
	t.Helper()
	page, err := ListOrders(context.Background(), db, "", 1)
	require.NoError(t, err)
	return page.Total
}

func TestWithdrawEndToEnd(t *testing.T) {
	db := openOrdersTestDB(t)
	seedProducts(t, db, map[string]int64{"BAG-001": 10, "BAG-002": 12})

	res, err := Withdraw(context.Background(), db, audit.NewService(), "alice", WithdrawRequest{
		Items:         []WithdrawItem{{Number: "BAG-001", Quantity: 3}, {Number: " BAG-002 ", Quantity: 0}, {Number: "  "}},
		RecipientName: "Dock 4",
	})
	require.NoError(t, err)

	require.Len(t, res.UpdatedProducts, 2)
	assert.Equal(t, models.OrderLine{ProductNumber: "BAG-001", OldQuantity: 10, NewQuantity: 7, QuantityTaken: 3}, res.UpdatedProducts[0])
	assert.Equal(t, models.OrderLine{ProductNumber: "BAG-002", OldQuantity: 12, NewQuantity: 12, QuantityTaken: 0}, res.UpdatedProducts[1])
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-\d{6}-[0-9A-F]{8}$`), res.OrderNumber)

	assert.Equal(t, int64(7), quantityOf(t, db, "BAG-001"))
	assert.Equal(t, int64(12), quantityOf(t, db, "BAG-002"))

	logs, err := audit.List(context.Background(), db, audit.Filter{Action: models.ActionQuantityTaken, Order: audit.OrderNewest})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	changes := map[string]int64{}
	for _, l := range logs {
		changes[l.ProductNumber] = l.QuantityChange
		assert.Equal(t, "alice", l.User)
	}
	assert.Equal(t, map[string]int64{"BAG-001": -3, "BAG-002": 0}, changes)

	detail, err := GetOrder(context.Background(), db, res.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.TotalProducts)
	assert.Equal(t, int64(3), detail.TotalQuantities)
	assert.Equal(t, "Dock 4", detail.RecipientName)
	assert.Equal(t, res.UpdatedProducts, detail.Lines)
}

func TestWithdrawIsAtomic(t *testing.T) {
	db := openOrdersTestDB(t)
	seedProducts(t, db, map[string]int64{"BAG-001": 10, "BAG-002": 2})

	_, err := Withdraw(context.Background(), db, audit.NewService(), "", WithdrawRequest{
		Items: []WithdrawItem{{Number: "BAG-001", Quantity: 4}, {Number: "BAG-002", Quantity: 5}},
	})
	var insufficient *apperr.InsufficientQuantityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "BAG-002", insufficient.ProductNumber)
	assert.Equal(t, int64(2), insufficient.Available)
	assert.Equal(t, int64(5), insufficient.Requested)

	_, err = Withdraw(context.Background(), db, audit.NewService(), "", WithdrawRequest{
		Items: []WithdrawItem{{Number: "BAG-001", Quantity: 1}, {Number: "NOPE", Quantity: 1}},
	})
	assert.True(t, apperr.IsNotFound(err))

	assert.Equal(t, int64(10), quantityOf(t, db, "BAG-001"))
	assert.Equal(t, int64(2), quantityOf(t, db, "BAG-002"))
	assert.Equal(t, 0, countOrders(t, db))
	count, err := audit.Count(context.Background(), db, audit.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestWithdrawValidation(t *testing.T) {
	db := openOrdersTestDB(t)
	seedProducts(t, db, map[string]int64{"BAG-001": 10})

	_, err := Withdraw(context.Background(), db, audit.NewService(), "", WithdrawRequest{})
	assert.True(t, apperr.IsValidation(err))

	_, err = Withdraw(context.Background(), db, audit.NewService(), "", WithdrawRequest{Items: []WithdrawItem{{Number: " "}, {Number: "", Quantity: 2}}})
	assert.True(t, apperr.IsValidation(err))
	assert.Zero(t, countOrders(t, db))
	logs, err := audit.Count(context.Background(), db, audit.Filter{Action: models.ActionQuantityTaken})
	require.NoError(t, err)
	assert.Zero(t, logs)

	_, err = Withdraw(context.Background(), db, audit.NewService(), "", WithdrawRequest{Items: []WithdrawItem{{Number: "BAG-001", Quantity: -1}}})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, int64(10), quantityOf(t, db, "BAG-001"))
}

func TestWithdrawRepeatedProductUsesRunningQuantity(t *testing.T) {
	db := openOrdersTestDB(t)
	seedProducts(t, db, map[string]int64{"BAG-001": 5})

	res, err := Withdraw(context.Background(), db, audit.NewService(), "", WithdrawRequest{
		Items: []WithdrawItem{{Number: "BAG-001", Quantity: 3}, {Number: "BAG-001", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.UpdatedProducts[1].OldQuantity)
	assert.Equal(t, int64(0), res.UpdatedProducts[1].NewQuantity)
	assert.Equal(t, int64(0), quantityOf(t, db, "BAG-001"))

	_, err = Withdraw(context.Background(), db, audit.NewService(), "", WithdrawRequest{
		Items: []WithdrawItem{{Number: "BAG-001", Quantity: 0}, {Number: "BAG-001", Quantity: 1}},
	})
	assert.True(t, apperr.IsInsufficientQuantity(err))
}

func TestConcurrentWithdrawalsNeverGoNegative(t *testing.T) {
	db := openOrdersTestDB(t)
	seedProducts(t, db, map[string]int64{"BAG-001": 5})
	svc := audit.NewService()

	const workers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		short     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Withdraw(context.Background(), db, svc, "", WithdrawRequest{Items: []WithdrawItem{{Number: "BAG-001", Quantity: 1}}})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperr.IsInsufficientQuantity(err):
				short++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, workers-5, short)
	assert.Equal(t, int64(0), quantityOf(t, db, "BAG-001"))
	assert.Equal(t, 5, countOrders(t, db))
}

func TestNewOrderNumberFormat(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	a := NewOrderNumber(at)
	b := NewOrderNumber(at)
	assert.Regexp(t, `^ORD-20260304-050607-[0-9A-F]{8}$`, a)
	assert.NotEqual(t, a, b)
}
