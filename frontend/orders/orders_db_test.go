package orders

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridstock/infrastructure/apperr"
	"gridstock/infrastructure/audit"
	"gridstock/models"
)

func TestListGetDeleteOrders(t *testing.T) {
	db := openOrdersTestDB(t)
	seedProducts(t, db, map[string]int64{"BAG-001": 10})

	first, err := Withdraw(context.Background(), db, audit.NewService(), "", WithdrawRequest{
		Items: []WithdrawItem{{Number: "BAG-001", Quantity: 1}}, RecipientName: "Alpha",
	})
	require.NoError(t, err)
	_, err = Withdraw(context.Background(), db, audit.NewService(), "", WithdrawRequest{
		Items: []WithdrawItem{{Number: "BAG-001", Quantity: 2}}, RecipientName: "Beta",
	})
	require.NoError(t, err)

	page, err := ListOrders(context.Background(), db, "alp", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.OrderNumber, page.Items[0].OrderNumber)

	_, err = GetOrder(context.Background(), db, "ORD-missing")
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, DeleteOrder(context.Background(), db, first.Order.ID))
	assert.True(t, apperr.IsNotFound(DeleteOrder(context.Background(), db, first.Order.ID)))
	assert.Equal(t, 1, countOrders(t, db))
	assert.Equal(t, int64(7), quantityOf(t, db, "BAG-001"))
}

func TestRenderOrderPDF(t *testing.T) {
	t.Parallel()

	pdf, err := RenderOrderPDF(Detail{
		Order: models.Order{
			OrderNumber:     "ORD-20260304-050607-ABCDEF12",
			TotalProducts:   1,
			TotalQuantities: 3,
			RecipientName:   "Dock 4",
			User:            "alice",
			CreatedAt:       time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		},
		Lines: []models.OrderLine{{ProductNumber: "BAG-001", OldQuantity: 10, NewQuantity: 7, QuantityTaken: 3}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, err = RenderOrderPDF(Detail{})
	assert.Error(t, err)
}

func TestDecodeLines(t *testing.T) {
	lines, err := DecodeLines(`[{"product_number":"BAG-001","old_quantity":5,"new_quantity":4,"quantity_taken":1}]`)
	require.NoError(t, err)
	assert.Equal(t, []models.OrderLine{{ProductNumber: "BAG-001", OldQuantity: 5, NewQuantity: 4, QuantityTaken: 1}}, lines)

	lines, err = DecodeLines("")
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = DecodeLines("{")
	assert.Error(t, err)
}
