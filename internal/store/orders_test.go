package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertTestMerchant(t *testing.T, db *MYSQLStore, id string) {
	_, err := db.db.ExecContext(context.Background(),
		"INSERT INTO merchants (id, shop_domain, shopify_connected) VALUES (?, ?, 1)",
		id, id+".myshopify.com")
	require.NoError(t, err)
}

func TestOrders_UpsertAndList(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	os := db.Orders()

	ctx := context.Background()
	insertTestMerchant(t, db, "m1")

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	order := &entity.Order{
		ID:              1001,
		MerchantID:      "m1",
		TotalPrice:      decimal.NewFromInt(50),
		CreatedAt:       base,
		FinancialStatus: entity.FinancialStatusPending,
		CustomerID:      sql.NullString{String: "c1", Valid: true},
		SourceName:      sql.NullString{String: "web", Valid: true},
	}
	err := os.UpsertOrder(ctx, order)
	assert.NoError(t, err)

	// redelivery with the payment captured updates the row in place
	order.FinancialStatus = entity.FinancialStatusPaid
	order.TotalPrice = decimal.NewFromInt(55)
	err = os.UpsertOrder(ctx, order)
	assert.NoError(t, err)

	err = os.UpsertOrder(ctx, &entity.Order{
		ID:              1002,
		MerchantID:      "m1",
		TotalPrice:      decimal.NewFromInt(20),
		CreatedAt:       base.AddDate(0, 0, 1),
		FinancialStatus: entity.FinancialStatusPaid,
	})
	assert.NoError(t, err)

	orders, err := os.GetOrdersByMerchant(ctx, "m1", base.AddDate(0, -1, 0), 250)
	assert.NoError(t, err)
	require.Len(t, orders, 2)
	// newest first
	assert.Equal(t, int64(1002), orders[0].ID)
	assert.Equal(t, int64(1001), orders[1].ID)
	assert.Equal(t, entity.FinancialStatusPaid, orders[1].FinancialStatus)
	assert.True(t, orders[1].TotalPrice.Equal(decimal.NewFromInt(55)))

	// since cuts off older rows
	orders, err = os.GetOrdersByMerchant(ctx, "m1", base.AddDate(0, 0, 1), 250)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)

	// limit caps the result
	orders, err = os.GetOrdersByMerchant(ctx, "m1", base.AddDate(0, -1, 0), 1)
	assert.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(1002), orders[0].ID)
}

func TestOrders_UpsertValidation(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	os := db.Orders()

	ctx := context.Background()

	err := os.UpsertOrder(ctx, nil)
	assert.Error(t, err)

	err = os.UpsertOrder(ctx, &entity.Order{ID: 1})
	assert.Error(t, err)
}
