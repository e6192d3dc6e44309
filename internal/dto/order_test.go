package dto

import (
	"testing"
	"time"

	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertShopifyOrderToEntity(t *testing.T) {
	o := &ShopifyOrder{
		ID:              450789469,
		TotalPrice:      "199.65",
		CreatedAt:       "2026-05-01T12:00:00Z",
		FinancialStatus: "paid",
		SourceName:      "web",
		Customer:        &ShopifyCustomer{ID: 207119551},
	}

	order, err := ConvertShopifyOrderToEntity("m1", o)
	require.NoError(t, err)
	assert.Equal(t, int64(450789469), order.ID)
	assert.Equal(t, "m1", order.MerchantID)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromFloat(199.65)))
	assert.Equal(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), order.CreatedAt)
	assert.Equal(t, entity.FinancialStatusPaid, order.FinancialStatus)
	assert.Equal(t, "207119551", order.CustomerID.String)
	assert.Equal(t, "web", order.SourceName.String)
}

func TestConvertShopifyOrderToEntity_GuestCheckout(t *testing.T) {
	o := &ShopifyOrder{
		ID:              1,
		TotalPrice:      "10.00",
		CreatedAt:       "2026-05-01T12:00:00Z",
		FinancialStatus: "paid",
	}

	order, err := ConvertShopifyOrderToEntity("m1", o)
	require.NoError(t, err)
	assert.False(t, order.CustomerID.Valid)
	assert.False(t, order.SourceName.Valid)
	assert.Equal(t, "Unknown", order.Channel())
}

func TestConvertShopifyOrderToEntity_Invalid(t *testing.T) {
	_, err := ConvertShopifyOrderToEntity("m1", nil)
	assert.Error(t, err)

	_, err = ConvertShopifyOrderToEntity("m1", &ShopifyOrder{TotalPrice: "10", CreatedAt: "2026-05-01T12:00:00Z"})
	assert.Error(t, err)

	_, err = ConvertShopifyOrderToEntity("m1", &ShopifyOrder{ID: 1, TotalPrice: "ten", CreatedAt: "2026-05-01T12:00:00Z"})
	assert.Error(t, err)

	_, err = ConvertShopifyOrderToEntity("m1", &ShopifyOrder{ID: 1, TotalPrice: "10", CreatedAt: "yesterday"})
	assert.Error(t, err)
}
