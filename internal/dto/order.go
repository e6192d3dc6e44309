package dto

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/shopspring/decimal"
)

// ShopifyOrder is the subset of Shopify's orders/create webhook payload
// the pipeline consumes.
type ShopifyOrder struct {
	ID              int64            `json:"id"`
	TotalPrice      string           `json:"total_price"`
	CreatedAt       string           `json:"created_at"`
	FinancialStatus string           `json:"financial_status"`
	SourceName      string           `json:"source_name"`
	Customer        *ShopifyCustomer `json:"customer"`
}

// ShopifyCustomer identifies the buyer on a webhook order. Guest
// checkouts arrive without one.
type ShopifyCustomer struct {
	ID int64 `json:"id"`
}

// ConvertShopifyOrderToEntity validates a webhook payload and maps it
// onto the orders table shape.
func ConvertShopifyOrderToEntity(merchantID string, o *ShopifyOrder) (*entity.Order, error) {
	if o == nil {
		return nil, fmt.Errorf("order payload is nil")
	}
	if o.ID == 0 {
		return nil, fmt.Errorf("order id is missing")
	}

	createdAt, err := time.Parse(time.RFC3339, o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", o.CreatedAt, err)
	}

	totalPrice, err := decimal.NewFromString(o.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("parse total_price %q: %w", o.TotalPrice, err)
	}

	var customerID sql.NullString
	if o.Customer != nil && o.Customer.ID != 0 {
		customerID = sql.NullString{String: fmt.Sprintf("%d", o.Customer.ID), Valid: true}
	}

	return &entity.Order{
		ID:              o.ID,
		MerchantID:      merchantID,
		TotalPrice:      totalPrice,
		CreatedAt:       createdAt,
		FinancialStatus: entity.OrderFinancialStatus(o.FinancialStatus),
		CustomerID:      customerID,
		SourceName:      sql.NullString{String: o.SourceName, Valid: o.SourceName != ""},
	}, nil
}
