package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// OrderFinancialStatus mirrors Shopify's financial_status enum for the
// subset of states the metrics pipeline cares about.
type OrderFinancialStatus string

const (
	FinancialStatusPaid          OrderFinancialStatus = "paid"
	FinancialStatusPartiallyPaid OrderFinancialStatus = "partially_paid"
	FinancialStatusPending       OrderFinancialStatus = "pending"
	FinancialStatusRefunded      OrderFinancialStatus = "refunded"
	FinancialStatusVoided        OrderFinancialStatus = "voided"
)

// Eligible reports whether an order in this state counts towards revenue
// and customer metrics.
func (s OrderFinancialStatus) Eligible() bool {
	return s == FinancialStatusPaid || s == FinancialStatusPartiallyPaid
}

// Order represents a row of the orders table, populated by upstream
// Shopify webhook ingestion.
type Order struct {
	ID              int64                `db:"id"`
	MerchantID      string               `db:"merchant_id"`
	TotalPrice      decimal.Decimal      `db:"total_price"`
	CreatedAt       time.Time            `db:"created_at"`
	FinancialStatus OrderFinancialStatus `db:"financial_status"`
	CustomerID      sql.NullString       `db:"customer_id"`
	SourceName      sql.NullString       `db:"source_name"`
}

// Channel returns the acquisition channel for the order, defaulting to
// "Unknown" when Shopify did not report a source.
func (o Order) Channel() string {
	if o.SourceName.Valid && o.SourceName.String != "" {
		return o.SourceName.String
	}
	return "Unknown"
}
