package store

import (
	"context"
	"fmt"
	"time"

	"github.com/growtheasy/metrics-manager/internal/dependency"
	"github.com/growtheasy/metrics-manager/internal/entity"
)

type ordersStore struct {
	*MYSQLStore
}

// Orders returns an object implementing the Orders interface.
func (ms *MYSQLStore) Orders() dependency.Orders {
	return &ordersStore{
		MYSQLStore: ms,
	}
}

// UpsertOrder inserts a Shopify order or refreshes its mutable fields on
// webhook redelivery. Shopify order ids are stable, so (merchant_id, id)
// identifies the row.
func (ms *MYSQLStore) UpsertOrder(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}
	if order.MerchantID == "" {
		return fmt.Errorf("order merchant id is empty")
	}

	query := `
		INSERT INTO orders (
			id, merchant_id, total_price, created_at, financial_status, customer_id, source_name
		) VALUES (:id, :merchantId, :totalPrice, :createdAt, :financialStatus, :customerId, :sourceName)
		ON DUPLICATE KEY UPDATE
			total_price = VALUES(total_price),
			financial_status = VALUES(financial_status),
			customer_id = VALUES(customer_id),
			source_name = VALUES(source_name),
			updated_at = CURRENT_TIMESTAMP
	`

	params := map[string]any{
		"id":              order.ID,
		"merchantId":      order.MerchantID,
		"totalPrice":      order.TotalPrice,
		"createdAt":       order.CreatedAt,
		"financialStatus": string(order.FinancialStatus),
		"customerId":      order.CustomerID,
		"sourceName":      order.SourceName,
	}
	if err := ExecNamed(ctx, ms.db, query, params); err != nil {
		return fmt.Errorf("failed to upsert order %d: %w", order.ID, err)
	}

	return nil
}

// GetOrdersByMerchant returns the merchant's orders created at or after
// since, newest first, capped at limit rows.
func (ms *MYSQLStore) GetOrdersByMerchant(ctx context.Context, merchantID string, since time.Time, limit int) ([]entity.Order, error) {
	query := `
		SELECT id, merchant_id, total_price, created_at, financial_status, customer_id, source_name
		FROM orders
		WHERE merchant_id = :merchantId AND created_at >= :since
		ORDER BY created_at DESC
		LIMIT :limit
	`

	orders, err := QueryListNamed[entity.Order](ctx, ms.db, query, map[string]any{
		"merchantId": merchantID,
		"since":      since,
		"limit":      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for merchant %s: %w", merchantID, err)
	}

	return orders, nil
}
