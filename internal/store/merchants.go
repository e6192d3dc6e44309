package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/growtheasy/metrics-manager/internal/dependency"
	"github.com/growtheasy/metrics-manager/internal/entity"
)

// ErrMerchantNotFound is returned when the merchant id is unknown.
var ErrMerchantNotFound = errors.New("merchant not found")

type merchantsStore struct {
	*MYSQLStore
}

// Merchants returns an object implementing the Merchants interface.
func (ms *MYSQLStore) Merchants() dependency.Merchants {
	return &merchantsStore{
		MYSQLStore: ms,
	}
}

// ListActive returns every merchant with at least one connected
// integration, oldest first so sync order is stable across runs.
func (ms *MYSQLStore) ListActive(ctx context.Context) ([]entity.Merchant, error) {
	query := `
		SELECT id, shop_domain, shopify_connected, ga4_connected, hubspot_connected, created_at
		FROM merchants
		WHERE shopify_connected = 1 OR ga4_connected = 1 OR hubspot_connected = 1
		ORDER BY created_at ASC
	`

	merchants, err := QueryListNamed[entity.Merchant](ctx, ms.db, query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("failed to list active merchants: %w", err)
	}

	return merchants, nil
}

// GetMerchant returns the merchant by id.
func (ms *MYSQLStore) GetMerchant(ctx context.Context, id string) (*entity.Merchant, error) {
	query := `
		SELECT id, shop_domain, shopify_connected, ga4_connected, hubspot_connected, created_at
		FROM merchants
		WHERE id = :id
	`

	m, err := QueryNamedOne[entity.Merchant](ctx, ms.db, query, map[string]any{
		"id": id,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant %s: %w", id, err)
	}

	return &m, nil
}
