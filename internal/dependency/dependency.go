// Package dependency declares the storage interfaces the rest of the
// service is wired against.
package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/jmoiron/sqlx"
)

type (
	// Repository is the root storage handle. Sub-stores share the same
	// underlying connection pool.
	Repository interface {
		Orders() Orders
		Metrics() Metrics
		Merchants() Merchants
		Close()
	}

	// Orders persists normalized Shopify orders.
	Orders interface {
		// UpsertOrder inserts the order or refreshes its mutable fields
		// when the Shopify order id is already known.
		UpsertOrder(ctx context.Context, order *entity.Order) error
		// GetOrdersByMerchant returns the merchant's orders created at or
		// after since, newest first, up to limit rows.
		GetOrdersByMerchant(ctx context.Context, merchantID string, since time.Time, limit int) ([]entity.Order, error)
	}

	// Metrics persists computed metric snapshots.
	Metrics interface {
		AddSnapshot(ctx context.Context, snapshot *entity.MetricsSnapshot) error
		// GetLatestSnapshot returns the most recently computed snapshot
		// for the merchant, or an error when none exists yet.
		GetLatestSnapshot(ctx context.Context, merchantID string) (*entity.MetricsSnapshot, error)
		// GetSnapshotHistory returns up to limit snapshots, newest first.
		GetSnapshotHistory(ctx context.Context, merchantID string, limit int) ([]entity.MetricsSnapshot, error)
	}

	// Merchants reads the merchant roster and integration flags.
	Merchants interface {
		ListActive(ctx context.Context) ([]entity.Merchant, error)
		GetMerchant(ctx context.Context, id string) (*entity.Merchant, error)
	}

	DB interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}
)
