package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/growtheasy/metrics-manager/internal/entity"
)

// Lookback bounds the order window a computation runs over.
type Lookback struct {
	MaxOrders int       // keep at most this many newest orders, 0 = no cap
	Since     time.Time // drop orders placed before this, zero = no bound
}

// Normalize filters the raw order feed down to the orders the aggregation
// stages operate on: eligible financial status, inside the lookback
// window, sorted by created_at descending and truncated to the bound.
// Malformed rows (zero timestamp, negative price) are dropped and logged,
// never fatal.
func Normalize(orders []entity.Order, lb Lookback) []entity.Order {
	out := make([]entity.Order, 0, len(orders))
	for _, o := range orders {
		if !o.FinancialStatus.Eligible() {
			continue
		}
		if o.CreatedAt.IsZero() || o.TotalPrice.IsNegative() {
			slog.Default().Warn("dropping malformed order",
				slog.Int64("order_id", o.ID),
				slog.String("created_at", o.CreatedAt.String()),
				slog.String("total_price", o.TotalPrice.String()))
			continue
		}
		if !lb.Since.IsZero() && o.CreatedAt.Before(lb.Since) {
			continue
		}
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if lb.MaxOrders > 0 && len(out) > lb.MaxOrders {
		out = out[:lb.MaxOrders]
	}
	return out
}
