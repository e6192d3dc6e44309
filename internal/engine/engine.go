// Package engine derives a merchant's business metrics from its paid
// order ledger plus optional external analytics and CRM signals.
//
// The computation is synchronous, single-pass and stateless: every call
// recomputes the full snapshot from the inputs, so the same order set and
// signals always yield an identical snapshot. Ratio and percentage
// computations are zero-guarded throughout; the engine returns degraded
// values, never an error, NaN or Inf.
package engine

import (
	"github.com/growtheasy/metrics-manager/internal/entity"
)

// DefaultLookbackOrders matches the Shopify orders API page the upstream
// ingestion requests per sync.
const DefaultLookbackOrders = 250

// ComputeMetrics runs the full aggregation pipeline over one merchant's
// raw order feed: normalization, revenue/customer/cohort aggregation, and
// blending with the external signals. The returned snapshot carries no
// identity; the caller stamps ID, merchant and timestamp before
// persisting.
func ComputeMetrics(orders []entity.Order, lb Lookback, sig entity.ExternalSignals, conns entity.ConnectionStatus) *entity.MetricsSnapshot {
	normalized := Normalize(orders, lb)

	rev := aggregateRevenue(normalized)
	cust := aggregateCustomers(normalized, rev.Total)
	cohorts := buildCohorts(normalized, cust)
	channel := topChannel(normalized)

	return blend(rev, cust, cohorts, channel, sig, conns)
}
