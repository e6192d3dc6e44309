package engine

import (
	"time"

	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/shopspring/decimal"
)

// customerAggregate accumulates the per-customer view of the order feed.
// Orders without a customer id never reach one of these.
type customerAggregate struct {
	orderCount   int
	totalRevenue decimal.Decimal
	firstOrder   time.Time
	lastOrder    time.Time
}

type customerStats struct {
	Unique       int
	Returning    int
	OneTime      int
	RepeatRate   float64 // = headline retention rate
	ChurnRate    float64 // one-time buyer share, a heuristic proxy
	LTV          decimal.Decimal
	ReturningLTV decimal.Decimal
	OneTimeLTV   decimal.Decimal

	aggregates map[string]*customerAggregate
}

// aggregateCustomers groups eligible orders by customer identity and
// derives unique/returning counts, repeat purchase rate, segment LTVs and
// the churn proxy. totalRevenue is the revenue over all eligible orders
// (including customerless ones); segment LTVs only ever see identified
// revenue.
//
// Churn here is the fraction of customers who never came back, not a
// time-windowed churn measurement.
func aggregateCustomers(orders []entity.Order, totalRevenue decimal.Decimal) customerStats {
	aggs := make(map[string]*customerAggregate)
	for _, o := range orders {
		if !o.CustomerID.Valid || o.CustomerID.String == "" {
			continue
		}
		a, ok := aggs[o.CustomerID.String]
		if !ok {
			a = &customerAggregate{totalRevenue: decimal.Zero, firstOrder: o.CreatedAt, lastOrder: o.CreatedAt}
			aggs[o.CustomerID.String] = a
		}
		a.orderCount++
		a.totalRevenue = a.totalRevenue.Add(o.TotalPrice)
		if o.CreatedAt.Before(a.firstOrder) {
			a.firstOrder = o.CreatedAt
		}
		if o.CreatedAt.After(a.lastOrder) {
			a.lastOrder = o.CreatedAt
		}
	}

	st := customerStats{
		LTV:          decimal.Zero,
		ReturningLTV: decimal.Zero,
		OneTimeLTV:   decimal.Zero,
		aggregates:   aggs,
	}
	st.Unique = len(aggs)
	if st.Unique == 0 {
		return st
	}

	identified := decimal.Zero
	returningRevenue := decimal.Zero
	for _, a := range aggs {
		identified = identified.Add(a.totalRevenue)
		if a.orderCount > 1 {
			st.Returning++
			returningRevenue = returningRevenue.Add(a.totalRevenue)
		}
	}
	st.OneTime = st.Unique - st.Returning

	unique := decimal.NewFromInt(int64(st.Unique))
	st.RepeatRate = float64(st.Returning) / float64(st.Unique) * 100
	st.ChurnRate = float64(st.OneTime) / float64(st.Unique) * 100
	st.LTV = totalRevenue.Div(unique).Round(2)

	if st.Returning > 0 {
		st.ReturningLTV = returningRevenue.Div(decimal.NewFromInt(int64(st.Returning))).Round(2)
	}
	if st.OneTime > 0 {
		st.OneTimeLTV = identified.Sub(returningRevenue).Div(decimal.NewFromInt(int64(st.OneTime))).Round(2)
	}
	return st
}
