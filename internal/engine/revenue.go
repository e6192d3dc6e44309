package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/shopspring/decimal"
)

// historyDays caps the daily revenue series to the most recent distinct
// calendar days.
const historyDays = 30

type revenueAggregate struct {
	Total         decimal.Decimal
	OrderCount    int
	AvgOrderValue decimal.Decimal
	History       []entity.DailyRevenue
	Trend         string
}

// aggregateRevenue computes total revenue, AOV, the daily revenue series
// and the period trend over normalized orders.
func aggregateRevenue(orders []entity.Order) revenueAggregate {
	agg := revenueAggregate{
		Total:         decimal.Zero,
		AvgOrderValue: decimal.Zero,
		Trend:         "0%",
	}

	byDay := make(map[string]decimal.Decimal)
	for _, o := range orders {
		agg.Total = agg.Total.Add(o.TotalPrice)
		agg.OrderCount++
		key := o.CreatedAt.Format("2006-01-02")
		byDay[key] = byDay[key].Add(o.TotalPrice)
	}

	if agg.OrderCount > 0 {
		agg.AvgOrderValue = agg.Total.Div(decimal.NewFromInt(int64(agg.OrderCount))).Round(2)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	if len(days) > historyDays {
		days = days[len(days)-historyDays:]
	}

	agg.History = make([]entity.DailyRevenue, 0, len(days))
	for _, d := range days {
		// day keys are produced by Format above, reparse cannot fail
		date, _ := time.Parse("2006-01-02", d)
		agg.History = append(agg.History, entity.DailyRevenue{Date: date, Value: byDay[d]})
	}

	if len(agg.History) > 0 {
		first := agg.History[0].Value
		last := agg.History[len(agg.History)-1].Value
		agg.Trend = trendPct(first, last)
	}
	return agg
}

// trendPct formats the percentage change between the earliest and latest
// value of the history window, with an explicit sign for non-negative
// change. A zero baseline yields the literal "0%".
func trendPct(first, last decimal.Decimal) string {
	if first.IsZero() {
		return "0%"
	}
	pct := last.Sub(first).Div(first).Mul(decimal.NewFromInt(100)).Round(0)
	if pct.Sign() >= 0 {
		return fmt.Sprintf("+%s%%", pct.String())
	}
	return fmt.Sprintf("%s%%", pct.String())
}
