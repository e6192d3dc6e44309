package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/shopspring/decimal"
)

// Heuristic constants. These are product decisions carried over for
// behavioral parity with the dashboards built on top of them; do not tune
// without recomputing every stored health score.
const (
	// adSpendRevenueShare estimates ad spend as a share of revenue when no
	// external spend figure is available.
	adSpendRevenueShare = 0.15
	// nominalCAC replaces a zero CAC in the LTV:CAC ratio.
	nominalCAC = 100

	healthRevenuePoints = 30
	healthRepeatCapPts  = 20
	healthChurnPoints   = 20
	healthLTVPoints     = 15
	healthChannelPoints = 15

	churnHealthyBelow = 25.0
	ltvStrongAbove    = 150

	strongRepeatAbove  = 20.0
	elevatedChurnAbove = 20.0
)

// blend merges the internally derived aggregates with external signals,
// preferring external data when present, and produces the final snapshot.
func blend(
	rev revenueAggregate,
	cust customerStats,
	cohorts []entity.CohortRetention,
	channel string,
	sig entity.ExternalSignals,
	conns entity.ConnectionStatus,
) *entity.MetricsSnapshot {
	if sig.TopChannel != nil && *sig.TopChannel != "" {
		channel = *sig.TopChannel
	}

	cac := estimateCAC(rev.Total, cust.Unique, sig)

	atRisk := int(math.Round(float64(cust.Unique) * cust.ChurnRate / 100))
	if sig.AtRiskContacts != nil {
		atRisk = *sig.AtRiskContacts
	}

	snap := &entity.MetricsSnapshot{
		Revenue: entity.RevenueMetrics{
			Total:   rev.Total,
			Trend:   rev.Trend,
			History: rev.History,
		},
		Churn: entity.ChurnMetrics{
			Rate:   cust.ChurnRate,
			AtRisk: atRisk,
		},
		Performance: entity.PerformanceMetrics{
			Ratio:         ltvCACRatio(cust.LTV, cac),
			LTV:           cust.LTV,
			ReturningLTV:  cust.ReturningLTV,
			OneTimeLTV:    cust.OneTimeLTV,
			CAC:           cac,
			AvgOrderValue: rev.AvgOrderValue,
			RepeatRate:    cust.RepeatRate,
		},
		Acquisition: entity.AcquisitionMetrics{
			TopChannel: channel,
			Cost:       cac,
		},
		Retention: entity.RetentionMetrics{
			Rate:    cust.RepeatRate,
			Cohorts: cohorts,
		},
		Connections: conns,
	}
	snap.HealthScore = healthScore(rev.Total, cust, channel)
	snap.Insight = narrative(snap, sig, conns)
	return snap
}

// estimateCAC prefers externally reported ad spend over the revenue-share
// heuristic. Returns zero when neither path has a denominator.
func estimateCAC(revenue decimal.Decimal, unique int, sig entity.ExternalSignals) decimal.Decimal {
	if sig.AdSpend != nil && sig.Users != nil && *sig.Users > 0 {
		return sig.AdSpend.Div(decimal.NewFromInt(int64(*sig.Users))).Round(2)
	}
	if unique == 0 {
		return decimal.Zero
	}
	spend := revenue.Mul(decimal.NewFromFloat(adSpendRevenueShare))
	return spend.Div(decimal.NewFromInt(int64(unique))).Round(2)
}

// ltvCACRatio reports LTV:CAC to one decimal place, substituting a nominal
// CAC when it is zero so the ratio stays finite.
func ltvCACRatio(ltv, cac decimal.Decimal) string {
	if cac.IsZero() {
		cac = decimal.NewFromInt(nominalCAC)
	}
	ratio, _ := ltv.Div(cac).Float64()
	return fmt.Sprintf("%.1f", ratio)
}

// healthScore sums independently capped contributions into a 0-100
// composite signal.
func healthScore(revenue decimal.Decimal, cust customerStats, channel string) int {
	score := 0.0
	if revenue.GreaterThan(decimal.Zero) {
		score += healthRevenuePoints
	}
	score += math.Min(cust.RepeatRate, healthRepeatCapPts)
	if cust.Unique > 0 && cust.ChurnRate < churnHealthyBelow {
		score += healthChurnPoints
	}
	if cust.LTV.GreaterThan(decimal.NewFromInt(ltvStrongAbove)) {
		score += healthLTVPoints
	}
	if channel != "" {
		score += healthChannelPoints
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

// narrative assembles the deterministic insight string: a revenue/trend/AOV
// head followed by conditionally appended clauses in a fixed order. The
// zero-revenue case emits one of two fixed sentences depending on whether
// the store integration is connected.
func narrative(snap *entity.MetricsSnapshot, sig entity.ExternalSignals, conns entity.ConnectionStatus) string {
	if snap.Revenue.Total.IsZero() {
		if conns.Shopify {
			return "No paid orders in the selected window yet — metrics will populate after your first sale."
		}
		return "Connect your Shopify store to see real insights."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Revenue £%s (%s) with an average order value of £%s.",
		snap.Revenue.Total.StringFixed(2), snap.Revenue.Trend, snap.Performance.AvgOrderValue.StringFixed(2))

	if snap.Performance.RepeatRate > strongRepeatAbove {
		fmt.Fprintf(&b, " Strong repeat purchase rate of %.1f%%.", snap.Performance.RepeatRate)
	}
	if snap.Churn.Rate > elevatedChurnAbove {
		fmt.Fprintf(&b, " Churn elevated at %.1f%% — %d customers at risk.", snap.Churn.Rate, snap.Churn.AtRisk)
	}
	if snap.Acquisition.TopChannel != "" {
		fmt.Fprintf(&b, " Top acquisition channel: %s.", snap.Acquisition.TopChannel)
	}
	if sig.Sessions != nil && sig.BounceRate != nil {
		fmt.Fprintf(&b, " %d sessions at %.1f%% bounce rate.", *sig.Sessions, *sig.BounceRate)
	}
	if sig.AtRiskContacts != nil {
		fmt.Fprintf(&b, " %d contacts need re-engagement.", *sig.AtRiskContacts)
	}
	return b.String()
}
