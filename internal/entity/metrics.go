package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricsSnapshot contains all computed metrics for one merchant at one
// point in time. It is a pure value object, fully recomputable from the
// order ledger and external signals.
type MetricsSnapshot struct {
	ID          string
	MerchantID  string
	ComputedAt  time.Time
	Revenue     RevenueMetrics
	Churn       ChurnMetrics
	Performance PerformanceMetrics
	Acquisition AcquisitionMetrics
	Retention   RetentionMetrics
	HealthScore int
	Insight     string
	Connections ConnectionStatus
}

// RevenueMetrics is the revenue block of a snapshot.
type RevenueMetrics struct {
	Total   decimal.Decimal
	Trend   string // signed percentage, e.g. "+50%", "-33%", "0%"
	History []DailyRevenue
}

// DailyRevenue is one calendar-day bucket of the revenue time series.
type DailyRevenue struct {
	Date  time.Time
	Value decimal.Decimal
}

// ChurnMetrics reports the one-time-buyer churn proxy. Rate is the share
// of customers with exactly one order, not a time-windowed churn
// measurement.
type ChurnMetrics struct {
	Rate   float64
	AtRisk int
}

// PerformanceMetrics is the LTV/CAC block of a snapshot.
type PerformanceMetrics struct {
	Ratio         string // LTV:CAC to one decimal place, e.g. "3.2"
	LTV           decimal.Decimal
	ReturningLTV  decimal.Decimal
	OneTimeLTV    decimal.Decimal
	CAC           decimal.Decimal
	AvgOrderValue decimal.Decimal
	RepeatRate    float64
}

// AcquisitionMetrics is the acquisition block of a snapshot.
type AcquisitionMetrics struct {
	TopChannel string
	Cost       decimal.Decimal
}

// RetentionMetrics reports the headline retention rate (the repeat
// purchase rate) plus per-cohort month-over-month retention.
type RetentionMetrics struct {
	Rate    float64
	Cohorts []CohortRetention
}

// CohortRetention is one acquisition-month cohort with its retention rate.
type CohortRetention struct {
	CohortMonth string // YYYY-MM
	Size        int
	Retained    int
	Rate        float64 // retained/size*100, rounded to 1 decimal
}

// ConnectionStatus carries the integration flags surfaced alongside the
// snapshot.
type ConnectionStatus struct {
	Shopify bool
	GA4     bool
	HubSpot bool
}

// ChannelBreakdown is a per-channel session/revenue row supplied by an
// external analytics provider.
type ChannelBreakdown struct {
	Channel        string
	Sessions       int
	Revenue        decimal.Decimal
	ConversionRate float64
}

// ExternalSignals holds the optional externally supplied figures the
// blender prefers over internal proxies. Nil fields mean "absent, use the
// internal value".
type ExternalSignals struct {
	Sessions       *int
	Users          *int
	BounceRate     *float64
	TopChannel     *string
	AdSpend        *decimal.Decimal
	Channels       []ChannelBreakdown
	AtRiskContacts *int
	OpenRate       *float64
	ClickRate      *float64
}
