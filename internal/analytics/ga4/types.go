package ga4

import (
	"github.com/shopspring/decimal"
)

// ChannelMetrics represents one acquisition channel row from the GA4
// channel grouping report.
type ChannelMetrics struct {
	Channel        string
	Sessions       int
	Revenue        decimal.Decimal
	ConversionRate float64
}

// AcquisitionSnapshot is the aggregated GA4 view the metric blender
// consumes: traffic totals, the channel breakdown ordered by sessions
// descending, and the reported ad spend for the period.
type AcquisitionSnapshot struct {
	Sessions   int
	Users      int
	BounceRate float64 // percentage, 0-100
	Channels   []ChannelMetrics
	AdSpend    decimal.Decimal
}

// TopChannel returns the channel with the most sessions, or "" when the
// report came back empty.
func (s *AcquisitionSnapshot) TopChannel() string {
	if s == nil || len(s.Channels) == 0 {
		return ""
	}
	return s.Channels[0].Channel
}
