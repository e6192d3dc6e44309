package dto

import (
	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/shopspring/decimal"
)

// MetricsResponse is the JSON shape of a metrics snapshot as served to
// dashboard clients.
type MetricsResponse struct {
	MerchantID  string              `json:"merchant_id"`
	ComputedAt  string              `json:"computed_at"`
	Revenue     RevenueResponse     `json:"revenue"`
	Churn       ChurnResponse       `json:"churn"`
	Performance PerformanceResponse `json:"performance"`
	Acquisition AcquisitionResponse `json:"acquisition"`
	Retention   RetentionResponse   `json:"retention"`
	HealthScore int                 `json:"health_score"`
	AIInsight   string              `json:"ai_insight"`
	Shopify     ConnectionResponse  `json:"shopify"`
	GA4         ConnectionResponse  `json:"ga4"`
	HubSpot     ConnectionResponse  `json:"hubspot"`
}

// RevenueHistoryResponse carries the daily series as parallel arrays,
// ready to feed a chart component.
type RevenueHistoryResponse struct {
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
}

type RevenueResponse struct {
	Total   decimal.Decimal        `json:"total"`
	Trend   string                 `json:"trend"`
	History RevenueHistoryResponse `json:"history"`
}

type ChurnResponse struct {
	Rate   float64 `json:"rate"`
	AtRisk int     `json:"at_risk"`
}

type PerformanceResponse struct {
	Ratio         string          `json:"ratio"`
	LTV           decimal.Decimal `json:"ltv"`
	ReturningLTV  decimal.Decimal `json:"returning_ltv"`
	OneTimeLTV    decimal.Decimal `json:"one_time_ltv"`
	CAC           decimal.Decimal `json:"cac"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	RepeatRate    float64         `json:"repeat_rate"`
}

type AcquisitionResponse struct {
	TopChannel      string          `json:"top_channel"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
}

type RetentionResponse struct {
	Rate    float64          `json:"rate"`
	Cohorts []CohortResponse `json:"cohorts"`
}

type CohortResponse struct {
	Month    string  `json:"month"`
	Size     int     `json:"size"`
	Retained int     `json:"retained"`
	Rate     float64 `json:"rate"`
}

type ConnectionResponse struct {
	Connected bool `json:"connected"`
}

// ConvertSnapshotToResponse maps a snapshot onto the wire shape. An empty
// top channel is rendered as an em dash placeholder the dashboard shows
// verbatim.
func ConvertSnapshotToResponse(s *entity.MetricsSnapshot) *MetricsResponse {
	if s == nil {
		return nil
	}

	labels := make([]string, 0, len(s.Revenue.History))
	values := make([]decimal.Decimal, 0, len(s.Revenue.History))
	for _, h := range s.Revenue.History {
		labels = append(labels, h.Date.Format("2006-01-02"))
		values = append(values, h.Value)
	}

	cohorts := make([]CohortResponse, 0, len(s.Retention.Cohorts))
	for _, c := range s.Retention.Cohorts {
		cohorts = append(cohorts, CohortResponse{
			Month:    c.CohortMonth,
			Size:     c.Size,
			Retained: c.Retained,
			Rate:     c.Rate,
		})
	}

	topChannel := s.Acquisition.TopChannel
	if topChannel == "" {
		topChannel = "—"
	}

	return &MetricsResponse{
		MerchantID: s.MerchantID,
		ComputedAt: s.ComputedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Revenue: RevenueResponse{
			Total: s.Revenue.Total,
			Trend: s.Revenue.Trend,
			History: RevenueHistoryResponse{
				Labels: labels,
				Values: values,
			},
		},
		Churn: ChurnResponse{
			Rate:   s.Churn.Rate,
			AtRisk: s.Churn.AtRisk,
		},
		Performance: PerformanceResponse{
			Ratio:         s.Performance.Ratio,
			LTV:           s.Performance.LTV,
			ReturningLTV:  s.Performance.ReturningLTV,
			OneTimeLTV:    s.Performance.OneTimeLTV,
			CAC:           s.Performance.CAC,
			AvgOrderValue: s.Performance.AvgOrderValue,
			RepeatRate:    s.Performance.RepeatRate,
		},
		Acquisition: AcquisitionResponse{
			TopChannel:      topChannel,
			AcquisitionCost: s.Acquisition.Cost,
		},
		Retention: RetentionResponse{
			Rate:    s.Retention.Rate,
			Cohorts: cohorts,
		},
		HealthScore: s.HealthScore,
		AIInsight:   s.Insight,
		Shopify:     ConnectionResponse{Connected: s.Connections.Shopify},
		GA4:         ConnectionResponse{Connected: s.Connections.GA4},
		HubSpot:     ConnectionResponse{Connected: s.Connections.HubSpot},
	}
}
