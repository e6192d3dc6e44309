package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/growtheasy/metrics-manager/internal/dependency"
	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/shopspring/decimal"
)

// ErrSnapshotNotFound is returned when a merchant has no computed
// snapshots yet.
var ErrSnapshotNotFound = errors.New("snapshot not found")

type metricsStore struct {
	*MYSQLStore
}

// Metrics returns an object implementing the Metrics interface.
func (ms *MYSQLStore) Metrics() dependency.Metrics {
	return &metricsStore{
		MYSQLStore: ms,
	}
}

// snapshotRow is the flattened table representation of a snapshot. The
// revenue history and cohort breakdown are stored as JSON columns.
type snapshotRow struct {
	ID               string          `db:"id"`
	MerchantID       string          `db:"merchant_id"`
	ComputedAt       time.Time       `db:"computed_at"`
	RevenueTotal     decimal.Decimal `db:"revenue_total"`
	RevenueTrend     string          `db:"revenue_trend"`
	RevenueHistory   []byte          `db:"revenue_history"`
	ChurnRate        float64         `db:"churn_rate"`
	AtRisk           int             `db:"at_risk"`
	Ratio            string          `db:"ltv_cac_ratio"`
	LTV              decimal.Decimal `db:"ltv"`
	ReturningLTV     decimal.Decimal `db:"returning_ltv"`
	OneTimeLTV       decimal.Decimal `db:"one_time_ltv"`
	CAC              decimal.Decimal `db:"cac"`
	AvgOrderValue    decimal.Decimal `db:"avg_order_value"`
	RepeatRate       float64         `db:"repeat_rate"`
	TopChannel       string          `db:"top_channel"`
	AcquisitionCost  decimal.Decimal `db:"acquisition_cost"`
	RetentionRate    float64         `db:"retention_rate"`
	Cohorts          []byte          `db:"cohorts"`
	HealthScore      int             `db:"health_score"`
	Insight          string          `db:"insight"`
	ShopifyConnected bool            `db:"shopify_connected"`
	GA4Connected     bool            `db:"ga4_connected"`
	HubSpotConnected bool            `db:"hubspot_connected"`
}

type historyPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

type cohortPoint struct {
	Month    string  `json:"month"`
	Size     int     `json:"size"`
	Retained int     `json:"retained"`
	Rate     float64 `json:"rate"`
}

func snapshotToRow(s *entity.MetricsSnapshot) (*snapshotRow, error) {
	hist := make([]historyPoint, 0, len(s.Revenue.History))
	for _, h := range s.Revenue.History {
		hist = append(hist, historyPoint{
			Date:  h.Date.Format("2006-01-02"),
			Value: h.Value,
		})
	}
	histJSON, err := json.Marshal(hist)
	if err != nil {
		return nil, fmt.Errorf("marshal revenue history: %w", err)
	}

	cohorts := make([]cohortPoint, 0, len(s.Retention.Cohorts))
	for _, c := range s.Retention.Cohorts {
		cohorts = append(cohorts, cohortPoint{
			Month:    c.CohortMonth,
			Size:     c.Size,
			Retained: c.Retained,
			Rate:     c.Rate,
		})
	}
	cohortsJSON, err := json.Marshal(cohorts)
	if err != nil {
		return nil, fmt.Errorf("marshal cohorts: %w", err)
	}

	return &snapshotRow{
		ID:               s.ID,
		MerchantID:       s.MerchantID,
		ComputedAt:       s.ComputedAt,
		RevenueTotal:     s.Revenue.Total,
		RevenueTrend:     s.Revenue.Trend,
		RevenueHistory:   histJSON,
		ChurnRate:        s.Churn.Rate,
		AtRisk:           s.Churn.AtRisk,
		Ratio:            s.Performance.Ratio,
		LTV:              s.Performance.LTV,
		ReturningLTV:     s.Performance.ReturningLTV,
		OneTimeLTV:       s.Performance.OneTimeLTV,
		CAC:              s.Performance.CAC,
		AvgOrderValue:    s.Performance.AvgOrderValue,
		RepeatRate:       s.Performance.RepeatRate,
		TopChannel:       s.Acquisition.TopChannel,
		AcquisitionCost:  s.Acquisition.Cost,
		RetentionRate:    s.Retention.Rate,
		Cohorts:          cohortsJSON,
		HealthScore:      s.HealthScore,
		Insight:          s.Insight,
		ShopifyConnected: s.Connections.Shopify,
		GA4Connected:     s.Connections.GA4,
		HubSpotConnected: s.Connections.HubSpot,
	}, nil
}

func rowToSnapshot(r snapshotRow) (*entity.MetricsSnapshot, error) {
	var hist []historyPoint
	if len(r.RevenueHistory) > 0 {
		if err := json.Unmarshal(r.RevenueHistory, &hist); err != nil {
			return nil, fmt.Errorf("unmarshal revenue history: %w", err)
		}
	}
	history := make([]entity.DailyRevenue, 0, len(hist))
	for _, h := range hist {
		d, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			return nil, fmt.Errorf("parse history date %q: %w", h.Date, err)
		}
		history = append(history, entity.DailyRevenue{Date: d, Value: h.Value})
	}

	var cps []cohortPoint
	if len(r.Cohorts) > 0 {
		if err := json.Unmarshal(r.Cohorts, &cps); err != nil {
			return nil, fmt.Errorf("unmarshal cohorts: %w", err)
		}
	}
	cohorts := make([]entity.CohortRetention, 0, len(cps))
	for _, c := range cps {
		cohorts = append(cohorts, entity.CohortRetention{
			CohortMonth: c.Month,
			Size:        c.Size,
			Retained:    c.Retained,
			Rate:        c.Rate,
		})
	}

	return &entity.MetricsSnapshot{
		ID:         r.ID,
		MerchantID: r.MerchantID,
		ComputedAt: r.ComputedAt,
		Revenue: entity.RevenueMetrics{
			Total:   r.RevenueTotal,
			Trend:   r.RevenueTrend,
			History: history,
		},
		Churn: entity.ChurnMetrics{
			Rate:   r.ChurnRate,
			AtRisk: r.AtRisk,
		},
		Performance: entity.PerformanceMetrics{
			Ratio:         r.Ratio,
			LTV:           r.LTV,
			ReturningLTV:  r.ReturningLTV,
			OneTimeLTV:    r.OneTimeLTV,
			CAC:           r.CAC,
			AvgOrderValue: r.AvgOrderValue,
			RepeatRate:    r.RepeatRate,
		},
		Acquisition: entity.AcquisitionMetrics{
			TopChannel: r.TopChannel,
			Cost:       r.AcquisitionCost,
		},
		Retention: entity.RetentionMetrics{
			Rate:    r.RetentionRate,
			Cohorts: cohorts,
		},
		HealthScore: r.HealthScore,
		Insight:     r.Insight,
		Connections: entity.ConnectionStatus{
			Shopify: r.ShopifyConnected,
			GA4:     r.GA4Connected,
			HubSpot: r.HubSpotConnected,
		},
	}, nil
}

const snapshotColumns = `
	id, merchant_id, computed_at,
	revenue_total, revenue_trend, revenue_history,
	churn_rate, at_risk,
	ltv_cac_ratio, ltv, returning_ltv, one_time_ltv, cac, avg_order_value, repeat_rate,
	top_channel, acquisition_cost,
	retention_rate, cohorts,
	health_score, insight,
	shopify_connected, ga4_connected, hubspot_connected
`

// AddSnapshot persists a computed snapshot.
func (ms *MYSQLStore) AddSnapshot(ctx context.Context, snapshot *entity.MetricsSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if snapshot.ID == "" || snapshot.MerchantID == "" {
		return fmt.Errorf("snapshot id and merchant id are required")
	}

	row, err := snapshotToRow(snapshot)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO metric_snapshots (` + snapshotColumns + `)
		VALUES (
			:id, :merchantId, :computedAt,
			:revenueTotal, :revenueTrend, :revenueHistory,
			:churnRate, :atRisk,
			:ratio, :ltv, :returningLtv, :oneTimeLtv, :cac, :avgOrderValue, :repeatRate,
			:topChannel, :acquisitionCost,
			:retentionRate, :cohorts,
			:healthScore, :insight,
			:shopifyConnected, :ga4Connected, :hubspotConnected
		)
	`

	params := map[string]any{
		"id":               row.ID,
		"merchantId":       row.MerchantID,
		"computedAt":       row.ComputedAt,
		"revenueTotal":     row.RevenueTotal,
		"revenueTrend":     row.RevenueTrend,
		"revenueHistory":   row.RevenueHistory,
		"churnRate":        row.ChurnRate,
		"atRisk":           row.AtRisk,
		"ratio":            row.Ratio,
		"ltv":              row.LTV,
		"returningLtv":     row.ReturningLTV,
		"oneTimeLtv":       row.OneTimeLTV,
		"cac":              row.CAC,
		"avgOrderValue":    row.AvgOrderValue,
		"repeatRate":       row.RepeatRate,
		"topChannel":       row.TopChannel,
		"acquisitionCost":  row.AcquisitionCost,
		"retentionRate":    row.RetentionRate,
		"cohorts":          row.Cohorts,
		"healthScore":      row.HealthScore,
		"insight":          row.Insight,
		"shopifyConnected": row.ShopifyConnected,
		"ga4Connected":     row.GA4Connected,
		"hubspotConnected": row.HubSpotConnected,
	}
	if err := ExecNamed(ctx, ms.db, query, params); err != nil {
		return fmt.Errorf("failed to add snapshot for merchant %s: %w", snapshot.MerchantID, err)
	}

	return nil
}

// GetLatestSnapshot returns the most recently computed snapshot for the
// merchant.
func (ms *MYSQLStore) GetLatestSnapshot(ctx context.Context, merchantID string) (*entity.MetricsSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM metric_snapshots
		WHERE merchant_id = :merchantId
		ORDER BY computed_at DESC
		LIMIT 1
	`

	row, err := QueryNamedOne[snapshotRow](ctx, ms.db, query, map[string]any{
		"merchantId": merchantID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot for merchant %s: %w", merchantID, err)
	}

	return rowToSnapshot(row)
}

// GetSnapshotHistory returns up to limit snapshots for the merchant,
// newest first.
func (ms *MYSQLStore) GetSnapshotHistory(ctx context.Context, merchantID string, limit int) ([]entity.MetricsSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM metric_snapshots
		WHERE merchant_id = :merchantId
		ORDER BY computed_at DESC
		LIMIT :limit
	`

	rows, err := QueryListNamed[snapshotRow](ctx, ms.db, query, map[string]any{
		"merchantId": merchantID,
		"limit":      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot history for merchant %s: %w", merchantID, err)
	}

	snapshots := make([]entity.MetricsSnapshot, 0, len(rows))
	for _, r := range rows {
		s, err := rowToSnapshot(r)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}

	return snapshots, nil
}
