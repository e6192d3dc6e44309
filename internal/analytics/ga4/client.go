package ga4

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// Config holds GA4 client configuration.
type Config struct {
	PropertyID      string `mapstructure:"property_id"`
	CredentialsJSON string `mapstructure:"credentials_json"` // path to service account JSON file, or raw JSON (for env vars)
	Enabled         bool   `mapstructure:"enabled"`
}

// Client wraps the GA4 Data API client.
type Client struct {
	service    *analyticsdata.Service
	propertyID string
	enabled    bool
}

// NewClient creates a new GA4 client. A disabled client is valid and
// returns empty data from every call, so callers degrade to the internal
// proxies without special-casing.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		slog.Default().InfoContext(ctx, "GA4 analytics disabled")
		return &Client{enabled: false}, nil
	}

	if cfg.PropertyID == "" {
		return nil, fmt.Errorf("ga4 property_id is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		jsonBytes := []byte(cfg.CredentialsJSON)
		if len(jsonBytes) > 0 && jsonBytes[0] == '{' {
			opts = append(opts, option.WithCredentialsJSON(jsonBytes))
		} else {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsJSON))
		}
	}

	service, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GA4 service: %w", err)
	}

	slog.Default().InfoContext(ctx, "GA4 analytics client initialized",
		slog.String("property_id", cfg.PropertyID))

	return &Client{
		service:    service,
		propertyID: cfg.PropertyID,
		enabled:    true,
	}, nil
}

// Enabled reports whether the client will issue real API calls.
func (c *Client) Enabled() bool {
	return c.enabled
}

// GetAcquisitionSnapshot fetches traffic totals, the channel grouping
// breakdown and ad spend for the given period.
func (c *Client) GetAcquisitionSnapshot(ctx context.Context, startDate, endDate time.Time) (*AcquisitionSnapshot, error) {
	if !c.enabled {
		return nil, nil
	}

	snap := &AcquisitionSnapshot{AdSpend: decimal.Zero}

	if err := c.fetchTotals(ctx, startDate, endDate, snap); err != nil {
		return nil, err
	}
	if err := c.fetchChannels(ctx, startDate, endDate, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (c *Client) fetchTotals(ctx context.Context, startDate, endDate time.Time, snap *AcquisitionSnapshot) error {
	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{
			{
				StartDate: startDate.Format("2006-01-02"),
				EndDate:   endDate.Format("2006-01-02"),
			},
		},
		Metrics: []*analyticsdata.Metric{
			{Name: "sessions"},
			{Name: "totalUsers"},
			{Name: "bounceRate"},
			{Name: "advertiserAdCost"},
		},
	}

	resp, err := c.service.Properties.RunReport(fmt.Sprintf("properties/%s", c.propertyID), req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to run GA4 totals report: %w", err)
	}

	for _, row := range resp.Rows {
		if len(row.MetricValues) < 4 {
			continue
		}
		snap.Sessions = parseInt(row.MetricValues[0].Value)
		snap.Users = parseInt(row.MetricValues[1].Value)
		// GA4 reports bounceRate as a 0-1 fraction
		snap.BounceRate = parseFloat(row.MetricValues[2].Value) * 100
		snap.AdSpend = decimal.NewFromFloat(parseFloat(row.MetricValues[3].Value))
	}
	return nil
}

func (c *Client) fetchChannels(ctx context.Context, startDate, endDate time.Time, snap *AcquisitionSnapshot) error {
	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{
			{
				StartDate: startDate.Format("2006-01-02"),
				EndDate:   endDate.Format("2006-01-02"),
			},
		},
		Dimensions: []*analyticsdata.Dimension{
			{Name: "sessionDefaultChannelGrouping"},
		},
		Metrics: []*analyticsdata.Metric{
			{Name: "sessions"},
			{Name: "totalRevenue"},
			{Name: "sessionConversionRate"},
		},
		OrderBys: []*analyticsdata.OrderBy{
			{
				Metric: &analyticsdata.MetricOrderBy{MetricName: "sessions"},
				Desc:   true,
			},
		},
		Limit: 20,
	}

	resp, err := c.service.Properties.RunReport(fmt.Sprintf("properties/%s", c.propertyID), req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to run GA4 channel report: %w", err)
	}

	for _, row := range resp.Rows {
		if len(row.DimensionValues) == 0 || len(row.MetricValues) < 3 {
			continue
		}
		snap.Channels = append(snap.Channels, ChannelMetrics{
			Channel:        row.DimensionValues[0].Value,
			Sessions:       parseInt(row.MetricValues[0].Value),
			Revenue:        decimal.NewFromFloat(parseFloat(row.MetricValues[1].Value)),
			ConversionRate: parseFloat(row.MetricValues[2].Value) * 100,
		})
	}
	return nil
}

// Helper functions

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
