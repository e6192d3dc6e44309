// Package metricsync runs the periodic per-merchant metrics computation:
// load the order window, collect external signals, run the engine and
// persist the resulting snapshot.
package metricsync

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/growtheasy/metrics-manager/internal/analytics/ga4"
	"github.com/growtheasy/metrics-manager/internal/analytics/hubspot"
	"github.com/growtheasy/metrics-manager/internal/engine"
	"github.com/growtheasy/metrics-manager/internal/entity"
	"golang.org/x/sync/errgroup"
)

// Store defines the persistence surface the worker needs.
type Store interface {
	ListActive(ctx context.Context) ([]entity.Merchant, error)
	GetOrdersByMerchant(ctx context.Context, merchantID string, since time.Time, limit int) ([]entity.Order, error)
	AddSnapshot(ctx context.Context, snapshot *entity.MetricsSnapshot) error
}

// GA4Provider supplies acquisition signals for merchants with GA4
// connected.
type GA4Provider interface {
	Enabled() bool
	GetAcquisitionSnapshot(ctx context.Context, startDate, endDate time.Time) (*ga4.AcquisitionSnapshot, error)
}

// HubSpotProvider supplies CRM engagement signals.
type HubSpotProvider interface {
	Enabled() bool
	GetEngagementSnapshot(ctx context.Context) (*hubspot.EngagementSnapshot, error)
}

// Insights rewrites the deterministic narrative when available.
type Insights interface {
	Enhance(ctx context.Context, s *entity.MetricsSnapshot) string
}

// Config holds configuration for the metrics sync worker.
type Config struct {
	WorkerInterval  time.Duration `mapstructure:"worker_interval"`
	LookbackDays    int           `mapstructure:"lookback_days"`
	LookbackOrders  int           `mapstructure:"lookback_orders"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		WorkerInterval:  1 * time.Hour,
		LookbackDays:    90,
		LookbackOrders:  engine.DefaultLookbackOrders,
		ProviderTimeout: 10 * time.Second,
	}
}

// Worker periodically recomputes metric snapshots for all active
// merchants.
type Worker struct {
	store    Store
	ga4      GA4Provider
	hubspot  HubSpotProvider
	insights Insights
	c        *Config
	ctx      context.Context
	stop     context.CancelFunc
}

// New creates a new metrics sync worker.
func New(store Store, ga4Client GA4Provider, hubspotClient HubSpotProvider, insights Insights, c *Config) *Worker {
	if c == nil {
		dc := DefaultConfig()
		c = &dc
	}
	if c.WorkerInterval == 0 {
		c.WorkerInterval = 1 * time.Hour
	}
	if c.LookbackDays == 0 {
		c.LookbackDays = 90
	}
	if c.LookbackOrders == 0 {
		c.LookbackOrders = engine.DefaultLookbackOrders
	}
	if c.ProviderTimeout == 0 {
		c.ProviderTimeout = 10 * time.Second
	}
	return &Worker{
		store:    store,
		ga4:      ga4Client,
		hubspot:  hubspotClient,
		insights: insights,
		c:        c,
	}
}

// Start starts the worker.
func (w *Worker) Start(ctx context.Context) error {
	if w.ctx != nil && w.stop != nil {
		return fmt.Errorf("metrics sync worker already started")
	}
	w.ctx, w.stop = context.WithCancel(ctx)
	go w.worker(w.ctx)
	return nil
}

// Stop stops the worker gracefully.
func (w *Worker) Stop() error {
	if w.stop == nil {
		return fmt.Errorf("metrics sync worker already stopped or not started")
	}
	w.stop()
	w.stop = nil
	return nil
}

func (w *Worker) worker(ctx context.Context) {
	// Run immediately on startup
	if err := w.SyncAll(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "metrics sync failed on startup",
			slog.String("err", err.Error()))
	}

	ticker := time.NewTicker(w.c.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.SyncAll(ctx); err != nil {
				slog.Default().ErrorContext(ctx, "metrics sync failed",
					slog.String("err", err.Error()))
			}
		case <-ctx.Done():
			return
		}
	}
}

// SyncAll recomputes snapshots for every active merchant. One merchant
// failing does not stop the others.
func (w *Worker) SyncAll(ctx context.Context) error {
	merchants, err := w.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active merchants: %w", err)
	}

	slog.Default().InfoContext(ctx, "starting metrics sync",
		slog.Int("merchants", len(merchants)))

	for _, m := range merchants {
		if err := w.SyncMerchant(ctx, m); err != nil {
			slog.Default().ErrorContext(ctx, "failed to sync merchant",
				slog.String("merchantId", m.ID),
				slog.String("err", err.Error()))
		}
	}

	slog.Default().InfoContext(ctx, "metrics sync completed")
	return nil
}

// SyncMerchant computes and persists one snapshot for the merchant.
func (w *Worker) SyncMerchant(ctx context.Context, m entity.Merchant) error {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -w.c.LookbackDays)

	orders, err := w.store.GetOrdersByMerchant(ctx, m.ID, since, w.c.LookbackOrders)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	sig := w.collectSignals(ctx, m, since, now)

	snapshot := engine.ComputeMetrics(orders, engine.Lookback{
		MaxOrders: w.c.LookbackOrders,
		Since:     since,
	}, sig, m.Connections())

	snapshot.ID = uuid.New().String()
	snapshot.MerchantID = m.ID
	snapshot.ComputedAt = now

	if w.insights != nil {
		snapshot.Insight = w.insights.Enhance(ctx, snapshot)
	}

	if err := w.store.AddSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	slog.Default().InfoContext(ctx, "computed snapshot",
		slog.String("merchantId", m.ID),
		slog.Int("orders", len(orders)),
		slog.Int("healthScore", snapshot.HealthScore))
	return nil
}

// collectSignals fetches GA4 and HubSpot data concurrently. A provider
// that is disconnected, disabled, slow or failing resolves to absent
// signals rather than blocking the snapshot.
func (w *Worker) collectSignals(ctx context.Context, m entity.Merchant, start, end time.Time) entity.ExternalSignals {
	var (
		acq *ga4.AcquisitionSnapshot
		eng *hubspot.EngagementSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)

	if m.GA4Connected && w.ga4 != nil && w.ga4.Enabled() {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, w.c.ProviderTimeout)
			defer cancel()
			snap, err := w.ga4.GetAcquisitionSnapshot(fctx, start, end)
			if err != nil {
				slog.Default().WarnContext(ctx, "ga4 fetch failed, continuing without signals",
					slog.String("merchantId", m.ID),
					slog.String("err", err.Error()))
				return nil
			}
			acq = snap
			return nil
		})
	}

	if m.HubSpotConnected && w.hubspot != nil && w.hubspot.Enabled() {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, w.c.ProviderTimeout)
			defer cancel()
			snap, err := w.hubspot.GetEngagementSnapshot(fctx)
			if err != nil {
				slog.Default().WarnContext(ctx, "hubspot fetch failed, continuing without signals",
					slog.String("merchantId", m.ID),
					slog.String("err", err.Error()))
				return nil
			}
			eng = snap
			return nil
		})
	}

	// goroutines never return errors, they degrade to nil snapshots
	_ = g.Wait()

	return convertSignals(acq, eng)
}

func convertSignals(acq *ga4.AcquisitionSnapshot, eng *hubspot.EngagementSnapshot) entity.ExternalSignals {
	var sig entity.ExternalSignals

	if acq != nil {
		sessions := acq.Sessions
		users := acq.Users
		bounce := acq.BounceRate
		adSpend := acq.AdSpend
		sig.Sessions = &sessions
		sig.Users = &users
		sig.BounceRate = &bounce
		sig.AdSpend = &adSpend
		if top := acq.TopChannel(); top != "" {
			sig.TopChannel = &top
		}
		for _, ch := range acq.Channels {
			sig.Channels = append(sig.Channels, entity.ChannelBreakdown{
				Channel:        ch.Channel,
				Sessions:       ch.Sessions,
				Revenue:        ch.Revenue,
				ConversionRate: ch.ConversionRate,
			})
		}
	}

	if eng != nil {
		atRisk := eng.AtRiskContacts
		openRate := eng.OpenRate
		clickRate := eng.ClickRate
		sig.AtRiskContacts = &atRisk
		sig.OpenRate = &openRate
		sig.ClickRate = &clickRate
	}

	return sig
}
