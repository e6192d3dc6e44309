package app

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/growtheasy/metrics-manager/config"
	"github.com/growtheasy/metrics-manager/internal/analytics/ga4"
	"github.com/growtheasy/metrics-manager/internal/analytics/hubspot"
	httpapi "github.com/growtheasy/metrics-manager/internal/api/http"
	"github.com/growtheasy/metrics-manager/internal/dependency"
	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/growtheasy/metrics-manager/internal/insights"
	"github.com/growtheasy/metrics-manager/internal/metricsync"
	"github.com/growtheasy/metrics-manager/internal/store"
)

// App is the main application
type App struct {
	hs     *httpapi.Server
	db     dependency.Repository
	worker *metricsync.Worker
	c      *config.Config
	done   chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	slog.Default().InfoContext(ctx, "starting metrics manager")

	db, err := store.New(ctx, a.c.DB)
	if err != nil {
		return fmt.Errorf("couldn't connect to mysql: %w", err)
	}
	a.db = db

	ga4Client, err := ga4.NewClient(ctx, &a.c.GA4)
	if err != nil {
		return fmt.Errorf("failed to create ga4 client: %w", err)
	}

	hubspotClient := hubspot.New(&a.c.HubSpot)

	insightsClient, err := insights.New(&a.c.Insights)
	if err != nil {
		return fmt.Errorf("failed to create insights client: %w", err)
	}

	a.worker = metricsync.New(
		&workerStore{db: a.db},
		ga4Client,
		hubspotClient,
		insightsClient,
		&a.c.MetricSync,
	)
	if err := a.worker.Start(ctx); err != nil {
		return fmt.Errorf("cannot start metrics sync worker: %w", err)
	}

	a.hs = httpapi.New(&a.c.HTTP, a.db)
	if err := a.hs.Start(ctx); err != nil {
		return fmt.Errorf("cannot start http server: %w", err)
	}

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.worker != nil {
		if err := a.worker.Stop(); err != nil {
			slog.Default().ErrorContext(ctx, "failed to stop metrics sync worker",
				slog.String("err", err.Error()))
		}
	}
	if a.hs != nil {
		if err := a.hs.Shutdown(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "failed to shut down http server",
				slog.String("err", err.Error()))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	close(a.done)
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}

// workerStore narrows the repository to the surface the sync worker
// needs.
type workerStore struct {
	db dependency.Repository
}

func (s *workerStore) ListActive(ctx context.Context) ([]entity.Merchant, error) {
	return s.db.Merchants().ListActive(ctx)
}

func (s *workerStore) GetOrdersByMerchant(ctx context.Context, merchantID string, since time.Time, limit int) ([]entity.Order, error) {
	return s.db.Orders().GetOrdersByMerchant(ctx, merchantID, since, limit)
}

func (s *workerStore) AddSnapshot(ctx context.Context, snapshot *entity.MetricsSnapshot) error {
	return s.db.Metrics().AddSnapshot(ctx, snapshot)
}
