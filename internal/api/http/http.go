// Package httpapi exposes the JSON read surface for dashboards plus the
// Shopify webhook ingestion endpoint.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/growtheasy/metrics-manager/internal/dependency"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Server is the http server
type Server struct {
	hs   *http.Server
	db   dependency.Repository
	c    *Config
	done chan struct{}
}

// New creates a new server
func New(config *Config, rep dependency.Repository) *Server {
	return &Server{
		c:    config,
		db:   rep,
		done: make(chan struct{}),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.c.AllowedOrigins,
		AllowedMethods: []string{http.MethodHead, http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Authorization", "X-Shopify-Topic", "X-Shopify-Shop-Domain"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/merchants/{merchantId}", func(r chi.Router) {
			r.Get("/metrics", s.handleGetMetrics)
			r.Get("/metrics/history", s.handleGetMetricsHistory)
			r.Post("/webhooks/orders", s.handleOrderWebhook)
		})
	})

	return r
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:    listenerAddr,
		Handler: s.router(),
	}

	go func() {
		slog.Default().InfoContext(ctx, fmt.Sprintf("metrics-manager new listener on: http://%v", listenerAddr))
		err := s.hs.ListenAndServe()
		if err == http.ErrServerClosed {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()))
		}
		cancel()
		close(s.done)
	}()

	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	return s.hs.Shutdown(ctx)
}
