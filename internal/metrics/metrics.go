// Package metrics exposes Prometheus counters for the bot.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the bot's collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	aiRequests     *prometheus.CounterVec
	broadcastSends *prometheus.CounterVec
	updates        *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		aiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "darkjarvis_ai_requests_total",
			Help: "AI completion requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		broadcastSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "darkjarvis_broadcast_sends_total",
			Help: "Broadcast deliveries by source and outcome.",
		}, []string{"source", "outcome"}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "darkjarvis_updates_total",
			Help: "Telegram updates processed by type.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		m.aiRequests,
		m.broadcastSends,
		m.updates,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// AIRequest counts one completion attempt.
func (m *Metrics) AIRequest(provider, outcome string) {
	if m == nil {
		return
	}
	m.aiRequests.WithLabelValues(provider, outcome).Inc()
}

// BroadcastSend counts one delivery attempt.
func (m *Metrics) BroadcastSend(source string, ok bool) {
	if m == nil {
		return
	}
	outcome := "sent"
	if !ok {
		outcome = "failed"
	}
	m.broadcastSends.WithLabelValues(source, outcome).Inc()
}

// Update counts one processed Telegram update.
func (m *Metrics) Update(updateType string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(updateType).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs the metrics HTTP server on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down metrics server", "error", err)
		}
		log.Info("Metrics server stopped")
		return nil
	}
}
