// Package metrics exposes Prometheus counters for both bots.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ModelRequestsTotal counts language-model calls by backend and outcome
	// (ok, timeout, connection, other).
	ModelRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facto",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Total language-model requests",
		},
		[]string{"backend", "result"},
	)

	ModelRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facto",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Language-model request duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"backend"},
	)

	// RoundTripsTotal counts journal round trips by trigger (start, continue, finalize).
	RoundTripsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facto",
			Subsystem: "journal",
			Name:      "round_trips_total",
			Help:      "Total journal conversation round trips",
		},
		[]string{"trigger", "status"},
	)

	ActiveConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "facto",
			Subsystem: "journal",
			Name:      "active_conversations",
			Help:      "Conversations currently held in memory",
		},
	)

	// LoggedTotal counts archive writes by collection (messages, events) and status.
	LoggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logta",
			Subsystem: "archive",
			Name:      "writes_total",
			Help:      "Total archived messages and events",
		},
		[]string{"collection", "kind", "status"},
	)

	ActivatedChats = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "logta",
			Subsystem: "archive",
			Name:      "activated_chats",
			Help:      "Chats enrolled for logging",
		},
	)
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Metrics endpoint listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Metrics endpoint shutdown failed", "error", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
