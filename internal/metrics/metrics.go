// Package metrics exposes run counters on a Prometheus registry.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Runs        prometheus.Counter
	RunErrors   prometheus.Counter
	Posted      *prometheus.CounterVec
	EmptyRuns   prometheus.Counter
	FetchErrors *prometheus.CounterVec
	Health      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curator_runs_total",
			Help: "selection runs started",
		}),
		RunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curator_run_errors_total",
			Help: "selection runs that failed",
		}),
		Posted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curator_posted_total",
			Help: "posts delivered, by subreddit",
		}, []string{"subreddit"}),
		EmptyRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curator_empty_runs_total",
			Help: "runs that ended with no eligible candidate",
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curator_fetch_errors_total",
			Help: "per-subreddit fetch failures",
		}, []string{"subreddit"}),
		Health: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "curator_health_status",
			Help: "0 healthy, 1 degraded, 2 unhealthy",
		}),
	}

	m.registry.MustRegister(m.Runs, m.RunErrors, m.Posted, m.EmptyRuns, m.FetchErrors, m.Health)
	return m
}

// ListenAndServe exposes /metrics until the context is cancelled.
func (m *Metrics) ListenAndServe(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
