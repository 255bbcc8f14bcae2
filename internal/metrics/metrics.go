// Package metrics provides Prometheus instrumentation for parameter sweeps.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeCompleted = "completed"
	OutcomeBankrupt  = "bankrupt"
	OutcomeFailed    = "failed"
)

var (
	// RunsTotal counts finished simulation runs by outcome.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "momentum_runs_total",
		Help: "Total number of simulation runs finished",
	}, []string{"outcome"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "momentum_run_duration_seconds",
		Help:    "Wall time of one simulation run in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	// SettlementMisses counts settlements that found no position at the target date.
	SettlementMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "momentum_settlement_misses_total",
		Help: "Settlements skipped because no position was formed at the target date",
	})

	PositionsFormed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "momentum_positions_formed_total",
		Help: "Long/short position pairs formed",
	})

	// SkippedTickers counts tickers left out of a monthly ranking, by reason.
	SkippedTickers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "momentum_skipped_tickers_total",
		Help: "Tickers excluded from a monthly ranking",
	}, []string{"reason"})

	SweepInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "momentum_sweep_runs_in_flight",
		Help: "Simulation runs currently executing",
	})
)

// ObserveRun records the outcome and duration of one run.
func ObserveRun(outcome string, started time.Time) {
	RunsTotal.WithLabelValues(outcome).Inc()
	RunDuration.Observe(time.Since(started).Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer returns a server exposing /metrics on addr. The caller starts and
// shuts it down.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
