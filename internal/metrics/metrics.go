// Package metrics exposes Prometheus instrumentation for the scoring
// engine. Everything hangs off a private registry so tests can create
// isolated instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	// Submissions counts time submissions by outcome (created, updated).
	Submissions *prometheus.CounterVec

	// PointEvents counts point events by source (rank, manual).
	PointEvents *prometheus.CounterVec

	// AwardAttempts counts rank award attempts by result
	// (awarded, not_complete, already_awarded, error).
	AwardAttempts *prometheus.CounterVec

	// Frozen is 1 while the scoreboard is frozen.
	Frozen prometheus.Gauge

	// LeaderboardCompute observes live aggregation latency.
	LeaderboardCompute prometheus.Histogram
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	return &Metrics{
		registry: reg,
		Submissions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "campscore_time_submissions_total",
			Help: "Time submissions accepted, by outcome.",
		}, []string{"outcome"}),
		PointEvents: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "campscore_point_events_total",
			Help: "Point events written, by source.",
		}, []string{"source"}),
		AwardAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "campscore_rank_award_attempts_total",
			Help: "Rank award attempts, by result.",
		}, []string{"result"}),
		Frozen: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "campscore_scoreboard_frozen",
			Help: "1 while the scoreboard is frozen, 0 while live.",
		}),
		LeaderboardCompute: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "campscore_leaderboard_compute_seconds",
			Help:    "Latency of live leaderboard aggregation.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Handler returns the HTTP handler serving this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
