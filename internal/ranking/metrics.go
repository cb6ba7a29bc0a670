package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	rebuildRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yushan_ranking_rebuild_runs_total",
		Help: "Total rebuild phase executions by outcome",
	}, []string{"phase", "status"})

	rebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yushan_ranking_rebuild_duration_seconds",
		Help:    "Duration of full leaderboard rebuild runs",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	leaderboardSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "yushan_leaderboard_size",
		Help: "Member count per leaderboard key after the last rebuild",
	}, []string{"key"})

	resolveDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yushan_ranking_resolve_dropped_total",
		Help: "Ranked ids dropped because the upstream no longer knows them",
	})
)
