package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OptimizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardopt_optimizations_total",
			Help: "Total number of optimization requests by outcome",
		},
		[]string{"outcome"},
	)

	SubsetsEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardopt_subsets_evaluated_total",
			Help: "Total number of card subsets scored",
		},
	)

	OptimizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardopt_optimize_duration_seconds",
			Help:    "Duration of a single optimization in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
	)

	CatalogRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardopt_catalog_refresh_total",
			Help: "Total number of catalog refreshes by outcome",
		},
		[]string{"outcome"},
	)

	CatalogVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardopt_catalog_version",
			Help: "Version counter of the catalog currently served",
		},
	)
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)
