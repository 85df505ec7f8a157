package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "jobdex"

// Search pipeline Prometheus metrics.
var (
	SearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_total",
			Help:      "Total searches by entry path and outcome",
		},
		[]string{"path", "outcome"}, // outcome: "ok" / "empty" / "skipped" / "error"
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of hits returned per performed search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	InterpretationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interpretation_total",
			Help:      "Query interpretations by outcome",
		},
		[]string{"outcome"}, // "ok" / "degraded"
	)

	InterpreterRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interpreter_request_duration_seconds",
			Help:      "Text interpreter request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model", "status"},
	)

	BreakerStateChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_state_changes_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"name", "to"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchTotal)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(InterpretationTotal)
	prometheus.MustRegister(InterpreterRequestDuration)
	prometheus.MustRegister(BreakerStateChanges)
	searchMetricsRegistered = true
}
