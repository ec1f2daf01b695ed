package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reconciliation and search Prometheus metrics.
var (
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "ingest_events_total",
			Help:      "Total number of ingested change events",
		},
		[]string{"action", "status"},
	)

	ReconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchsync",
			Name:      "ingest_reconcile_duration_seconds",
			Help:      "Event reconciliation duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"action"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"status"},
	)

	SearchHits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "searchsync",
			Name:      "search_result_count",
			Help:      "Result count per search",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	MappingRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "mapping_refresh_total",
			Help:      "Mapping summary refresh attempts",
		},
		[]string{"status"},
	)
)

var reconcileMetricsRegistered bool

// RegisterReconcileMetrics registers reconciliation metrics. Must be called once from main.
func RegisterReconcileMetrics() {
	if reconcileMetricsRegistered {
		return
	}
	prometheus.MustRegister(EventsTotal)
	prometheus.MustRegister(ReconcileDuration)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchHits)
	prometheus.MustRegister(MappingRefreshTotal)
	reconcileMetricsRegistered = true
}
