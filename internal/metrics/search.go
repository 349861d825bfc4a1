package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintel",
			Name:      "search_requests_total",
			Help:      "Total number of search queries by mode and outcome",
		},
		[]string{"mode", "outcome"}, // outcome: completed / failed_fast / <error kind>
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docintel",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)

	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docintel",
			Name:      "search_results",
			Help:      "Number of fused results returned per query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"mode"},
	)

	LaneMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintel",
			Name:      "lane_matches_total",
			Help:      "Scored matches produced per lane",
		},
		[]string{"lane"},
	)

	VectorAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docintel",
			Name:      "vector_available",
			Help:      "1 when the last vector index probe succeeded",
		},
	)

	ProbeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintel",
			Name:      "probe_total",
			Help:      "Vector index availability probes by result",
		},
		[]string{"result"}, // "available" / "unavailable"
	)

	ReindexRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintel",
			Name:      "reindex_records_total",
			Help:      "Records processed by reindex runs",
		},
		[]string{"result"}, // "indexed" / "failed" / "skipped"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers retrieval and probe metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(LaneMatchesTotal)
	prometheus.MustRegister(VectorAvailable)
	prometheus.MustRegister(ProbeTotal)
	prometheus.MustRegister(ReindexRecordsTotal)
	searchMetricsRegistered = true
}
