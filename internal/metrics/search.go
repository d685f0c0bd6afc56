package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search coordinator metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "Hybrid search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"strategy", "cache"}, // cache: "hit" / "miss" / "off"
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"strategy", "outcome"}, // ok / degraded / rejected / canceled
	)

	RetrieverFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "retriever_failures_total",
			Help:      "Retriever branch failures replaced by an empty list",
		},
		[]string{"source"},
	)

	RetrievedDocuments = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "retrieved_documents",
			Help:      "Documents returned per retriever call",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"source"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of operations recorded by the performance monitor",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.3, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)
)
