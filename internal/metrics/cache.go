package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache metrics. "store" separates the result cache from the query embedding cache.
var (
	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups",
		},
		[]string{"backend", "store", "result"}, // hit / miss / error
	)

	CacheEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_evictions_total",
			Help:      "Entries removed to make room or because they expired",
		},
		[]string{"backend", "store", "reason"}, // capacity / expired / invalidated
	)
)
