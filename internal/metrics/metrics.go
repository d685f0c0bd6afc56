// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every collector.
const Namespace = "vecfuse"

var registerOnce sync.Once

// Register registers all search, cache, monitor and embedding collectors
// with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SearchDuration,
			SearchRequestsTotal,
			RetrieverFailuresTotal,
			RetrievedDocuments,
			CacheRequestsTotal,
			CacheEvictionsTotal,
			OperationDuration,
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingCacheTotal,
		)
	})
}
