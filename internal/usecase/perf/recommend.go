package perf

import "fmt"

const (
	maxErrorRate = 0.05
	// Cache hit rate advice needs enough searches to be meaningful.
	minCacheSamples = 20
	minCacheHitRate = 0.1
)

// Recommendations derives advisory messages from the current default-window
// stats. It has no side effects.
func (m *Monitor) Recommendations() []string {
	var out []string
	for _, op := range m.Operations() {
		s, ok := m.Stats(op, 0)
		if !ok {
			continue
		}
		if limit, ok := m.limits[op]; ok && s.Average > millis(limit) {
			out = append(out, fmt.Sprintf("%s average duration %.0fms exceeds %.0fms: %s",
				op, s.Average, millis(limit), latencyAdvice(op)))
		}
		if s.ErrorRate > maxErrorRate {
			out = append(out, fmt.Sprintf("%s error rate %.1f%% exceeds %.0f%%: check the backing service health",
				op, s.ErrorRate*100, maxErrorRate*100))
		}
	}
	if rate, n := m.cacheHitRate(); n >= minCacheSamples && rate < minCacheHitRate {
		out = append(out, fmt.Sprintf("cache hit rate %.1f%% over %d searches: consider a longer cache TTL", rate*100, n))
	}
	return out
}

func latencyAdvice(op string) string {
	switch op {
	case OpHybridSearch:
		return "consider lowering maxResults or enabling the result cache"
	case OpKeywordSearch:
		return "review the full-text index and query filters"
	case OpVectorSearch:
		return "consider a smaller top-K or an approximate vector index"
	default:
		return "investigate the slow path"
	}
}

// cacheHitRate reads the "cache_hit" metadata of hybrid search samples in the default window.
func (m *Monitor) cacheHitRate() (rate float64, n int) {
	samples := m.snapshot(OpHybridSearch, m.now().Add(-m.window))
	hits := 0
	for _, s := range samples {
		hit, ok := s.Metadata["cache_hit"].(bool)
		if !ok {
			continue
		}
		n++
		if hit {
			hits++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(hits) / float64(n), n
}
