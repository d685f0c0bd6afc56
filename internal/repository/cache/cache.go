// Package cache implements the result cache backends: a capacity-bounded
// in-memory map and a Redis-backed store. Both are fail-soft: errors are
// logged and reported as misses.
package cache

import "time"

// Defaults.
const (
	DefaultTTL        = 5 * time.Minute
	DefaultCapacity   = 1000
	DefaultEvictRatio = 0.2
)

// Backend names used in stats and metrics labels.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store names. The search response cache and the query embedding cache are
// separate instances so embeddings never take result slots.
const (
	StoreResults    = "results"
	StoreEmbeddings = "embeddings"
)

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Backend     string  `json:"backend"`
	Store       string  `json:"store"`
	Size        int     `json:"size"`
	Capacity    int     `json:"capacity,omitempty"`
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Sets        uint64  `json:"sets"`
	Evictions   uint64  `json:"evictions"`
	Expirations uint64  `json:"expirations"`
	HitRate     float64 `json:"hitRate"`
}

func hitRate(hits, misses uint64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
