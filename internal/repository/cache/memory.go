package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain/cachekey"
	"github.com/kailas-cloud/vecfuse/internal/metrics"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process cache with lazy expiry. When a new key would
// exceed capacity, the entries closest to expiry are evicted first.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry

	store      string
	capacity   int
	evictRatio float64
	defaultTTL time.Duration
	now        func() time.Time

	hits, misses, sets, evictions, expirations uint64
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithCapacity bounds the number of live entries.
func WithCapacity(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithEvictRatio sets the share of capacity evicted at once when full.
func WithEvictRatio(r float64) MemoryOption {
	return func(m *Memory) {
		if r > 0 && r <= 1 {
			m.evictRatio = r
		}
	}
}

// WithDefaultTTL sets the TTL applied when Set is called with ttl <= 0.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(m *Memory) {
		if d > 0 {
			m.defaultTTL = d
		}
	}
}

// WithStore names the instance in stats and metrics (StoreResults by default).
func WithStore(name string) MemoryOption {
	return func(m *Memory) {
		if name != "" {
			m.store = name
		}
	}
}

// WithClock overrides the expiry clock.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:    make(map[string]entry),
		store:      StoreResults,
		capacity:   DefaultCapacity,
		evictRatio: DefaultEvictRatio,
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Get returns the value for key. Expired entries are removed on access.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if ok && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		m.expirations++
		metrics.CacheEvictionsTotal.WithLabelValues(BackendMemory, m.store, "expired").Inc()
		ok = false
	}
	if !ok {
		m.misses++
		metrics.CacheRequestsTotal.WithLabelValues(BackendMemory, m.store, "miss").Inc()
		return nil, false
	}
	m.hits++
	metrics.CacheRequestsTotal.WithLabelValues(BackendMemory, m.store, "hit").Inc()
	return e.value, true
}

// Set stores value under key for ttl (default TTL when ttl <= 0).
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.capacity {
		m.evictLocked()
	}
	m.entries[key] = entry{value: append([]byte(nil), value...), expiresAt: m.now().Add(ttl)}
	m.sets++
}

// evictLocked drops the evictRatio share of capacity with the nearest expiry.
func (m *Memory) evictLocked() {
	n := max(int(float64(m.capacity)*m.evictRatio), 1)

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := m.entries[keys[i]].expiresAt, m.entries[keys[j]].expiresAt
		if a.Equal(b) {
			return keys[i] < keys[j]
		}
		return a.Before(b)
	})

	n = min(n, len(keys))
	for _, k := range keys[:n] {
		delete(m.entries, k)
	}
	m.evictions += uint64(n)
	metrics.CacheEvictionsTotal.WithLabelValues(BackendMemory, m.store, "capacity").Add(float64(n))
}

// Delete removes key and reports whether it was present.
func (m *Memory) Delete(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok
}

// InvalidateUser removes every search entry carrying userID's key marker.
func (m *Memory) InvalidateUser(_ context.Context, userID string) int {
	marker := cachekey.UserMarker(userID)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k := range m.entries {
		if strings.Contains(k, marker) {
			delete(m.entries, k)
			n++
		}
	}
	if n > 0 {
		metrics.CacheEvictionsTotal.WithLabelValues(BackendMemory, m.store, "invalidated").Add(float64(n))
	}
	return n
}

// Len returns the number of stored entries, including expired ones not yet accessed.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stats reports counters and current size.
func (m *Memory) Stats(_ context.Context) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Backend:     BackendMemory,
		Store:       m.store,
		Size:        len(m.entries),
		Capacity:    m.capacity,
		Hits:        m.hits,
		Misses:      m.misses,
		Sets:        m.sets,
		Evictions:   m.evictions,
		Expirations: m.expirations,
		HitRate:     hitRate(m.hits, m.misses),
	}
}

// Ping always succeeds.
func (m *Memory) Ping(_ context.Context) error { return nil }
