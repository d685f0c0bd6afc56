package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecfuse/internal/db"
	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/cachekey"
	"github.com/kailas-cloud/vecfuse/internal/metrics"
)

// kvStore is the consumer interface for the Redis cache (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Redis stores entries with native key expiry. Capacity is left to the
// server's maxmemory policy.
type Redis struct {
	kv          kvStore
	prefix      string
	store       string
	sizePattern string
	defaultTTL  time.Duration
	logger      *zap.Logger

	hits, misses, sets atomic.Uint64
}

// NewRedis creates the Redis-backed result cache. prefix must match the
// prefix used to build keys; Stats counts only search entries under it.
func NewRedis(kv kvStore, prefix string, defaultTTL time.Duration, logger *zap.Logger) *Redis {
	return newRedis(kv, prefix, StoreResults, cachekey.SearchPattern(prefix), defaultTTL, logger)
}

// NewRedisEmbeddings creates the Redis-backed query embedding cache. It
// shares the connection but keeps its own counters and size scope.
func NewRedisEmbeddings(kv kvStore, prefix string, defaultTTL time.Duration, logger *zap.Logger) *Redis {
	return newRedis(kv, prefix, StoreEmbeddings, cachekey.EmbeddingPattern(prefix), defaultTTL, logger)
}

func newRedis(kv kvStore, prefix, store, sizePattern string, defaultTTL time.Duration, logger *zap.Logger) *Redis {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{
		kv:          kv,
		prefix:      prefix,
		store:       store,
		sizePattern: sizePattern,
		defaultTTL:  defaultTTL,
		logger:      logger,
	}
}

// Get returns the value for key; backend errors are logged and reported as a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.kv.Get(ctx, key)
	switch {
	case err == nil:
		r.hits.Add(1)
		metrics.CacheRequestsTotal.WithLabelValues(BackendRedis, r.store, "hit").Inc()
		return data, true
	case errors.Is(err, db.ErrKeyNotFound):
		metrics.CacheRequestsTotal.WithLabelValues(BackendRedis, r.store, "miss").Inc()
	default:
		metrics.CacheRequestsTotal.WithLabelValues(BackendRedis, r.store, "error").Inc()
		r.warn(ctx, "cache get failed", key, err)
	}
	r.misses.Add(1)
	return nil, false
}

// Set stores value under key for ttl (default TTL when ttl <= 0).
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	if err := r.kv.SetWithTTL(ctx, key, value, ttl); err != nil {
		r.warn(ctx, "cache set failed", key, err)
		return
	}
	r.sets.Add(1)
}

// Delete removes key and reports whether it existed.
func (r *Redis) Delete(ctx context.Context, key string) bool {
	n, err := r.kv.Del(ctx, key)
	if err != nil {
		r.warn(ctx, "cache delete failed", key, err)
		return false
	}
	return n > 0
}

// InvalidateUser deletes every search entry of userID and returns how many were removed.
func (r *Redis) InvalidateUser(ctx context.Context, userID string) int {
	pattern := cachekey.UserPattern(r.prefix, userID)
	keys, err := r.kv.Scan(ctx, pattern)
	if err != nil {
		r.warn(ctx, "cache invalidate scan failed", pattern, err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	n, err := r.kv.Del(ctx, keys...)
	if err != nil {
		r.warn(ctx, "cache invalidate delete failed", pattern, err)
		return 0
	}
	metrics.CacheEvictionsTotal.WithLabelValues(BackendRedis, r.store, "invalidated").Add(float64(n))
	return n
}

// Stats reports this process's counters and the number of keys in this store's scope.
func (r *Redis) Stats(ctx context.Context) Stats {
	hits, misses := r.hits.Load(), r.misses.Load()
	s := Stats{
		Backend: BackendRedis,
		Store:   r.store,
		Hits:    hits,
		Misses:  misses,
		Sets:    r.sets.Load(),
		HitRate: hitRate(hits, misses),
	}
	keys, err := r.kv.Scan(ctx, r.sizePattern)
	if err != nil {
		r.warn(ctx, "cache size scan failed", r.sizePattern, err)
		return s
	}
	s.Size = len(keys)
	return s
}

// Ping checks the backend when it supports it.
func (r *Redis) Ping(ctx context.Context) error {
	p, ok := r.kv.(db.Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheFailure, err)
	}
	return nil
}

func (r *Redis) warn(ctx context.Context, msg, key string, err error) {
	if ctx.Err() != nil {
		return
	}
	r.logger.Warn(msg,
		zap.String("key", key),
		zap.Error(fmt.Errorf("%w: %w", domain.ErrCacheFailure, err)),
	)
}
