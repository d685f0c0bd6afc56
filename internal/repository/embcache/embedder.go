// Package embcache caches query embeddings in the result cache.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/cachekey"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Config tunes a CachedEmbedder.
type Config struct {
	Prefix     string        // key space prefix shared with the result cache
	Model      string        // part of the key so a model switch never serves stale vectors
	TTL        time.Duration // entry lifetime; the store default applies when zero
	Dimensions int           // when > 0, cached vectors of another length are misses
	// CacheTotal counts lookups by "result" ("hit"/"miss"); nil disables it.
	CacheTotal *prometheus.CounterVec
}

// CachedEmbedder serves repeated query embeddings from the result cache.
type CachedEmbedder struct {
	inner  domain.Embedder
	store  store
	cfg    Config
	logger *zap.Logger
}

// New creates a caching decorator.
func New(inner domain.Embedder, s store, cfg Config, logger *zap.Logger) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{inner: inner, store: s, cfg: cfg, logger: logger}
}

// Embed returns a cached embedding or calls the inner embedder.
// A hit reports zero tokens since the provider was not called.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.incCache("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	if len(result.Embedding) > 0 {
		c.store.Set(ctx, key, vectorToCacheBytes(result.Embedding), c.cfg.TTL)
	}
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through decorator
	}
	return nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cfg.CacheTotal != nil {
		c.cfg.CacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.cfg.Model + "\x00" + text))
	return cachekey.Embedding(c.cfg.Prefix, hex.EncodeToString(h[:]))
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, ok := c.store.Get(ctx, key)
	if !ok || len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err == nil && c.cfg.Dimensions > 0 && len(vec) != c.cfg.Dimensions {
		err = fmt.Errorf("cached embedding has %d dimensions, want %d", len(vec), c.cfg.Dimensions)
	}
	if err != nil {
		c.logger.Warn("Discarding cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
