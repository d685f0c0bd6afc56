package vecfuse

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	embedder         Embedder
	queryInstruction string

	lexicalIndex   string
	semanticIndex  string
	documentPrefix string
	topK           int
	indexDim       int

	strategy      Strategy
	keywordWeight float64
	vectorWeight  float64
	weightsSet    bool
	maxResults    int

	cacheDriver   string // "memory" or "redis"
	cacheCapacity int
	cacheTTL      time.Duration
	embeddingTTL  time.Duration
	keyPrefix     string

	now func() time.Time

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis sets the Redis instance holding the search indexes.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the query embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithQueryInstruction prefixes every query before embedding ("query: " for e5 models).
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryInstruction = instruction
	})
}

// WithIndex sets the FT index names and the document key prefix stripped from hit ids.
// An empty semantic index reuses the lexical one.
func WithIndex(lexical, semantic, documentPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.lexicalIndex = lexical
		c.semanticIndex = semantic
		c.documentPrefix = documentPrefix
	})
}

// WithIndexBootstrap creates missing indexes with a dim-sized vector field on New.
func WithIndexBootstrap(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexDim = dim
	})
}

// WithTopK bounds how many hits each retriever returns. Default: 100.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithStrategy sets the default fusion strategy. Default: weighted.
func WithStrategy(s Strategy) Option {
	return optionFunc(func(c *clientConfig) {
		c.strategy = s
	})
}

// WithWeights sets the default keyword/vector weights. Default: 0.4/0.6.
func WithWeights(keyword, vector float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.keywordWeight = keyword
		c.vectorWeight = vector
		c.weightsSet = true
	})
}

// WithMaxResults sets the default result cap. Default: 50.
func WithMaxResults(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxResults = n
	})
}

// WithMemoryCache keeps results in process, bounded to capacity entries.
// This is the default (capacity 1000).
func WithMemoryCache(capacity int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "memory"
		c.cacheCapacity = capacity
	})
}

// WithRedisCache keeps results in the same Redis that holds the indexes.
func WithRedisCache() Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "redis"
	})
}

// WithCacheTTL sets the default result lifetime. Default: 5m.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithEmbeddingCache caches query embeddings in the result cache for ttl.
// Disabled by default.
func WithEmbeddingCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingTTL = ttl
	})
}

// WithKeyPrefix namespaces cache keys. Default: "vecfuse:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithClock sets the reference clock for relative date phrases ("오늘", "어제").
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *clientConfig) {
		c.now = now
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
