package vecfuse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecfuse/internal/db"
	dbRedis "github.com/kailas-cloud/vecfuse/internal/db/redis"
	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/cachekey"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/request"
	"github.com/kailas-cloud/vecfuse/internal/repository/cache"
	"github.com/kailas-cloud/vecfuse/internal/repository/embcache"
	"github.com/kailas-cloud/vecfuse/internal/repository/retriever"
	embeddinguc "github.com/kailas-cloud/vecfuse/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/vecfuse/internal/usecase/health"
	"github.com/kailas-cloud/vecfuse/internal/usecase/interpret"
	"github.com/kailas-cloud/vecfuse/internal/usecase/perf"
	searchuc "github.com/kailas-cloud/vecfuse/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренние интерфейсы для подмены в тестах.
type searchUseCase interface {
	Search(ctx context.Context, query string, f filter.Filter, opts request.Options) (*searchuc.Response, error)
}

type statsUseCase interface {
	Stats(op string, window time.Duration) (perf.Stats, bool)
	Trends(op string) (perf.Trend, bool)
	Summary() map[string]perf.Stats
	Operations() []string
	Recommendations() []string
}

type cacheUseCase interface {
	Stats(ctx context.Context) cache.Stats
	InvalidateUser(ctx context.Context, userID string) int
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// resultCache is what wiring needs from a cache backend.
type resultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	InvalidateUser(ctx context.Context, userID string) int
	Stats(ctx context.Context) cache.Stats
	Ping(ctx context.Context) error
}

// Client is the vecfuse SDK entry point. Safe for concurrent use.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	statsSvc  statsUseCase
	cacheSvc  cacheUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a vecfuse Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("vecfuse: database address required (use WithRedis)")
	}
	if cfg.lexicalIndex == "" {
		return nil, errors.New("vecfuse: search index required (use WithIndex)")
	}

	defaults, err := cfg.searchDefaults()
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("vecfuse: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("vecfuse: database not ready: %w", err)
	}

	if cfg.indexDim > 0 {
		lexical, semantic := cfg.retrieverConfigs()
		if _, err := retriever.EnsureIndexes(ctx, store, lexical, semantic, cfg.indexDim); err != nil {
			store.Close()
			return nil, fmt.Errorf("vecfuse: %w", err)
		}
	}

	return wireClient(store, cfg, defaults, obs), nil
}

func (cfg *clientConfig) retrieverConfigs() (lexical, semantic retriever.Config) {
	lexical = retriever.Config{
		Index:     cfg.lexicalIndex,
		KeyPrefix: cfg.documentPrefix,
		TopK:      cfg.topK,
	}
	semantic = lexical
	if cfg.semanticIndex != "" {
		semantic.Index = cfg.semanticIndex
	}
	return lexical, semantic
}

// searchDefaults validates the configured defaults up front so a bad
// option fails New instead of every Search.
func (cfg *clientConfig) searchDefaults() (request.Defaults, error) {
	d := request.DefaultDefaults()
	if cfg.strategy != "" {
		d.Strategy = cfg.strategy
	}
	if cfg.weightsSet {
		d.KeywordWeight = cfg.keywordWeight
		d.VectorWeight = cfg.vectorWeight
	}
	if cfg.maxResults > 0 {
		d.MaxResults = cfg.maxResults
	}
	if cfg.cacheTTL > 0 {
		d.CacheTTL = cfg.cacheTTL
	}
	if _, err := request.New(request.Options{}, d); err != nil {
		return request.Defaults{}, fmt.Errorf("vecfuse: invalid search defaults: %w", err)
	}
	return d, nil
}

func wireClient(store db.Store, cfg *clientConfig, defaults request.Defaults, obs *observer) *Client {
	logger := zap.NewNop()
	prefix := cfg.keyPrefix
	if prefix == "" {
		prefix = cachekey.DefaultPrefix
	}

	monitor := perf.New()

	var results resultCache
	switch cfg.cacheDriver {
	case cache.BackendRedis:
		results = cache.NewRedis(store, prefix, defaults.CacheTTL, logger)
	default:
		results = cache.NewMemory(
			cache.WithCapacity(cfg.cacheCapacity),
			cache.WithDefaultTTL(defaults.CacheTTL),
		)
	}

	// Embedder: noop если не задан (лексическая ветка работает, семантическая деградирует)
	var emb domain.Embedder = &noopEmbedder{}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	}
	emb = embeddinguc.NewInstrumentedEmbedder(emb, "sdk", "custom", monitor, logger)
	if cfg.embeddingTTL > 0 {
		emb = embcache.New(emb, newEmbeddingCache(store, cfg, prefix, logger), embcache.Config{
			Prefix:     prefix,
			Model:      "custom",
			TTL:        cfg.embeddingTTL,
			Dimensions: cfg.indexDim,
		}, logger)
	}
	if cfg.queryInstruction != "" {
		emb = domain.NewInstructionEmbedder(emb, cfg.queryInstruction)
	}

	lexicalCfg, semanticCfg := cfg.retrieverConfigs()
	lexical := retriever.NewLexical(store, lexicalCfg)
	semantic := retriever.NewSemantic(store, emb, semanticCfg)

	var interpOpts []interpret.Option
	if cfg.now != nil {
		interpOpts = append(interpOpts, interpret.WithClock(cfg.now))
	}

	coordinator := searchuc.New(interpret.New(interpOpts...), lexical, semantic,
		searchuc.WithCache(results),
		searchuc.WithMonitor(monitor),
		searchuc.WithObserver(obs),
		searchuc.WithDefaults(defaults),
		searchuc.WithKeyPrefix(prefix),
		searchuc.WithLogger(logger),
	)

	var embCheck healthuc.EmbeddingChecker
	if hc, ok := emb.(domain.HealthChecker); ok && cfg.embedder != nil {
		embCheck = hc
	}

	return &Client{
		store:     store,
		searchSvc: coordinator,
		statsSvc:  monitor,
		cacheSvc:  results,
		healthSvc: healthuc.New(store, results, embCheck),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs a hybrid search. Korean date/time phrases in query become
// filter constraints; a failing retriever degrades the response instead of
// failing it. Rejected options return an error matching IsRejected.
func (c *Client) Search(
	ctx context.Context, query string, f Filter, opts SearchOptions,
) (resp *SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	r, err := c.searchSvc.Search(ctx, query, f, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if r.CacheHit {
		c.obs.cacheHit()
	}
	return convertResponse(r), nil
}

// embeddingCache is the byte store behind the query embedding cache.
type embeddingCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// newEmbeddingCache keeps embeddings out of the result cache so they never
// compete with search responses for capacity or skew its hit rate.
func newEmbeddingCache(store db.Store, cfg *clientConfig, prefix string, logger *zap.Logger) embeddingCache {
	if cfg.cacheDriver == cache.BackendRedis {
		return cache.NewRedisEmbeddings(store, prefix, cfg.embeddingTTL, logger)
	}
	return cache.NewMemory(
		cache.WithStore(cache.StoreEmbeddings),
		cache.WithCapacity(cfg.cacheCapacity),
		cache.WithDefaultTTL(cfg.embeddingTTL),
	)
}
