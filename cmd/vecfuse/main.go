package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecfuse/internal/config"
	dbRedis "github.com/kailas-cloud/vecfuse/internal/db/redis"
	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/request"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/strategy"
	logpkg "github.com/kailas-cloud/vecfuse/internal/logger"
	"github.com/kailas-cloud/vecfuse/internal/metrics"
	"github.com/kailas-cloud/vecfuse/internal/repository/cache"
	"github.com/kailas-cloud/vecfuse/internal/repository/embcache"
	"github.com/kailas-cloud/vecfuse/internal/repository/retriever"
	chiTransport "github.com/kailas-cloud/vecfuse/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/vecfuse/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/vecfuse/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/vecfuse/internal/usecase/health"
	"github.com/kailas-cloud/vecfuse/internal/usecase/interpret"
	"github.com/kailas-cloud/vecfuse/internal/usecase/perf"
	searchuc "github.com/kailas-cloud/vecfuse/internal/usecase/search"
	"github.com/kailas-cloud/vecfuse/internal/version"
)

// resultCache is what the composition root needs from a cache backend.
type resultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	InvalidateUser(ctx context.Context, userID string) int
	Stats(ctx context.Context) cache.Stats
	Ping(ctx context.Context) error
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting vecfuse search server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.Register()

	monitor := perf.New(
		perf.WithBufferSize(cfg.Monitor.BufferSize),
		perf.WithDefaultWindow(cfg.Monitor.DefaultWindow()),
		perf.WithTrendWindow(cfg.Monitor.TrendWindow),
	)

	var results resultCache
	switch cfg.Cache.Driver {
	case cache.BackendRedis:
		results = cache.NewRedis(store, cfg.Cache.KeyPrefix, cfg.Cache.TTL(), logger)
	default:
		results = cache.NewMemory(
			cache.WithCapacity(cfg.Cache.Capacity),
			cache.WithEvictRatio(cfg.Cache.EvictRatio),
			cache.WithDefaultTTL(cfg.Cache.TTL()),
		)
	}

	var embeddings embcacheStore
	switch cfg.Cache.Driver {
	case cache.BackendRedis:
		embeddings = cache.NewRedisEmbeddings(store, cfg.Cache.KeyPrefix, cfg.Cache.EmbeddingTTL(), logger)
	default:
		embeddings = cache.NewMemory(
			cache.WithStore(cache.StoreEmbeddings),
			cache.WithCapacity(cfg.Cache.EmbeddingCapacity),
			cache.WithEvictRatio(cfg.Cache.EvictRatio),
			cache.WithDefaultTTL(cfg.Cache.EmbeddingTTL()),
		)
	}

	queryEmbedder := buildEmbedder(cfg, embeddings, monitor, logger)
	logger.Info("Query embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	lexicalCfg := retriever.Config{
		Index:     cfg.Search.LexicalIndex,
		KeyPrefix: cfg.Search.DocumentPrefix,
		TopK:      cfg.Search.TopK,
	}
	semanticCfg := lexicalCfg
	semanticCfg.Index = cfg.Search.SemanticIndex

	if cfg.Search.CreateIndex {
		created, err := retriever.EnsureIndexes(ctx, store, lexicalCfg, semanticCfg, cfg.Embedding.Dimensions)
		if err != nil {
			logger.Fatal("Failed to create search indexes", zap.Error(err))
		}
		logger.Info("Search indexes ready", zap.Strings("created", created))
	}

	lexical := retriever.NewLexical(store, lexicalCfg)
	semantic := retriever.NewSemantic(store, queryEmbedder, semanticCfg)

	coordinator := searchuc.New(interpret.New(), lexical, semantic,
		searchuc.WithCache(results),
		searchuc.WithMonitor(monitor),
		searchuc.WithObserver(logpkg.NewObserver(logger)),
		searchuc.WithDefaults(searchDefaults(cfg)),
		searchuc.WithKeyPrefix(cfg.Cache.KeyPrefix),
		searchuc.WithLogger(logger),
	)

	healthSvc := healthuc.New(store, results, healthChecker(queryEmbedder))

	server := chiTransport.NewServer(coordinator, monitor, results, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(chiTransport.BearerAuth(cfg.Auth.APIKeys, chiTransport.DefaultPublicPaths...))
	r.Use(metrics.Middleware())
	chiTransport.Handler(server, chiTransport.HandlerOptions{BaseRouter: r})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func searchDefaults(cfg config.Config) request.Defaults {
	d := request.DefaultDefaults()
	d.Strategy = strategy.Strategy(cfg.Search.Strategy)
	d.KeywordWeight = *cfg.Search.KeywordWeight
	d.VectorWeight = *cfg.Search.VectorWeight
	d.RRFConstant = cfg.Search.RRFConstant
	d.MinScoreThreshold = *cfg.Search.MinScoreThreshold
	d.MaxResults = cfg.Search.MaxResults
	d.CacheTTL = cfg.Cache.TTL()
	return d
}

// buildEmbedder assembles the decorator chain: OpenAI -> Instrumented -> Cached -> Instruction.
// Instrumented sits inside the cache so monitor samples reflect provider calls only.
func buildEmbedder(
	cfg config.Config,
	store embcacheStore,
	monitor *perf.Monitor,
	logger *zap.Logger,
) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(
		base, cfg.Embedding.Provider, cfg.Embedding.Model, monitor, logger,
	)

	if ttl := cfg.Cache.EmbeddingTTL(); ttl > 0 {
		embedder = embcache.New(embedder, store, embcache.Config{
			Prefix:     cfg.Cache.KeyPrefix,
			Model:      cfg.Embedding.Model,
			TTL:        ttl,
			Dimensions: cfg.Embedding.Dimensions,
			CacheTotal: metrics.EmbeddingCacheTotal,
		}, logger)
	}

	// Instruction prefix (outermost, so the cache key includes it)
	if cfg.Embedding.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
	}
	return embedder
}

// embcacheStore is the byte store the embedding cache writes to.
type embcacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// healthChecker returns the embedder's health check, or nil when it has none.
// A typed nil must not leak into the interface.
func healthChecker(e domain.Embedder) healthuc.EmbeddingChecker {
	if hc, ok := e.(domain.HealthChecker); ok {
		return hc
	}
	return nil
}
