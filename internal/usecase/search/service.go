// Package search coordinates hybrid retrieval: interpret, cache check,
// concurrent lexical and semantic retrieval, normalization, fusion and
// cache store.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/vecfuse/internal/domain/cachekey"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/document"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/request"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/result"
	"github.com/kailas-cloud/vecfuse/internal/metrics"
	"github.com/kailas-cloud/vecfuse/internal/usecase/fusion"
	"github.com/kailas-cloud/vecfuse/internal/usecase/perf"
)

// Observer event names.
const (
	EventCacheHit        = "search.cache_hit"
	EventRetrieverFailed = "search.retriever_failed"
	EventCompleted       = "search.completed"
)

// Search outcomes (metrics label).
const (
	outcomeOK       = "ok"
	outcomeDegraded = "degraded"
	outcomeRejected = "rejected"
	outcomeCanceled = "canceled"
)

// Coordinator runs hybrid searches. Safe for concurrent use.
type Coordinator struct {
	interp   Interpreter
	lexical  LexicalRetriever
	semantic SemanticRetriever
	cache    Cache
	monitor  Monitor
	observer Observer
	defaults request.Defaults
	prefix   string
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCache enables the result cache.
func WithCache(c Cache) Option {
	return func(co *Coordinator) { co.cache = c }
}

// WithMonitor records operation timings into m.
func WithMonitor(m Monitor) Option {
	return func(co *Coordinator) { co.monitor = m }
}

// WithObserver sends telemetry events to o.
func WithObserver(o Observer) Option {
	return func(co *Coordinator) { co.observer = o }
}

// WithDefaults overrides the option defaults.
func WithDefaults(d request.Defaults) Option {
	return func(co *Coordinator) { co.defaults = d }
}

// WithKeyPrefix sets the cache key namespace.
func WithKeyPrefix(p string) Option {
	return func(co *Coordinator) { co.prefix = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(co *Coordinator) {
		if l != nil {
			co.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(co *Coordinator) { co.now = now }
}

// New creates a search coordinator.
func New(interp Interpreter, lexical LexicalRetriever, semantic SemanticRetriever, opts ...Option) *Coordinator {
	co := &Coordinator{
		interp:   interp,
		lexical:  lexical,
		semantic: semantic,
		monitor:  nopMonitor{},
		observer: nopObserver{},
		defaults: request.DefaultDefaults(),
		prefix:   cachekey.DefaultPrefix,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(co)
	}
	return co
}

// Search runs one hybrid search. It fails only for invalid input (fusion-class
// errors) or caller cancellation; retriever and cache failures degrade instead.
func (c *Coordinator) Search(
	ctx context.Context, query string, f filter.Filter, opts request.Options,
) (*Response, error) {
	start := c.now()

	params, err := c.validate(query, f, opts)
	if err != nil {
		// Strategy is unvalidated here; keep label cardinality bounded.
		metrics.SearchRequestsTotal.WithLabelValues("-", outcomeRejected).Inc()
		return nil, err
	}
	strat := string(params.Strategy())

	ext := c.interp.Extract(query)
	merged := f
	if ext.Filter != nil {
		merged = f.Merge(*ext.Filter)
	}

	cacheLabel := "off"
	var key string
	if params.UseCache() && c.cache != nil {
		key = cacheKey(c.prefix, ext.CleanQuery, merged, params)
		if resp, ok := c.cached(ctx, key); ok {
			resp.OriginalQuery = query
			resp.Performance.Duration = millis(c.now().Sub(start))
			c.finish(start, strat, "hit", outcomeOK, resp)
			c.observer.LogEvent(EventCacheHit, map[string]any{"strategy": strat, "key": key})
			return resp, nil
		}
		cacheLabel = "miss"
	}

	lex, sem, err := c.retrieve(ctx, ext.CleanQuery, merged)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(strat, outcomeCanceled).Inc()
		return nil, err
	}

	fused, err := fusion.Fuse(fusion.Normalize(lex.docs), fusion.Normalize(sem.docs),
		params.Strategy(), fusion.OptionsFrom(params))
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(strat, outcomeRejected).Inc()
		return nil, fmt.Errorf("fuse: %w", err)
	}

	resp := &Response{
		Results:       fused,
		Total:         len(fused),
		Query:         ext.CleanQuery,
		OriginalQuery: query,
		DateTimeInfo:  ext.Match,
		Filters:       merged,
		Strategy:      params.Strategy(),
		Performance: Performance{
			KeywordResults: len(lex.docs),
			VectorResults:  len(sem.docs),
		},
		Degraded: lex.err != nil && sem.err != nil,
	}
	if resp.Results == nil {
		resp.Results = []result.Fused{}
	}

	// Degraded responses are not cached so an outage is not replayed after recovery.
	if key != "" && !resp.Degraded {
		c.store(ctx, key, resp, params.CacheTTL())
	}

	resp.Performance.Duration = millis(c.now().Sub(start))
	outcome := outcomeOK
	if resp.Degraded {
		outcome = outcomeDegraded
	}
	c.finish(start, strat, cacheLabel, outcome, resp)
	return resp, nil
}

func (c *Coordinator) validate(query string, f filter.Filter, opts request.Options) (request.Params, error) {
	if err := request.ValidateQuery(query); err != nil {
		return request.Params{}, err
	}
	if err := f.Validate(); err != nil {
		return request.Params{}, err
	}
	params, err := request.New(opts, c.defaults)
	if err != nil {
		return request.Params{}, fmt.Errorf("search options: %w", err)
	}
	return params, nil
}

// branch is the settled outcome of one retriever call.
type branch struct {
	docs []document.Document
	err  error
}

// retrieve runs both retrievers concurrently and waits for both to settle.
// A failing branch yields an empty list; only caller cancellation is returned.
func (c *Coordinator) retrieve(ctx context.Context, query string, f filter.Filter) (branch, branch, error) {
	g, gctx := errgroup.WithContext(ctx)
	var lex, sem branch

	g.Go(func() error {
		lex = c.runBranch(gctx, perf.OpKeywordSearch, document.Lexical, func(ctx context.Context) ([]document.Document, error) {
			if strings.TrimSpace(query) == "" && !constrains(f) {
				return nil, nil
			}
			return c.lexical.Search(ctx, query, f)
		})
		return nil
	})

	g.Go(func() error {
		sem = c.runBranch(gctx, perf.OpVectorSearch, document.Semantic, func(ctx context.Context) ([]document.Document, error) {
			// No vector can be built from an empty query.
			if strings.TrimSpace(query) == "" {
				return nil, nil
			}
			vec, err := c.semantic.Embed(ctx, query)
			if err != nil {
				return nil, err
			}
			return c.semantic.Search(ctx, vec, f)
		})
		return nil
	})

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	// On cancellation the branches finish in the background; their monitor
	// and metrics writes are still valid.
	select {
	case <-ctx.Done():
		return branch{}, branch{}, fmt.Errorf("search canceled: %w", ctx.Err())
	case <-done:
	}
	return lex, sem, nil
}

func (c *Coordinator) runBranch(
	ctx context.Context, op string, src document.Source,
	fn func(context.Context) ([]document.Document, error),
) branch {
	start := c.now()
	docs, err := fn(ctx)
	d := c.now().Sub(start)

	if err != nil {
		metrics.RetrieverFailuresTotal.WithLabelValues(string(src)).Inc()
		c.monitor.RecordFailure(op, d, map[string]any{"error": err.Error()})
		c.observer.LogEvent(EventRetrieverFailed, map[string]any{"source": string(src), "error": err.Error()})
		c.logger.Warn("retriever failed, continuing with empty list",
			zap.String("source", string(src)), zap.Error(err))
		return branch{err: err}
	}

	metrics.RetrievedDocuments.WithLabelValues(string(src)).Observe(float64(len(docs)))
	c.monitor.Record(op, d, map[string]any{"results": len(docs)})
	return branch{docs: docs}
}

func (c *Coordinator) cached(ctx context.Context, key string) (*Response, bool) {
	raw, ok := c.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	resp.CacheHit = true
	return &resp, true
}

func (c *Coordinator) store(ctx context.Context, key string, resp *Response, ttl time.Duration) {
	raw, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.cache.Set(ctx, key, raw, ttl)
}

func (c *Coordinator) finish(start time.Time, strat, cacheLabel, outcome string, resp *Response) {
	d := c.now().Sub(start)
	metrics.SearchDuration.WithLabelValues(strat, cacheLabel).Observe(d.Seconds())
	metrics.SearchRequestsTotal.WithLabelValues(strat, outcome).Inc()

	meta := map[string]any{
		"strategy":  strat,
		"cache_hit": resp.CacheHit,
		"results":   resp.Total,
	}
	if resp.Degraded {
		c.monitor.RecordFailure(perf.OpHybridSearch, d, meta)
	} else {
		c.monitor.Record(perf.OpHybridSearch, d, meta)
	}

	c.observer.LogEvent(EventCompleted, map[string]any{
		"strategy":    strat,
		"results":     resp.Total,
		"duration_ms": millis(d),
		"cache_hit":   resp.CacheHit,
		"degraded":    resp.Degraded,
	})
}

// constrains reports whether f narrows a search on its own (limit does not).
func constrains(f filter.Filter) bool {
	f.Limit = 0
	return !f.IsEmpty()
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

type nopMonitor struct{}

func (nopMonitor) Record(string, time.Duration, map[string]any)        {}
func (nopMonitor) RecordFailure(string, time.Duration, map[string]any) {}

type nopObserver struct{}

func (nopObserver) LogEvent(string, map[string]any) {}
