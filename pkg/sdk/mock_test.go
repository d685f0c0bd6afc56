package vecfuse

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/db"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/request"
	"github.com/kailas-cloud/vecfuse/internal/repository/cache"
	healthuc "github.com/kailas-cloud/vecfuse/internal/usecase/health"
	"github.com/kailas-cloud/vecfuse/internal/usecase/perf"
	searchuc "github.com/kailas-cloud/vecfuse/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, query string, f filter.Filter, opts request.Options) (*searchuc.Response, error)
}

func (m *mockSearchUC) Search(
	ctx context.Context, query string, f filter.Filter, opts request.Options,
) (*searchuc.Response, error) {
	return m.searchFn(ctx, query, f, opts)
}

// --- statsUseCase mock ---

type mockStatsUC struct {
	stats     map[string]perf.Stats
	trends    map[string]perf.Trend
	recs      []string
	gotWindow time.Duration
}

func (m *mockStatsUC) Stats(op string, window time.Duration) (perf.Stats, bool) {
	m.gotWindow = window
	s, ok := m.stats[op]
	return s, ok
}

func (m *mockStatsUC) Trends(op string) (perf.Trend, bool) {
	t, ok := m.trends[op]
	return t, ok
}

func (m *mockStatsUC) Summary() map[string]perf.Stats { return m.stats }

func (m *mockStatsUC) Operations() []string {
	ops := make([]string, 0, len(m.stats))
	for op := range m.stats {
		ops = append(ops, op)
	}
	return ops
}

func (m *mockStatsUC) Recommendations() []string { return m.recs }

// --- cacheUseCase mock ---

type mockCacheUC struct {
	stats       cache.Stats
	invalidated string
	removed     int
}

func (m *mockCacheUC) Stats(context.Context) cache.Stats { return m.stats }

func (m *mockCacheUC) InvalidateUser(_ context.Context, userID string) int {
	m.invalidated = userID
	return m.removed
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- db.Store fake ---

// fakeStore serves canned FT.SEARCH results; KV calls are unused by the memory cache.
type fakeStore struct {
	mu       sync.Mutex
	bm25     *db.SearchResult
	knn      *db.SearchResult
	bm25Err  error
	knnErr   error
	lastText *db.TextQuery
	lastKNN  *db.KNNQuery
	closed   bool
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) Get(context.Context, string) ([]byte, error) { return nil, db.ErrKeyNotFound }

func (f *fakeStore) SetWithTTL(context.Context, string, []byte, time.Duration) error { return nil }

func (f *fakeStore) Del(context.Context, ...string) (int, error) { return 0, nil }

func (f *fakeStore) Scan(context.Context, string) ([]string, error) { return nil, nil }

func (f *fakeStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKNN = q
	return f.knn, f.knnErr
}

func (f *fakeStore) SearchBM25(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastText = q
	return f.bm25, f.bm25Err
}

func (f *fakeStore) CreateIndex(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }

func (f *fakeStore) Close() { f.closed = true }

func (f *fakeStore) WaitForReady(context.Context, time.Duration) error { return nil }

func newFakeStore() *fakeStore {
	return &fakeStore{
		bm25: &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: "note:a", Score: 8, HasScore: true, Fields: map[string]string{"content": "주간 회의"}},
			{Key: "note:b", Score: 2, HasScore: true, Fields: map[string]string{"content": "회의록"}},
		}},
		knn: &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: "note:b", Score: 0.9, HasScore: true, Fields: map[string]string{"content": "회의록"}},
			{Key: "note:c", Score: 0.5, HasScore: true, Fields: map[string]string{"content": "미팅 메모"}},
		}},
	}
}

type mockEmbedder struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fn(ctx, text)
}

func staticEmbedder() *mockEmbedder {
	return &mockEmbedder{fn: func(context.Context, string) (EmbeddingResult, error) {
		return EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 3}, nil
	}}
}

// --- helpers ---

func testClient(search searchUseCase, stats statsUseCase, c cacheUseCase, health healthUseCase) *Client {
	return &Client{
		searchSvc: search,
		statsSvc:  stats,
		cacheSvc:  c,
		healthSvc: health,
	}
}
