package chi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/request"
	"github.com/kailas-cloud/vecfuse/internal/repository/cache"
	healthuc "github.com/kailas-cloud/vecfuse/internal/usecase/health"
	"github.com/kailas-cloud/vecfuse/internal/usecase/perf"
	searchuc "github.com/kailas-cloud/vecfuse/internal/usecase/search"
)

// --- Mocks ---

type mockSearcher struct {
	resp   *searchuc.Response
	err    error
	tokens int
	called bool
	query  string
	filter filter.Filter
	opts   request.Options
}

func (m *mockSearcher) Search(ctx context.Context, query string, f filter.Filter, opts request.Options) (*searchuc.Response, error) {
	if m.tokens > 0 {
		domain.QueryUsageFrom(ctx).Record(m.tokens)
	}
	m.called = true
	m.query = query
	m.filter = f
	m.opts = opts
	return m.resp, m.err
}

type mockStats struct {
	stats     map[string]perf.Stats
	trends    map[string]perf.Trend
	recs      []string
	gotOp     string
	gotWindow time.Duration
}

func (m *mockStats) Stats(op string, window time.Duration) (perf.Stats, bool) {
	m.gotOp = op
	m.gotWindow = window
	s, ok := m.stats[op]
	return s, ok
}

func (m *mockStats) Trends(op string) (perf.Trend, bool) {
	t, ok := m.trends[op]
	return t, ok
}

func (m *mockStats) Summary() map[string]perf.Stats { return m.stats }

func (m *mockStats) Recommendations() []string { return m.recs }

type mockCacheAdmin struct {
	stats       cache.Stats
	removed     int
	invalidated string
}

func (m *mockCacheAdmin) Stats(_ context.Context) cache.Stats { return m.stats }

func (m *mockCacheAdmin) InvalidateUser(_ context.Context, userID string) int {
	m.invalidated = userID
	return m.removed
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type testDeps struct {
	search *mockSearcher
	stats  *mockStats
	cache  *mockCacheAdmin
	health *mockHealth
}

func newTestRouter(d *testDeps) http.Handler {
	if d.search == nil {
		d.search = &mockSearcher{resp: &searchuc.Response{}}
	}
	if d.stats == nil {
		d.stats = &mockStats{}
	}
	if d.cache == nil {
		d.cache = &mockCacheAdmin{}
	}
	if d.health == nil {
		d.health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	srv := NewServer(d.search, d.stats, d.cache, d.health, zap.NewNop())
	return Handler(srv, HandlerOptions{})
}
