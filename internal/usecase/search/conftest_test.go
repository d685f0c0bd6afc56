package search

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain/search/document"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/usecase/interpret"
)

// --- Mocks ---

var testNow = time.Date(2026, 10, 16, 10, 30, 0, 0, time.FixedZone("KST", 9*60*60))

func testInterpreter() *interpret.Interpreter {
	return interpret.New(interpret.WithClock(func() time.Time { return testNow }))
}

type mockLexical struct {
	mu      sync.Mutex
	docs    []document.Document
	err     error
	calls   int
	query   string
	filter  filter.Filter
	blockCh chan struct{}
}

func (m *mockLexical) Search(_ context.Context, query string, f filter.Filter) ([]document.Document, error) {
	if m.blockCh != nil {
		<-m.blockCh
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.query = query
	m.filter = f
	return m.docs, m.err
}

func (m *mockLexical) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockSemantic struct {
	mu          sync.Mutex
	docs        []document.Document
	embedErr    error
	searchErr   error
	embedCalls  int
	searchCalls int
}

func (m *mockSemantic) Embed(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return []float32{0.1, 0.2}, nil
}

func (m *mockSemantic) Search(_ context.Context, _ []float32, _ filter.Filter) ([]document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	return m.docs, m.searchErr
}

func (m *mockSemantic) Calls() (embed, search int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls, m.searchCalls
}

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	lastTTL time.Duration
	gets    int
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.data[key]
	return v, ok
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.lastTTL = ttl
	m.data[key] = value
}

type recorded struct {
	op     string
	failed bool
	meta   map[string]any
}

type mockMonitor struct {
	mu      sync.Mutex
	samples []recorded
}

func (m *mockMonitor) Record(op string, _ time.Duration, meta map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, recorded{op: op, meta: meta})
}

func (m *mockMonitor) RecordFailure(op string, _ time.Duration, meta map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, recorded{op: op, failed: true, meta: meta})
}

func (m *mockMonitor) find(op string) (recorded, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.samples {
		if s.op == op {
			return s, true
		}
	}
	return recorded{}, false
}

type mockObserver struct {
	mu     sync.Mutex
	events []string
}

func (m *mockObserver) LogEvent(name string, _ map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, name)
}

func (m *mockObserver) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e == name {
			return true
		}
	}
	return false
}

func lexDocs() []document.Document {
	return []document.Document{
		document.New("a", document.Lexical, 8, map[string]any{"content": "주간 회의"}, time.Time{}),
		document.New("b", document.Lexical, 2, nil, time.Time{}),
	}
}

func semDocs() []document.Document {
	return []document.Document{
		document.New("b", document.Semantic, 0.9, nil, time.Time{}),
		document.New("c", document.Semantic, 0.5, nil, time.Time{}),
	}
}
