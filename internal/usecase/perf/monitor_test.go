package perf

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestRecord_FIFOBuffer(t *testing.T) {
	m := New(WithBufferSize(3))
	for i := 1; i <= 5; i++ {
		m.Record("op", ms(i), nil)
	}
	s, ok := m.Stats("op", 0)
	if !ok {
		t.Fatal("expected stats")
	}
	if s.Count != 3 {
		t.Fatalf("count = %d, want 3", s.Count)
	}
	if s.Min != 3 || s.Max != 5 {
		t.Errorf("oldest samples must be dropped first, got min %v max %v", s.Min, s.Max)
	}
}

func TestRecord_DefaultBufferCap(t *testing.T) {
	m := New()
	for range DefaultBufferSize + 10 {
		m.Record("op", ms(1), nil)
	}
	s, _ := m.Stats("op", 0)
	if s.Count != DefaultBufferSize {
		t.Errorf("count = %d, want %d", s.Count, DefaultBufferSize)
	}
}

func TestStats_Aggregates(t *testing.T) {
	m := New()
	for i := 1; i <= 100; i++ {
		m.Record(OpHybridSearch, ms(i), nil)
	}
	s, ok := m.Stats(OpHybridSearch, 0)
	if !ok {
		t.Fatal("expected stats")
	}
	if s.Count != 100 || s.Min != 1 || s.Max != 100 {
		t.Errorf("unexpected stats %+v", s)
	}
	if s.Average != 50.5 {
		t.Errorf("avg = %v, want 50.5", s.Average)
	}
	// sorted[floor(100*0.95)] = sorted[95] = 96ms
	if s.P95 != 96 {
		t.Errorf("p95 = %v, want 96", s.P95)
	}
	if s.P99 != 100 {
		t.Errorf("p99 = %v, want 100", s.P99)
	}
}

func TestStats_SingleSample(t *testing.T) {
	m := New()
	m.Record("op", ms(7), nil)
	s, _ := m.Stats("op", 0)
	if s.P95 != 7 || s.P99 != 7 {
		t.Errorf("percentiles of one sample = %v/%v, want 7/7", s.P95, s.P99)
	}
}

func TestStats_Window(t *testing.T) {
	clock := newFakeClock()
	m := New(WithClock(clock.Now))

	m.Record("op", ms(1000), nil)
	clock.Advance(2 * time.Hour)
	m.Record("op", ms(10), nil)

	s, _ := m.Stats("op", time.Hour)
	if s.Count != 1 || s.Average != 10 {
		t.Errorf("1h window = %+v, want only the recent sample", s)
	}

	s, _ = m.Stats("op", 0)
	if s.Count != 2 {
		t.Errorf("default 24h window count = %d, want 2", s.Count)
	}

	clock.Advance(48 * time.Hour)
	if _, ok := m.Stats("op", 0); ok {
		t.Error("expected no stats once all samples left the window")
	}
}

func TestStats_UnknownOperation(t *testing.T) {
	if _, ok := New().Stats("missing", 0); ok {
		t.Error("expected ok=false")
	}
}

func TestStats_ErrorRate(t *testing.T) {
	m := New()
	for range 9 {
		m.Record("op", ms(1), nil)
	}
	m.RecordFailure("op", ms(1), nil)
	s, _ := m.Stats("op", 0)
	if s.ErrorRate != 0.1 {
		t.Errorf("error rate = %v, want 0.1", s.ErrorRate)
	}
}

func TestTrends(t *testing.T) {
	tests := []struct {
		name      string
		durations []int
		trend     string
		change    float64
	}{
		{"increasing", []int{10, 10, 20, 20}, Increasing, 100},
		{"decreasing", []int{20, 20, 10, 10}, Decreasing, -50},
		{"flat", []int{10, 10}, Decreasing, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			for _, d := range tt.durations {
				m.Record("op", ms(d), nil)
			}
			tr, ok := m.Trends("op")
			if !ok {
				t.Fatal("expected trend")
			}
			if tr.Trend != tt.trend || tr.ChangePercent != tt.change {
				t.Errorf("trend = %s %v%%, want %s %v%%", tr.Trend, tr.ChangePercent, tt.trend, tt.change)
			}
		})
	}
}

func TestTrends_UsesMostRecentWindow(t *testing.T) {
	m := New(WithTrendWindow(4))
	for _, d := range []int{500, 500, 500, 10, 10, 20, 20} {
		m.Record("op", ms(d), nil)
	}
	tr, _ := m.Trends("op")
	if tr.Samples != 4 || tr.Trend != Increasing {
		t.Errorf("got %+v, want increasing over the last 4 samples", tr)
	}
}

func TestTrends_NotEnoughSamples(t *testing.T) {
	m := New()
	m.Record("op", ms(1), nil)
	if _, ok := m.Trends("op"); ok {
		t.Error("one sample cannot form a trend")
	}
}

func TestRecommendations(t *testing.T) {
	m := New()
	m.Record(OpHybridSearch, ms(800), nil)
	m.Record(OpKeywordSearch, ms(50), nil)
	m.Record(OpVectorSearch, ms(350), nil)
	m.RecordFailure(OpVectorSearch, ms(350), nil)

	recs := m.Recommendations()
	joined := strings.Join(recs, "\n")

	for _, want := range []string{"hybrid_search average", "vector_search average", "vector_search error rate"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing recommendation %q in %v", want, recs)
		}
	}
	if strings.Contains(joined, "keyword_search") {
		t.Errorf("fast keyword search must not be flagged: %v", recs)
	}
}

func TestRecommendations_HealthySystem(t *testing.T) {
	m := New()
	m.Record(OpHybridSearch, ms(100), map[string]any{"cache_hit": false})
	if recs := m.Recommendations(); len(recs) != 0 {
		t.Errorf("expected no recommendations, got %v", recs)
	}
}

func TestRecommendations_CacheHitRate(t *testing.T) {
	m := New()
	for range minCacheSamples {
		m.Record(OpHybridSearch, ms(10), map[string]any{"cache_hit": false})
	}
	recs := m.Recommendations()
	if len(recs) != 1 || !strings.Contains(recs[0], "cache hit rate") {
		t.Errorf("expected cache hit rate advice, got %v", recs)
	}
}

func TestRecommendations_CustomLimit(t *testing.T) {
	m := New(WithLatencyLimit(OpEmbedding, 100*time.Millisecond))
	m.Record(OpEmbedding, ms(150), nil)
	recs := m.Recommendations()
	if len(recs) != 1 || !strings.HasPrefix(recs[0], "embedding average") {
		t.Errorf("got %v", recs)
	}
}

func TestOperationsAndSummary(t *testing.T) {
	m := New()
	m.Record(OpVectorSearch, ms(1), nil)
	m.Record(OpKeywordSearch, ms(1), nil)

	ops := m.Operations()
	if len(ops) != 2 || ops[0] != OpKeywordSearch || ops[1] != OpVectorSearch {
		t.Errorf("operations = %v", ops)
	}
	if sum := m.Summary(); len(sum) != 2 || sum[OpKeywordSearch].Count != 1 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestMonitor_ConcurrentRecord(t *testing.T) {
	m := New(WithBufferSize(100))
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 200 {
				m.Record("op", ms(1), nil)
				m.Stats("op", 0)
			}
		})
	}
	wg.Wait()

	s, _ := m.Stats("op", 0)
	if s.Count != 100 {
		t.Errorf("count = %d, want buffer cap 100", s.Count)
	}
}
