// Package perf keeps bounded in-memory latency samples per operation and derives
// statistics, trends and tuning recommendations from them.
package perf

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/metrics"
)

// Operations recorded by the search pipeline.
const (
	OpHybridSearch  = "hybrid_search"
	OpKeywordSearch = "keyword_search"
	OpVectorSearch  = "vector_search"
	OpEmbedding     = "embedding"
)

// Defaults.
const (
	DefaultBufferSize  = 1000
	DefaultWindow      = 24 * time.Hour
	DefaultTrendWindow = 50
)

// Sample is one recorded operation.
type Sample struct {
	Operation string
	Duration  time.Duration
	At        time.Time
	Failed    bool
	Metadata  map[string]any
}

// Monitor stores samples in per-operation FIFO buffers. Safe for concurrent use.
type Monitor struct {
	mu      sync.Mutex
	samples map[string][]Sample

	bufferSize  int
	window      time.Duration
	trendWindow int
	limits      map[string]time.Duration
	now         func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithBufferSize caps samples kept per operation.
func WithBufferSize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.bufferSize = n
		}
	}
}

// WithDefaultWindow sets the window used when Stats is called with window <= 0.
func WithDefaultWindow(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.window = d
		}
	}
}

// WithTrendWindow sets how many recent samples Trends compares.
func WithTrendWindow(n int) Option {
	return func(m *Monitor) {
		if n >= 2 {
			m.trendWindow = n
		}
	}
}

// WithClock overrides the sample timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithLatencyLimit sets the average-duration threshold above which
// Recommendations reports the operation.
func WithLatencyLimit(op string, d time.Duration) Option {
	return func(m *Monitor) { m.limits[op] = d }
}

// New creates a Monitor.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		samples:     make(map[string][]Sample),
		bufferSize:  DefaultBufferSize,
		window:      DefaultWindow,
		trendWindow: DefaultTrendWindow,
		limits: map[string]time.Duration{
			OpHybridSearch:  500 * time.Millisecond,
			OpKeywordSearch: 200 * time.Millisecond,
			OpVectorSearch:  300 * time.Millisecond,
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Record appends a successful sample.
func (m *Monitor) Record(op string, d time.Duration, meta map[string]any) {
	m.add(Sample{Operation: op, Duration: d, Metadata: meta})
}

// RecordFailure appends a failed sample; failures count towards the error rate.
func (m *Monitor) RecordFailure(op string, d time.Duration, meta map[string]any) {
	m.add(Sample{Operation: op, Duration: d, Failed: true, Metadata: meta})
}

func (m *Monitor) add(s Sample) {
	s.At = m.now()
	metrics.OperationDuration.WithLabelValues(s.Operation).Observe(s.Duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	buf := m.samples[s.Operation]
	if len(buf) >= m.bufferSize {
		drop := len(buf) - m.bufferSize + 1
		buf = append(buf[:0], buf[drop:]...)
	}
	m.samples[s.Operation] = append(buf, s)
}

// Operations returns the names of operations with at least one sample, sorted.
func (m *Monitor) Operations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make([]string, 0, len(m.samples))
	for op, buf := range m.samples {
		if len(buf) > 0 {
			ops = append(ops, op)
		}
	}
	sort.Strings(ops)
	return ops
}

// snapshot copies the samples of op recorded at or after since.
func (m *Monitor) snapshot(op string, since time.Time) []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := m.samples[op]
	out := make([]Sample, 0, len(buf))
	for _, s := range buf {
		if !s.At.Before(since) {
			out = append(out, s)
		}
	}
	return out
}

// recent copies the last n samples of op.
func (m *Monitor) recent(op string, n int) []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := m.samples[op]
	if len(buf) > n {
		buf = buf[len(buf)-n:]
	}
	return append([]Sample(nil), buf...)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
