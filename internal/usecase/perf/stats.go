package perf

import (
	"sort"
	"time"
)

// Stats aggregates samples within a window. Durations are milliseconds.
type Stats struct {
	Operation string  `json:"operation"`
	Window    string  `json:"window"`
	Count     int     `json:"count"`
	Average   float64 `json:"avg"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	P95       float64 `json:"p95"`
	P99       float64 `json:"p99"`
	ErrorRate float64 `json:"errorRate"`
}

// Stats computes aggregates for op over samples recorded within window
// (the monitor's default when window <= 0). ok is false when no sample falls in it.
func (m *Monitor) Stats(op string, window time.Duration) (Stats, bool) {
	if window <= 0 {
		window = m.window
	}
	samples := m.snapshot(op, m.now().Add(-window))
	if len(samples) == 0 {
		return Stats{}, false
	}

	durations := make([]time.Duration, len(samples))
	var total time.Duration
	failed := 0
	for i, s := range samples {
		durations[i] = s.Duration
		total += s.Duration
		if s.Failed {
			failed++
		}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	n := len(durations)
	return Stats{
		Operation: op,
		Window:    window.String(),
		Count:     n,
		Average:   round2(millis(total) / float64(n)),
		Min:       round2(millis(durations[0])),
		Max:       round2(millis(durations[n-1])),
		P95:       round2(millis(durations[percentileIndex(n, 0.95)])),
		P99:       round2(millis(durations[percentileIndex(n, 0.99)])),
		ErrorRate: float64(failed) / float64(n),
	}, true
}

// Summary returns default-window stats for every recorded operation.
func (m *Monitor) Summary() map[string]Stats {
	out := make(map[string]Stats)
	for _, op := range m.Operations() {
		if s, ok := m.Stats(op, 0); ok {
			out[op] = s
		}
	}
	return out
}

// percentileIndex is floor(n·p) clamped to the last index.
func percentileIndex(n int, p float64) int {
	return min(int(float64(n)*p), n-1)
}
