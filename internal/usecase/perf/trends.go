package perf

import "time"

// Trend directions.
const (
	Increasing = "increasing"
	Decreasing = "decreasing"
)

// Trend compares the older and newer halves of the most recent samples.
type Trend struct {
	Operation     string  `json:"operation"`
	Trend         string  `json:"trend"`
	ChangePercent float64 `json:"changePercent"`
	OlderAverage  float64 `json:"olderAvg"`
	NewerAverage  float64 `json:"newerAvg"`
	Samples       int     `json:"samples"`
}

// Trends classifies the latency direction of op. ok is false with fewer than two samples.
func (m *Monitor) Trends(op string) (Trend, bool) {
	samples := m.recent(op, m.trendWindow)
	if len(samples) < 2 {
		return Trend{}, false
	}

	half := len(samples) / 2
	older := average(samples[:half])
	newer := average(samples[half:])

	t := Trend{
		Operation:    op,
		Trend:        Decreasing,
		OlderAverage: round2(millis(older)),
		NewerAverage: round2(millis(newer)),
		Samples:      len(samples),
	}
	if newer > older {
		t.Trend = Increasing
	}
	if older > 0 {
		t.ChangePercent = round2(float64(newer-older) / float64(older) * 100)
	}
	return t, true
}

func average(samples []Sample) time.Duration {
	var total time.Duration
	for _, s := range samples {
		total += s.Duration
	}
	return total / time.Duration(len(samples))
}
