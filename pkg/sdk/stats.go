package vecfuse

import (
	"context"
	"time"
)

// Stats aggregates latency samples of op recorded within window.
// A zero window uses the monitor default (24h). ok is false without samples.
// Observer always records success: the monitor is in-memory and cannot fail.
func (c *Client) Stats(op string, window time.Duration) (OperationStats, bool) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, nil) }()

	return c.statsSvc.Stats(op, window)
}

// Trend reports whether op's latency is increasing or decreasing.
// ok is false with fewer than two samples.
func (c *Client) Trend(op string) (Trend, bool) {
	return c.statsSvc.Trends(op)
}

// Summary returns default-window stats for every recorded operation.
func (c *Client) Summary() map[string]OperationStats {
	return c.statsSvc.Summary()
}

// Operations lists the recorded operation names.
func (c *Client) Operations() []string {
	return c.statsSvc.Operations()
}

// Recommendations returns human-readable tuning advice derived from the samples.
func (c *Client) Recommendations() []string {
	return c.statsSvc.Recommendations()
}

// CacheStats returns the result cache counters.
func (c *Client) CacheStats(ctx context.Context) CacheStats {
	return c.cacheSvc.Stats(ctx)
}

// InvalidateUser drops every cached result scoped to userID and returns how many were removed.
func (c *Client) InvalidateUser(ctx context.Context, userID string) int {
	start := time.Now()
	defer func() { c.obs.observe("invalidate_user", start, nil) }()

	return c.cacheSvc.InvalidateUser(ctx, userID)
}
