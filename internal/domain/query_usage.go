package domain

import (
	"context"
	"sync/atomic"
)

type queryUsageKey struct{}

// QueryUsage accumulates the embedding cost of one search request.
// Branches may record from their own goroutines; readers look at it after Search returns.
type QueryUsage struct {
	tokens atomic.Int64
	calls  atomic.Int32
}

// WithQueryUsage attaches a fresh collector to ctx.
func WithQueryUsage(ctx context.Context) (context.Context, *QueryUsage) {
	u := new(QueryUsage)
	return context.WithValue(ctx, queryUsageKey{}, u), u
}

// QueryUsageFrom returns the collector carried by ctx, or nil.
func QueryUsageFrom(ctx context.Context) *QueryUsage {
	u, _ := ctx.Value(queryUsageKey{}).(*QueryUsage)
	return u
}

// Record counts one embedding call. A cached embedding records zero tokens.
func (u *QueryUsage) Record(tokens int) {
	if u == nil {
		return
	}
	u.calls.Add(1)
	u.tokens.Add(int64(tokens))
}

// Tokens is the total billed by the provider.
func (u *QueryUsage) Tokens() int {
	if u == nil {
		return 0
	}
	return int(u.tokens.Load())
}

// Embedded reports whether the semantic branch asked for a query vector.
func (u *QueryUsage) Embedded() bool {
	return u != nil && u.calls.Load() > 0
}
