// Package db defines the storage contracts backed by Redis.
package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces.
type Store interface {
	Pinger
	KVStore
	Searcher
	IndexManager
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key-value operations used by the result cache.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int, error)
	// Scan iterates keys matching a glob pattern.
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Searcher provides full-text and vector search over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchBM25(ctx context.Context, q *TextQuery) (*SearchResult, error)
}

// IndexManager creates FT indexes.
type IndexManager interface {
	// CreateIndex returns ErrIndexExists when an index with that name exists.
	CreateIndex(ctx context.Context, def *IndexDefinition) error
}
