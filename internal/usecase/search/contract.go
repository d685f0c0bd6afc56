package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain/search/document"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/usecase/interpret"
)

// Interpreter extracts a structured filter from natural-language query text.
type Interpreter interface {
	Extract(query string) interpret.Extraction
}

// LexicalRetriever runs keyword (BM25) retrieval.
type LexicalRetriever interface {
	Search(ctx context.Context, query string, f filter.Filter) ([]document.Document, error)
}

// SemanticRetriever embeds query text and runs vector retrieval.
type SemanticRetriever interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Search(ctx context.Context, vector []float32, f filter.Filter) ([]document.Document, error)
}

// Cache stores serialized search responses. Implementations are fail-soft.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Monitor receives operation timings.
type Monitor interface {
	Record(op string, d time.Duration, meta map[string]any)
	RecordFailure(op string, d time.Duration, meta map[string]any)
}

// Observer receives best-effort telemetry events. It must not block.
type Observer interface {
	LogEvent(name string, payload map[string]any)
}
