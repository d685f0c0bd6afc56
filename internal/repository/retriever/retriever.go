// Package retriever adapts Redis FT.SEARCH to the lexical and semantic
// retriever contracts of the search coordinator.
package retriever

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/db"
	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/document"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
)

// DefaultTopK bounds each retriever call when neither config nor filter limit it.
const DefaultTopK = 100

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Config selects the index and result size of one retriever.
type Config struct {
	Index string
	// KeyPrefix is trimmed from Redis keys to form document IDs.
	KeyPrefix string
	TopK      int
}

func (c Config) topK(f filter.Filter) int {
	k := c.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	if f.Limit > 0 {
		k = min(k, f.Limit)
	}
	return k
}

// Lexical runs BM25 full-text queries.
type Lexical struct {
	store store
	cfg   Config
}

// NewLexical creates a lexical retriever.
func NewLexical(s store, cfg Config) *Lexical {
	return &Lexical{store: s, cfg: cfg}
}

// Search returns documents ranked by BM25 score (raw, unnormalized).
func (l *Lexical) Search(ctx context.Context, query string, f filter.Filter) ([]document.Document, error) {
	sr, err := l.store.SearchBM25(ctx, &db.TextQuery{
		IndexName: l.cfg.Index,
		Query:     query,
		Filter:    f,
		TopK:      l.cfg.topK(f),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: lexical search %s: %w", domain.ErrRetrieverFailure, l.cfg.Index, err)
	}
	return toDocuments(sr, document.Lexical, l.cfg.KeyPrefix), nil
}

// Semantic embeds queries and runs KNN vector queries.
type Semantic struct {
	store    store
	embedder domain.Embedder
	cfg      Config
}

// NewSemantic creates a semantic retriever.
func NewSemantic(s store, embedder domain.Embedder, cfg Config) *Semantic {
	return &Semantic{store: s, embedder: embedder, cfg: cfg}
}

// Embed turns text into a query vector.
func (s *Semantic) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrieverFailure, err)
	}
	domain.QueryUsageFrom(ctx).Record(res.TotalTokens)
	return res.Embedding, nil
}

// Search returns documents ranked by cosine similarity (raw, unnormalized).
func (s *Semantic) Search(ctx context.Context, vector []float32, f filter.Filter) ([]document.Document, error) {
	sr, err := s.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: s.cfg.Index,
		Filter:    f,
		Vector:    vector,
		K:         s.cfg.topK(f),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: semantic search %s: %w", domain.ErrRetrieverFailure, s.cfg.Index, err)
	}
	return toDocuments(sr, document.Semantic, s.cfg.KeyPrefix), nil
}

// toDocuments converts search hits, keeping backend order.
func toDocuments(sr *db.SearchResult, src document.Source, keyPrefix string) []document.Document {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	docs := make([]document.Document, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := strings.TrimPrefix(e.Key, keyPrefix)
		payload, ts := parseFields(e.Fields)
		if e.HasScore {
			docs = append(docs, document.New(id, src, e.Score, payload, ts))
		} else {
			docs = append(docs, document.NewUnscored(id, src, payload, ts))
		}
	}
	return docs
}

// parseFields turns flat hash fields into a payload. Tags become a list,
// numeric fields become float64, the vector blob is dropped.
func parseFields(fields map[string]string) (map[string]any, time.Time) {
	payload := make(map[string]any, len(fields))
	var ts time.Time

	for k, v := range fields {
		switch k {
		case db.FieldVector:
		case db.FieldContent, db.FieldUserID:
			payload[k] = v
		case db.FieldTags:
			payload[k] = splitTags(v)
		case db.FieldTimestamp:
			if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
				ts = time.UnixMilli(ms)
			}
		default:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				payload[k] = f
			} else {
				payload[k] = v
			}
		}
	}
	return payload, ts
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
