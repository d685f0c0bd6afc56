package db

import "github.com/kailas-cloud/vecfuse/internal/domain/search/filter"

// Indexed field names shared by the lexical and vector indexes.
const (
	FieldContent       = "content"
	FieldVector        = "vector"
	FieldUserID        = "user_id"
	FieldTags          = "tags"
	FieldTimestamp     = "timestamp"      // unix milliseconds
	FieldMinuteOfDay   = "minute_of_day"  // 0..1439, local time of the timestamp
	FieldComprehension = "comprehension_score"
)

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       filter.Filter
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 text search.
type TextQuery struct {
	IndexName    string
	Query        string
	Filter       filter.Filter
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// HasScore is false when the backend returned no usable score for the hit.
type SearchEntry struct {
	Key      string
	Score    float64
	HasScore bool
	Fields   map[string]string
}
