package search

import (
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/result"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/strategy"
	"github.com/kailas-cloud/vecfuse/internal/usecase/interpret"
)

// Response is the search envelope returned to the host application.
type Response struct {
	Results       []result.Fused    `json:"results"`
	Total         int               `json:"total"`
	Query         string            `json:"query"`
	OriginalQuery string            `json:"originalQuery"`
	DateTimeInfo  *interpret.Match  `json:"dateTimeInfo"`
	Filters       filter.Filter     `json:"filters"`
	Strategy      strategy.Strategy `json:"strategy"`
	Performance   Performance       `json:"performance"`
	CacheHit      bool              `json:"cacheHit"`
	// Degraded is set when both retrievers failed and Results is empty for that reason.
	Degraded bool `json:"degraded"`
}

// Performance reports per-request timing and branch sizes.
type Performance struct {
	Duration       float64 `json:"duration"` // ms
	KeywordResults int     `json:"keywordResults"`
	VectorResults  int     `json:"vectorResults"`
}
