package vecfuse

import (
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/request"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/strategy"
	"github.com/kailas-cloud/vecfuse/internal/repository/cache"
	"github.com/kailas-cloud/vecfuse/internal/usecase/perf"
)

// Strategy selects how the lexical and semantic rankings are merged.
type Strategy = strategy.Strategy

// Strategy constants.
const (
	StrategyWeighted = strategy.Weighted
	StrategyRRF      = strategy.RRF
	StrategyHybrid   = strategy.Hybrid
)

// Filter constrains both retrievers. Dimensions extracted from the query
// text override the caller's value of the same dimension.
type Filter = filter.Filter

// DateRange is an inclusive timestamp window.
type DateRange = filter.DateRange

// TimeRange is a time-of-day window in "HH:MM".
type TimeRange = filter.TimeRange

// ComprehensionScore is a numeric predicate on the comprehension_score field.
type ComprehensionScore = filter.ComprehensionScore

// Comprehension score operators.
const (
	OperatorGTE   = filter.GTE
	OperatorLTE   = filter.LTE
	OperatorEQ    = filter.EQ
	OperatorRange = filter.Range
)

// SearchOptions overrides the client's search defaults per request.
// Zero values fall back to the defaults.
type SearchOptions = request.Options

// Monitored operation names.
const (
	OpHybridSearch  = perf.OpHybridSearch
	OpKeywordSearch = perf.OpKeywordSearch
	OpVectorSearch  = perf.OpVectorSearch
	OpEmbedding     = perf.OpEmbedding
)

// OperationStats aggregates latency samples of one operation (milliseconds).
type OperationStats = perf.Stats

// Trend compares older and newer latency samples of one operation.
type Trend = perf.Trend

// CacheStats is a point-in-time view of the result cache.
type CacheStats = cache.Stats

// Result is one fused search hit.
type Result struct {
	ID           string
	Score        float64
	KeywordScore float64
	VectorScore  float64
	KeywordRank  int // 0 when absent from the lexical ranking
	VectorRank   int // 0 when absent from the semantic ranking
	Payload      map[string]any
	Timestamp    time.Time
}

// DateTimeMatch describes the date/time phrase recognised in the query.
type DateTimeMatch struct {
	Type string // "date", "time" or "comprehension"
	Rule string
	Text string
}

// SearchResponse is the outcome of Client.Search.
type SearchResponse struct {
	Results        []Result
	Total          int
	Query          string // query with the date/time phrase removed
	OriginalQuery  string
	DateTime       *DateTimeMatch
	Filters        Filter // effective filter after merging
	Strategy       Strategy
	Duration       time.Duration
	KeywordResults int
	VectorResults  int
	CacheHit       bool
	Degraded       bool // both retrievers failed
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}
