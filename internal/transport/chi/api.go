package chi

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/request"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/strategy"
)

// ErrorCode is a machine-readable error class.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeInvalidStrategy        ErrorCode = "invalid_strategy"
	ErrorCodeInvalidWeights         ErrorCode = "invalid_weights"
	ErrorCodeInvalidFilter          ErrorCode = "invalid_filter"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeCanceled               ErrorCode = "canceled"
	ErrorCodeInternal               ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /search body.
type SearchRequest struct {
	Query   string         `json:"query"`
	Filters *filter.Filter `json:"filters,omitempty"`
	Options *SearchOptions `json:"options,omitempty"`
}

// SearchOptions mirrors request.Options on the wire. CacheTTL is in milliseconds.
type SearchOptions struct {
	Strategy          string   `json:"strategy,omitempty"`
	KeywordWeight     *float64 `json:"keywordWeight,omitempty"`
	VectorWeight      *float64 `json:"vectorWeight,omitempty"`
	RRFConstant       *float64 `json:"rrfConstant,omitempty"`
	MinScoreThreshold *float64 `json:"minScoreThreshold,omitempty"`
	UseCache          *bool    `json:"useCache,omitempty"`
	CacheTTL          *int64   `json:"cacheTTL,omitempty"`
	MaxResults        *int     `json:"maxResults,omitempty"`
}

// InvalidateResponse is the DELETE /cache/users/{userID} body.
type InvalidateResponse struct {
	UserID  string `json:"userId"`
	Removed int    `json:"removed"`
}

// RecommendationsResponse is the GET /recommendations body.
type RecommendationsResponse struct {
	Recommendations []string `json:"recommendations"`
}

// StatsParams are the query parameters of GET /stats/{operation}.
type StatsParams struct {
	// Window is a Go duration ("15m", "1h") or a number of milliseconds.
	Window *string `form:"window,omitempty" json:"window,omitempty"`
}

func (o *SearchOptions) toDomain() (request.Options, error) {
	var opts request.Options
	if o == nil {
		return opts, nil
	}

	if o.Strategy != "" {
		s, err := strategy.Parse(o.Strategy)
		if err != nil {
			return opts, err //nolint:wrapcheck // already a domain sentinel
		}
		opts.Strategy = s
	}
	opts.KeywordWeight = o.KeywordWeight
	opts.VectorWeight = o.VectorWeight
	if o.RRFConstant != nil {
		if *o.RRFConstant <= 0 {
			return opts, fmt.Errorf("%w: rrfConstant must be positive", domain.ErrInvalidOptions)
		}
		opts.RRFConstant = *o.RRFConstant
	}
	opts.MinScoreThreshold = o.MinScoreThreshold
	opts.UseCache = o.UseCache
	if o.CacheTTL != nil {
		if *o.CacheTTL < 0 {
			return opts, fmt.Errorf("%w: cacheTTL must not be negative", domain.ErrInvalidOptions)
		}
		opts.CacheTTL = time.Duration(*o.CacheTTL) * time.Millisecond
	}
	if o.MaxResults != nil {
		opts.MaxResults = *o.MaxResults
	}
	return opts, nil
}
