package request

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/strategy"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in bytes.
	MaxQueryLength = 4096
	MaxResultsCap  = 500
	// weightEpsilon absorbs float rounding in weight sums such as 0.4+0.6.
	weightEpsilon = 1e-9
)

// Options are the caller-supplied search options. Nil/zero fields take defaults.
type Options struct {
	Strategy          strategy.Strategy
	KeywordWeight     *float64
	VectorWeight      *float64
	RRFConstant       float64
	MinScoreThreshold *float64
	UseCache          *bool
	CacheTTL          time.Duration
	MaxResults        int
}

// Defaults hold the process-wide option defaults (usually from config).
type Defaults struct {
	Strategy          strategy.Strategy
	KeywordWeight     float64
	VectorWeight      float64
	RRFConstant       float64
	MinScoreThreshold float64
	// RRFMinScoreThreshold applies to the rrf strategy, whose scores never exceed 2/(k+1).
	RRFMinScoreThreshold float64
	MaxResults           int
	CacheTTL             time.Duration
}

// DefaultDefaults returns the built-in defaults: weighted 0.4/0.6, k=60, threshold 0.1, 50 results, 5m TTL.
func DefaultDefaults() Defaults {
	return Defaults{
		Strategy:             strategy.Weighted,
		KeywordWeight:        0.4,
		VectorWeight:         0.6,
		RRFConstant:          60,
		MinScoreThreshold:    0.1,
		RRFMinScoreThreshold: 0,
		MaxResults:           50,
		CacheTTL:             5 * time.Minute,
	}
}

// Params is a validated, fully-resolved set of search options.
type Params struct {
	strategy          strategy.Strategy
	keywordWeight     float64
	vectorWeight      float64
	rrfConstant       float64
	minScoreThreshold float64
	useCache          bool
	cacheTTL          time.Duration
	maxResults        int
}

// New resolves opts against d and validates the result.
// Every failure wraps one of the fusion-class sentinels in domain.
func New(opts Options, d Defaults) (Params, error) {
	s := opts.Strategy
	if s == "" {
		s = d.Strategy
	}
	if s == "" {
		s = strategy.Default
	}
	if !s.IsValid() {
		return Params{}, fmt.Errorf("%w: %q", domain.ErrInvalidStrategy, s)
	}

	kw := valueOr(opts.KeywordWeight, d.KeywordWeight)
	vw := valueOr(opts.VectorWeight, d.VectorWeight)
	// rrf ignores weights.
	if s != strategy.RRF {
		if err := validateWeights(kw, vw); err != nil {
			return Params{}, err
		}
	}

	k := opts.RRFConstant
	if k == 0 {
		k = d.RRFConstant
	}
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return Params{}, fmt.Errorf("%w: rrf constant must be positive, got %v", domain.ErrInvalidOptions, k)
	}

	defThreshold := d.MinScoreThreshold
	if s == strategy.RRF {
		defThreshold = d.RRFMinScoreThreshold
	}
	threshold := valueOr(opts.MinScoreThreshold, defThreshold)
	if threshold < 0 || threshold > 1 || math.IsNaN(threshold) {
		return Params{}, fmt.Errorf("%w: min score threshold must be between 0 and 1, got %v",
			domain.ErrInvalidOptions, threshold)
	}

	maxResults := opts.MaxResults
	if maxResults < 0 {
		return Params{}, fmt.Errorf("%w: max results must not be negative", domain.ErrInvalidOptions)
	}
	if maxResults == 0 {
		maxResults = d.MaxResults
	}
	if maxResults <= 0 {
		maxResults = DefaultDefaults().MaxResults
	}
	if maxResults > MaxResultsCap {
		maxResults = MaxResultsCap
	}

	if opts.CacheTTL < 0 {
		return Params{}, fmt.Errorf("%w: cache ttl must not be negative", domain.ErrInvalidOptions)
	}
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = d.CacheTTL
	}

	useCache := true
	if opts.UseCache != nil {
		useCache = *opts.UseCache
	}

	return Params{
		strategy:          s,
		keywordWeight:     kw,
		vectorWeight:      vw,
		rrfConstant:       k,
		minScoreThreshold: threshold,
		useCache:          useCache,
		cacheTTL:          ttl,
		maxResults:        maxResults,
	}, nil
}

// ValidateQuery checks the raw query text.
func ValidateQuery(q string) error {
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("%w: query is required", domain.ErrInvalidOptions)
	}
	if len(q) > MaxQueryLength {
		return fmt.Errorf("%w: query too long (max %d bytes)", domain.ErrInvalidOptions, MaxQueryLength)
	}
	return nil
}

func validateWeights(kw, vw float64) error {
	for _, w := range []float64{kw, vw} {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return fmt.Errorf("%w: weights must be between 0 and 1, got keyword=%v vector=%v",
				domain.ErrInvalidWeights, kw, vw)
		}
	}
	sum := kw + vw
	if sum <= 0 || sum > 1+weightEpsilon {
		return fmt.Errorf("%w: weight sum must be in (0, 1], got %v", domain.ErrInvalidWeights, sum)
	}
	return nil
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Strategy returns the fusion strategy.
func (p Params) Strategy() strategy.Strategy { return p.strategy }

// KeywordWeight returns the lexical weight of the weighted strategy.
func (p Params) KeywordWeight() float64 { return p.keywordWeight }

// VectorWeight returns the semantic weight of the weighted strategy.
func (p Params) VectorWeight() float64 { return p.vectorWeight }

// RRFConstant returns k of the reciprocal rank formula.
func (p Params) RRFConstant() float64 { return p.rrfConstant }

// MinScoreThreshold returns the lowest admissible combined score.
func (p Params) MinScoreThreshold() float64 { return p.minScoreThreshold }

// UseCache reports whether the result cache is consulted and updated.
func (p Params) UseCache() bool { return p.useCache }

// CacheTTL returns the TTL for this request's cache entry (0 = cache default).
func (p Params) CacheTTL() time.Duration { return p.cacheTTL }

// MaxResults returns the result cap.
func (p Params) MaxResults() int { return p.maxResults }
