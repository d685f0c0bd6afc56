// Package fusion normalizes retriever scores and merges two ranked lists into one.
package fusion

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/document"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/request"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/result"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/strategy"
)

// Hybrid blend of the weighted and RRF scores.
const (
	HybridWeightedShare = 0.7
	HybridRRFShare      = 0.3
)

const weightEpsilon = 1e-9

// Options parameterize a single fusion.
type Options struct {
	KeywordWeight     float64
	VectorWeight      float64
	RRFConstant       float64
	MinScoreThreshold float64
	// MaxResults caps the output; 0 means unlimited.
	MaxResults int
}

// OptionsFrom copies validated request parameters.
func OptionsFrom(p request.Params) Options {
	return Options{
		KeywordWeight:     p.KeywordWeight(),
		VectorWeight:      p.VectorWeight(),
		RRFConstant:       p.RRFConstant(),
		MinScoreThreshold: p.MinScoreThreshold(),
		MaxResults:        p.MaxResults(),
	}
}

func (o Options) validate(s strategy.Strategy) error {
	if !s.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStrategy, s)
	}
	if s != strategy.RRF {
		kw, vw := o.KeywordWeight, o.VectorWeight
		if kw < 0 || kw > 1 || vw < 0 || vw > 1 || math.IsNaN(kw) || math.IsNaN(vw) {
			return fmt.Errorf("%w: weights must be in [0,1]", domain.ErrInvalidWeights)
		}
		if sum := kw + vw; sum <= 0 || sum > 1+weightEpsilon {
			return fmt.Errorf("%w: weight sum %g must be in (0,1]", domain.ErrInvalidWeights, sum)
		}
	}
	if s != strategy.Weighted && !(o.RRFConstant > 0) {
		return fmt.Errorf("%w: rrf constant must be positive", domain.ErrInvalidOptions)
	}
	if o.MinScoreThreshold < 0 || o.MinScoreThreshold > 1 || math.IsNaN(o.MinScoreThreshold) {
		return fmt.Errorf("%w: min score threshold must be in [0,1]", domain.ErrInvalidOptions)
	}
	if o.MaxResults < 0 {
		return fmt.Errorf("%w: max results must not be negative", domain.ErrInvalidOptions)
	}
	return nil
}

// Fuse merges the lexical and semantic lists with the given strategy, drops
// entries scoring below the threshold and caps the output at MaxResults.
// Output is sorted by combined score descending; ties keep first-appearance
// order (lexical list first, then semantic).
func Fuse(lexical, semantic []document.Normalized, s strategy.Strategy, opts Options) ([]result.Fused, error) {
	if err := opts.validate(s); err != nil {
		return nil, err
	}

	entries := merge(lexical, semantic)
	for _, e := range entries {
		switch s {
		case strategy.Weighted:
			e.CombinedScore = weighted(e, opts)
		case strategy.RRF:
			e.CombinedScore = rrf(e, opts.RRFConstant)
		case strategy.Hybrid:
			e.WeightedScore = weighted(e, opts)
			e.RRFScore = rrf(e, opts.RRFConstant)
			e.CombinedScore = HybridWeightedShare*e.WeightedScore + HybridRRFShare*e.RRFScore
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CombinedScore > entries[j].CombinedScore
	})

	out := make([]result.Fused, 0, len(entries))
	for _, e := range entries {
		if e.CombinedScore < opts.MinScoreThreshold {
			continue
		}
		out = append(out, *e)
		if opts.MaxResults > 0 && len(out) == opts.MaxResults {
			break
		}
	}
	return out, nil
}

// merge unions both lists by document ID in first-appearance order.
// A document repeated within one list keeps its first (best) rank.
func merge(lexical, semantic []document.Normalized) []*result.Fused {
	byID := make(map[string]*result.Fused, len(lexical)+len(semantic))
	entries := make([]*result.Fused, 0, len(lexical)+len(semantic))

	get := func(d document.Normalized) *result.Fused {
		if e, ok := byID[d.ID()]; ok {
			return e
		}
		e := &result.Fused{DocumentID: d.ID(), Payload: d.Payload(), Timestamp: d.Timestamp()}
		byID[d.ID()] = e
		entries = append(entries, e)
		return e
	}

	for i, d := range lexical {
		e := get(d)
		if e.KeywordRank == 0 {
			e.KeywordRank = i + 1
			e.KeywordScore = d.Score()
		}
	}
	for i, d := range semantic {
		e := get(d)
		if e.VectorRank == 0 {
			e.VectorRank = i + 1
			e.VectorScore = d.Score()
			if e.Payload == nil {
				e.Payload = d.Payload()
			}
			if e.Timestamp.IsZero() {
				e.Timestamp = d.Timestamp()
			}
		}
	}
	return entries
}
