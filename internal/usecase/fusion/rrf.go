package fusion

import "github.com/kailas-cloud/vecfuse/internal/domain/search/result"

// DefaultRRFConstant is the Reciprocal Rank Fusion constant (Cormack et al. 2009).
const DefaultRRFConstant = 60

// rrf is the sum of 1/(k + rank) over every list the document appears in.
// Ranks are 1-based, so a top hit in both lists scores 2/(k+1).
func rrf(e *result.Fused, k float64) float64 {
	var s float64
	if e.KeywordRank > 0 {
		s += 1 / (k + float64(e.KeywordRank))
	}
	if e.VectorRank > 0 {
		s += 1 / (k + float64(e.VectorRank))
	}
	return s
}
