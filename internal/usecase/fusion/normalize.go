package fusion

import "github.com/kailas-cloud/vecfuse/internal/domain/search/document"

// allEqualScore is assigned when every scored document in a list has the same raw score.
const allEqualScore = 0.5

// Normalize min-max scales one retriever's raw scores into [0,1].
// Documents without a raw score pass through unnormalized and do not
// take part in the min/max computation. Order is preserved.
func Normalize(docs []document.Document) []document.Normalized {
	if len(docs) == 0 {
		return nil
	}

	lo, hi, scored := 0.0, 0.0, false
	for _, d := range docs {
		s, ok := d.RawScore()
		if !ok {
			continue
		}
		if !scored {
			lo, hi, scored = s, s, true
			continue
		}
		lo = min(lo, s)
		hi = max(hi, s)
	}

	out := make([]document.Normalized, len(docs))
	for i, d := range docs {
		s, ok := d.RawScore()
		switch {
		case !ok:
			out[i] = document.PassThrough(d)
		case hi == lo:
			out[i] = document.NewNormalized(d, allEqualScore)
		default:
			out[i] = document.NewNormalized(d, (s-lo)/(hi-lo))
		}
	}
	return out
}
