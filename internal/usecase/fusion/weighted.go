package fusion

import "github.com/kailas-cloud/vecfuse/internal/domain/search/result"

// weighted is keywordWeight·keywordScore + vectorWeight·vectorScore.
// A side the document is absent from contributes 0.
func weighted(e *result.Fused, opts Options) float64 {
	return opts.KeywordWeight*e.KeywordScore + opts.VectorWeight*e.VectorScore
}
