package vecfuse

import "github.com/kailas-cloud/vecfuse/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidStrategy        = domain.ErrInvalidStrategy
	ErrInvalidWeights         = domain.ErrInvalidWeights
	ErrInvalidOptions         = domain.ErrInvalidOptions
	ErrInvalidFilter          = domain.ErrInvalidFilter
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)

// IsRejected reports whether err rejected the request before any retrieval
// (unknown strategy, bad weights, malformed options or filter).
func IsRejected(err error) bool {
	return domain.IsFusionError(err)
}
