package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStrategy signals an unknown fusion strategy name.
	ErrInvalidStrategy = errors.New("invalid fusion strategy")
	// ErrInvalidWeights signals malformed fusion weights (out of range or bad sum).
	ErrInvalidWeights = errors.New("invalid fusion weights")
	// ErrInvalidOptions signals any other malformed search option.
	ErrInvalidOptions = errors.New("invalid search options")
	// ErrInvalidFilter signals a structurally invalid filter.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrRetrieverFailure signals a failed lexical or semantic retrieval.
	// It never leaves the coordinator: the branch degrades to an empty list.
	ErrRetrieverFailure = errors.New("retriever failure")
	// ErrCacheFailure signals an unavailable cache backend.
	ErrCacheFailure = errors.New("cache failure")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// IsFusionError reports whether err is a caller/configuration error that must
// reject the request instead of degrading it.
func IsFusionError(err error) bool {
	return errors.Is(err, ErrInvalidStrategy) ||
		errors.Is(err, ErrInvalidWeights) ||
		errors.Is(err, ErrInvalidOptions) ||
		errors.Is(err, ErrInvalidFilter)
}
