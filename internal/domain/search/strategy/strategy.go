package strategy

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/vecfuse/internal/domain"
)

// Strategy is the algorithm used to merge the lexical and semantic rankings.
type Strategy string

// Fusion strategy constants.
const (
	// Weighted sums per-source normalized scores with configurable weights.
	Weighted Strategy = "weighted"
	// RRF is Reciprocal Rank Fusion: sum of 1/(k + rank) over both rankings.
	RRF Strategy = "rrf"
	// Hybrid blends the weighted and RRF rankings 0.7/0.3.
	Hybrid Strategy = "hybrid"
)

// Default is used when the caller does not pick a strategy.
const Default = Weighted

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Weighted || s == RRF || s == Hybrid
}

// Parse resolves a strategy name. Empty input yields Default.
func Parse(name string) (Strategy, error) {
	if name == "" {
		return Default, nil
	}
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidStrategy, name)
	}
	return s, nil
}
