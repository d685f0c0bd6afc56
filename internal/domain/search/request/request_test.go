package request

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/strategy"
)

func f64(v float64) *float64 { return &v }

func TestNew_Defaults(t *testing.T) {
	p, err := New(Options{}, DefaultDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Strategy() != strategy.Weighted {
		t.Errorf("Strategy() = %q, want weighted", p.Strategy())
	}
	if p.KeywordWeight() != 0.4 || p.VectorWeight() != 0.6 {
		t.Errorf("weights = %v/%v, want 0.4/0.6", p.KeywordWeight(), p.VectorWeight())
	}
	if p.RRFConstant() != 60 {
		t.Errorf("RRFConstant() = %v", p.RRFConstant())
	}
	if p.MinScoreThreshold() != 0.1 {
		t.Errorf("MinScoreThreshold() = %v", p.MinScoreThreshold())
	}
	if !p.UseCache() {
		t.Error("UseCache() = false, want true by default")
	}
	if p.CacheTTL() != 5*time.Minute {
		t.Errorf("CacheTTL() = %v", p.CacheTTL())
	}
	if p.MaxResults() != 50 {
		t.Errorf("MaxResults() = %d", p.MaxResults())
	}
}

func TestNew_RRFThresholdDefault(t *testing.T) {
	p, err := New(Options{Strategy: strategy.RRF}, DefaultDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MinScoreThreshold() != 0 {
		t.Errorf("rrf default threshold = %v, want 0", p.MinScoreThreshold())
	}

	p, err = New(Options{Strategy: strategy.RRF, MinScoreThreshold: f64(0.02)}, DefaultDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MinScoreThreshold() != 0.02 {
		t.Errorf("explicit threshold ignored: %v", p.MinScoreThreshold())
	}
}

func TestNew_ExplicitValues(t *testing.T) {
	off := false
	p, err := New(Options{
		Strategy:          strategy.Hybrid,
		KeywordWeight:     f64(0.5),
		VectorWeight:      f64(0.5),
		RRFConstant:       10,
		MinScoreThreshold: f64(0),
		UseCache:          &off,
		CacheTTL:          time.Second,
		MaxResults:        5000,
	}, DefaultDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Strategy() != strategy.Hybrid || p.RRFConstant() != 10 || p.MinScoreThreshold() != 0 {
		t.Errorf("explicit values not applied: %+v", p)
	}
	if p.UseCache() {
		t.Error("UseCache() = true, want false")
	}
	if p.CacheTTL() != time.Second {
		t.Errorf("CacheTTL() = %v", p.CacheTTL())
	}
	if p.MaxResults() != MaxResultsCap {
		t.Errorf("MaxResults() = %d, want clamp to %d", p.MaxResults(), MaxResultsCap)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"strategy", Options{Strategy: "borda"}, domain.ErrInvalidStrategy},
		{"negative weight", Options{KeywordWeight: f64(-0.1)}, domain.ErrInvalidWeights},
		{"weight above one", Options{VectorWeight: f64(1.5)}, domain.ErrInvalidWeights},
		{"sum above one", Options{KeywordWeight: f64(0.7), VectorWeight: f64(0.7)}, domain.ErrInvalidWeights},
		{"zero sum", Options{KeywordWeight: f64(0), VectorWeight: f64(0)}, domain.ErrInvalidWeights},
		{"negative k", Options{RRFConstant: -1}, domain.ErrInvalidOptions},
		{"threshold", Options{MinScoreThreshold: f64(1.2)}, domain.ErrInvalidOptions},
		{"max results", Options{MaxResults: -3}, domain.ErrInvalidOptions},
		{"ttl", Options{CacheTTL: -time.Second}, domain.ErrInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts, DefaultDefaults())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNew_WeightsCheckedOnlyWhenUsed(t *testing.T) {
	heavy := Options{KeywordWeight: f64(0.9), VectorWeight: f64(0.9)}

	heavy.Strategy = strategy.RRF
	if _, err := New(heavy, DefaultDefaults()); err != nil {
		t.Fatalf("rrf with unused weights: %v", err)
	}
	for _, s := range []strategy.Strategy{strategy.Weighted, strategy.Hybrid} {
		heavy.Strategy = s
		if _, err := New(heavy, DefaultDefaults()); !errors.Is(err, domain.ErrInvalidWeights) {
			t.Errorf("%s: expected ErrInvalidWeights, got %v", s, err)
		}
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery("오늘 회의"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateQuery("   "); !errors.Is(err, domain.ErrInvalidOptions) {
		t.Errorf("blank query: got %v", err)
	}
	if err := ValidateQuery(strings.Repeat("a", MaxQueryLength+1)); err == nil {
		t.Error("expected error for long query")
	}
}
