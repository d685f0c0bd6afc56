// Package embedding decorates the query embedder with logging and
// performance monitor samples.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/usecase/perf"
)

// Recorder receives embedding timings.
type Recorder interface {
	Record(op string, d time.Duration, meta map[string]any)
	RecordFailure(op string, d time.Duration, meta map[string]any)
}

// InstrumentedEmbedder wraps Embedder with logging and monitor samples.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewInstrumentedEmbedder wraps an embedder. recorder can be nil.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	recorder Recorder, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Embed delegates to the inner embedder and records the call.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := p.now()

	result, err := p.inner.Embed(ctx, text)

	duration := p.now().Sub(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		if p.recorder != nil {
			p.recorder.RecordFailure(perf.OpEmbedding, duration, map[string]any{"model": p.model})
		}
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	if p.recorder != nil {
		p.recorder.Record(perf.OpEmbedding, duration, map[string]any{
			"model":        p.model,
			"total_tokens": result.TotalTokens,
		})
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}
