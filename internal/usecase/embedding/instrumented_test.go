package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/usecase/perf"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

type plainEmbedder struct{}

func (plainEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, nil
}

type mockRecorder struct {
	ops      []string
	failures int
}

func (m *mockRecorder) Record(op string, _ time.Duration, _ map[string]any) {
	m.ops = append(m.ops, op)
}

func (m *mockRecorder) RecordFailure(op string, _ time.Duration, _ map[string]any) {
	m.ops = append(m.ops, op)
	m.failures++
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 4,
	}}
	rec := &mockRecorder{}
	p := NewInstrumentedEmbedder(inner, "openai", "test-model", rec, zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(result.Embedding))
	}
	if len(rec.ops) != 1 || rec.ops[0] != perf.OpEmbedding || rec.failures != 0 {
		t.Errorf("unexpected samples %v (failures %d)", rec.ops, rec.failures)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	rec := &mockRecorder{}
	p := NewInstrumentedEmbedder(inner, "openai", "test-model", rec, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if rec.failures != 1 {
		t.Errorf("expected failure sample, got %d", rec.failures)
	}
}

func TestInstrumentedEmbedder_NilRecorder(t *testing.T) {
	p := NewInstrumentedEmbedder(&mockEmbedder{}, "openai", "m", nil, zap.NewNop())
	if _, err := p.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	down := errors.New("down")
	p := NewInstrumentedEmbedder(&mockEmbedder{healthErr: down}, "openai", "m", nil, zap.NewNop())
	if err := p.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected delegated error, got %v", err)
	}

	p = NewInstrumentedEmbedder(plainEmbedder{}, "openai", "m", nil, zap.NewNop())
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check must report healthy, got %v", err)
	}
}
