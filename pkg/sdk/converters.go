package vecfuse

import (
	"time"

	"github.com/kailas-cloud/vecfuse/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/vecfuse/internal/usecase/health"
	searchuc "github.com/kailas-cloud/vecfuse/internal/usecase/search"
)

func convertResponse(r *searchuc.Response) *SearchResponse {
	out := &SearchResponse{
		Results:        make([]Result, len(r.Results)),
		Total:          r.Total,
		Query:          r.Query,
		OriginalQuery:  r.OriginalQuery,
		Filters:        r.Filters,
		Strategy:       r.Strategy,
		Duration:       time.Duration(r.Performance.Duration * float64(time.Millisecond)),
		KeywordResults: r.Performance.KeywordResults,
		VectorResults:  r.Performance.VectorResults,
		CacheHit:       r.CacheHit,
		Degraded:       r.Degraded,
	}
	for i := range r.Results {
		out.Results[i] = convertResult(r.Results[i])
	}
	if m := r.DateTimeInfo; m != nil {
		out.DateTime = &DateTimeMatch{Type: string(m.Family), Rule: m.Rule, Text: m.Text}
	}
	return out
}

func convertResult(f result.Fused) Result {
	return Result{
		ID:           f.DocumentID,
		Score:        f.CombinedScore,
		KeywordScore: f.KeywordScore,
		VectorScore:  f.VectorScore,
		KeywordRank:  f.KeywordRank,
		VectorRank:   f.VectorRank,
		Payload:      f.Payload,
		Timestamp:    f.Timestamp,
	}
}

func convertHealth(report healthuc.Report) HealthStatus {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
