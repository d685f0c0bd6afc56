// Package chi is the HTTP surface of the search engine.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecfuse/internal/domain"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/filter"
	"github.com/kailas-cloud/vecfuse/internal/domain/search/request"
	"github.com/kailas-cloud/vecfuse/internal/logger"
	"github.com/kailas-cloud/vecfuse/internal/repository/cache"
	healthuc "github.com/kailas-cloud/vecfuse/internal/usecase/health"
	"github.com/kailas-cloud/vecfuse/internal/usecase/perf"
	searchuc "github.com/kailas-cloud/vecfuse/internal/usecase/search"
)

// Searcher runs hybrid searches.
type Searcher interface {
	Search(ctx context.Context, query string, f filter.Filter, opts request.Options) (*searchuc.Response, error)
}

// StatsReader exposes performance monitor reports.
type StatsReader interface {
	Stats(op string, window time.Duration) (perf.Stats, bool)
	Trends(op string) (perf.Trend, bool)
	Summary() map[string]perf.Stats
	Recommendations() []string
}

// CacheAdmin exposes result cache administration.
type CacheAdmin interface {
	Stats(ctx context.Context) cache.Stats
	InvalidateUser(ctx context.Context, userID string) int
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements ServerInterface.
type Server struct {
	search        Searcher
	monitor       StatsReader
	cache         CacheAdmin
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	monitor StatsReader,
	cacheAdmin CacheAdmin,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		monitor: monitor,
		cache:   cacheAdmin,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidStrategy, http.StatusBadRequest, ErrorCodeInvalidStrategy),
		sentinelHandler(domain.ErrInvalidWeights, http.StatusBadRequest, ErrorCodeInvalidWeights),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, ErrorCodeInvalidFilter),
		sentinelHandler(domain.ErrInvalidOptions, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(context.Canceled, 499, ErrorCodeCanceled),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCodeCanceled),
	}
	return s
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	opts, err := req.Options.toDomain()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var f filter.Filter
	if req.Filters != nil {
		f = *req.Filters
	}

	ctx, usage := domain.WithQueryUsage(logger.With(r.Context(), zap.String("user_id", f.UserID)))
	resp, err := s.search.Search(ctx, req.Query, f, opts)
	if err != nil {
		s.handleDomainError(w, r.WithContext(ctx), err)
		return
	}

	w.Header().Set("X-Cache", cacheHeader(resp.CacheHit))
	if usage.Embedded() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.Tokens()))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOperationStats handles GET /stats/{operation}.
func (s *Server) GetOperationStats(w http.ResponseWriter, r *http.Request, operation string, params StatsParams) {
	var window time.Duration
	if params.Window != nil {
		d, err := parseWindow(*params.Window)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
			return
		}
		window = d
	}

	stats, ok := s.monitor.Stats(operation, window)
	if !ok {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "no samples for operation "+strconv.Quote(operation))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetOperationTrend handles GET /stats/{operation}/trend.
func (s *Server) GetOperationTrend(w http.ResponseWriter, _ *http.Request, operation string) {
	trend, ok := s.monitor.Trends(operation)
	if !ok {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "not enough samples for operation "+strconv.Quote(operation))
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// GetStatsSummary handles GET /stats.
func (s *Server) GetStatsSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Summary())
}

// GetRecommendations handles GET /recommendations.
func (s *Server) GetRecommendations(w http.ResponseWriter, _ *http.Request) {
	recs := s.monitor.Recommendations()
	if recs == nil {
		recs = []string{}
	}
	writeJSON(w, http.StatusOK, RecommendationsResponse{Recommendations: recs})
}

// GetCacheStats handles GET /cache/stats.
func (s *Server) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats(r.Context()))
}

// InvalidateUserCache handles DELETE /cache/users/{userID}.
func (s *Server) InvalidateUserCache(w http.ResponseWriter, r *http.Request, userID string) {
	removed := s.cache.InvalidateUser(r.Context(), userID)
	logger.FromContext(r.Context()).Info("user cache invalidated",
		zap.String("user_id", userID), zap.Int("removed", removed))
	writeJSON(w, http.StatusOK, InvalidateResponse{UserID: userID, Removed: removed})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}

	logger.FromContext(r.Context()).Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees the full message: every sentinel here is a caller error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

// parseWindow accepts a Go duration or a plain millisecond count.
func parseWindow(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("window must be positive, got %d", ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: want a duration like 15m or milliseconds", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("window must be positive, got %s", s)
	}
	return d, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
