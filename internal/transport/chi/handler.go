package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists every HTTP operation.
type ServerInterface interface {
	// (POST /search)
	Search(w http.ResponseWriter, r *http.Request)
	// (GET /stats)
	GetStatsSummary(w http.ResponseWriter, r *http.Request)
	// (GET /stats/{operation})
	GetOperationStats(w http.ResponseWriter, r *http.Request, operation string, params StatsParams)
	// (GET /stats/{operation}/trend)
	GetOperationTrend(w http.ResponseWriter, r *http.Request, operation string)
	// (GET /recommendations)
	GetRecommendations(w http.ResponseWriter, r *http.Request)
	// (GET /cache/stats)
	GetCacheStats(w http.ResponseWriter, r *http.Request)
	// (DELETE /cache/users/{userID})
	InvalidateUserCache(w http.ResponseWriter, r *http.Request, userID string)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ParamErrorHandler writes the response for a parameter binding failure.
type ParamErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// HandlerOptions configures Handler.
type HandlerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc ParamErrorHandler
}

// Handler mounts si on a chi router.
func Handler(si ServerInterface, opts HandlerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	onErr := opts.ErrorHandlerFunc
	if onErr == nil {
		onErr = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		}
	}
	w := &wrapper{si: si, onErr: onErr}

	r.Post("/search", si.Search)
	r.Get("/stats", si.GetStatsSummary)
	r.Get("/stats/{operation}", w.getOperationStats)
	r.Get("/stats/{operation}/trend", w.getOperationTrend)
	r.Get("/recommendations", si.GetRecommendations)
	r.Get("/cache/stats", si.GetCacheStats)
	r.Delete("/cache/users/{userID}", w.invalidateUserCache)
	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)
	return r
}

// wrapper binds path and query parameters before calling the server.
type wrapper struct {
	si    ServerInterface
	onErr ParamErrorHandler
}

func (h *wrapper) getOperationStats(w http.ResponseWriter, r *http.Request) {
	operation, ok := h.pathParam(w, r, "operation")
	if !ok {
		return
	}

	var params StatsParams
	if err := runtime.BindQueryParameter("form", true, false, "window", r.URL.Query(), &params.Window); err != nil {
		h.onErr(w, r, fmt.Errorf("invalid format for parameter window: %w", err))
		return
	}

	h.si.GetOperationStats(w, r, operation, params)
}

func (h *wrapper) getOperationTrend(w http.ResponseWriter, r *http.Request) {
	operation, ok := h.pathParam(w, r, "operation")
	if !ok {
		return
	}
	h.si.GetOperationTrend(w, r, operation)
}

func (h *wrapper) invalidateUserCache(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathParam(w, r, "userID")
	if !ok {
		return
	}
	h.si.InvalidateUserCache(w, r, userID)
}

func (h *wrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithLocation("simple", false, name,
		runtime.ParamLocationPath, chi.URLParam(r, name), &v)
	if err != nil {
		h.onErr(w, r, fmt.Errorf("invalid format for parameter %s: %w", name, err))
		return "", false
	}
	return v, true
}
