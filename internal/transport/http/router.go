package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zkvault/internal/platform/metrics"
	"zkvault/internal/platform/middleware"
	"zkvault/pkg/platform/httputil"
)

// RouteRegistrar is implemented by every domain handler.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// NewRouter applies the shared middleware chain and mounts every handler.
// /metrics and /healthz sit outside the JSON content-type check.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, handlers ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.LatencyMiddleware(m))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		for _, h := range handlers {
			h.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "not_found"})
	})
	return r
}
