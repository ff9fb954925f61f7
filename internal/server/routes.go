package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phylograph/treedag/pkg/observability"
	"github.com/phylograph/treedag/pkg/pipeline"
)

// NewRouter builds the API router. Exposed separately from Server so tests
// can drive it with httptest.
func NewRouter(runner *pipeline.Runner, logger *log.Logger) http.Handler {
	h := &handlers{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/schedule", h.schedule)
		r.Post("/graph", h.graph)
		r.Post("/render", h.render)
	})

	return r
}

// requestLogger logs each request and feeds the HTTP observability hooks.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			observability.HTTP().OnRequest(req.Context(), req.Method, req.URL.Path)

			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)

			duration := time.Since(start)
			observability.HTTP().OnResponse(req.Context(), req.Method, req.URL.Path, ww.Status(), duration)
			logger.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", duration,
				"request_id", middleware.GetReqID(req.Context()))
		})
	}
}
