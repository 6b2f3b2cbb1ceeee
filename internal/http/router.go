package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"voice-minutes-service/internal/app"
	"voice-minutes-service/internal/observability"
	"voice-minutes-service/internal/observability/metrics"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	h := newHandlers(application)
	observe := func(operation string) func(http.Handler) http.Handler {
		return observability.HTTPMiddleware(metrics.DefaultMetrics, operation)
	}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if !application.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/v1/sessions", func(r chi.Router) {
		r.With(observe("create_session")).Post("/", h.createSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.With(observe("append_utterance")).Post("/utterances", h.appendUtterance)
			r.With(observe("get_status")).Get("/status", h.status)
			r.With(observe("stop_session")).Post("/stop", h.stop)
			r.With(observe("get_minutes")).Get("/minutes", h.minutes)
			r.With(observe("get_minutes_text")).Get("/minutes.txt", h.minutesText)
			r.Get("/live", h.live)
		})
	})

	return r
}
