// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/carmatch/internal/middleware"
)

// NewRouter wires the handlers into a chi router.
//
// Route layout:
//
//	GET    /metrics
//	GET    /api/v1/health
//	POST   /api/v1/recommendations
//	GET    /api/v1/vehicles/{id}
//	POST   /api/v1/vehicles/compare
//	GET    /api/v1/safety
//	POST   /api/v1/sessions
//	GET    /api/v1/sessions/{id}/history
//	POST   /api/v1/sessions/{id}/messages
//	DELETE /api/v1/sessions/{id}
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(h.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		// Health stays outside the rate limiter for probes.
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(chimiddleware.Compress(5, "application/json"))

			r.Post("/recommendations", h.Recommendations)
			r.Get("/safety", h.Safety)

			r.Route("/vehicles", func(r chi.Router) {
				r.Post("/compare", h.Compare)
				r.Get("/{id}", h.Vehicle)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", h.CreateSession)
				r.Delete("/{id}", h.DeleteSession)
				r.Get("/{id}/history", h.SessionHistory)
				r.Post("/{id}/messages", h.AppendSessionMessage)
			})
		})
	})

	return r
}
