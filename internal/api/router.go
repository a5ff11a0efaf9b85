// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the router-level knobs.
type RouterConfig struct {
	RateLimitReqs   int
	RateLimitWindow time.Duration
	CORSOrigins     []string
}

// NewRouter assembles the chi router: request-scoped logging context,
// recovery, CORS, per-IP rate limiting, and the versioned API routes.
func NewRouter(cfg RouterConfig, h *Handler) http.Handler {
	if cfg.RateLimitReqs < 1 {
		cfg.RateLimitReqs = 60
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(requestContext)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))

	r.Route("/api/v1", func(r chi.Router) {
		r.With(instrument("/api/v1/recommendations")).
			Post("/recommendations", h.Recommendations)
		r.With(instrument("/api/v1/health")).
			Get("/health", h.Health)
		// Not instrumented: the status recorder would hide the Hijacker
		// the websocket upgrade needs.
		r.Get("/ws", h.WebSocket)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
