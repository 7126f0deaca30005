// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streampick/streampick/internal/config"
)

// healthRateLimit is deliberately permissive so monitoring probes are
// never throttled with the data endpoints.
const healthRateLimit = 1000

// NewRouter assembles the full route tree with middleware applied per
// group: health endpoints get a permissive rate limit, data endpoints
// get the configured per-IP budget plus request metrics.
func NewRouter(h *Handler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(RateLimit(healthRateLimit, time.Minute))
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg.RateLimit, cfg.RateLimitWindow))
		r.Use(Metrics)

		r.Get("/streaming-services", h.StreamingServices)

		r.Get("/discover", h.Discover)
		r.Get("/discover/next", h.DiscoverNext)
		r.Post("/discover/preference", h.DiscoverPreference)

		r.Get("/recommendations", h.Recommendations)
		r.Post("/ratings", h.Rate)
		r.Get("/ratings/{contentID}", h.Rating)

		r.Get("/content", h.ContentList)
		r.Get("/content/{contentID}", h.Content)
		r.Get("/search", h.Search)
		r.Get("/trending", h.Trending)

		r.Put("/users/{userID}/services", h.SetUserServices)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
