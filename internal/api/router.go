// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/musehub-io/musehub/internal/config"
)

// NewRouter wires the full route tree with the global middleware stack.
func NewRouter(handler *Handler, cfg config.APIConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(securityHeaders)
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg))
		r.Use(securityHeaders)
		r.Use(prometheusMetrics)

		r.Route("/recommendations/user/{userID}", func(r chi.Router) {
			r.Get("/", handler.GetRecommendations)
			r.Get("/impressions", handler.GetImpressions)
			r.Post("/impressions/{contentID}/click", handler.MarkImpressionClicked)
		})

		r.Get("/content/popular", handler.GetPopularContent)
		r.Get("/tags/trending", handler.GetTrendingTags)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
