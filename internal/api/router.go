// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/civic-mind/civicmesh/internal/config"
	"github.com/civic-mind/civicmesh/internal/middleware"
)

// Router wires handlers into a Chi route tree.
type Router struct {
	handler *Handler
	config  *config.Config
}

// NewRouter creates a router for the given handler set.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, config: cfg}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.config.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		// Health is exempt from the general rate limit so monitors can
		// poll freely; it gets a permissive limit of its own.
		r.With(httprate.LimitByIP(1000, router.config.Server.RateLimitWindow)).
			Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			if router.config.Server.RateLimitReqs > 0 {
				r.Use(httprate.LimitByIP(router.config.Server.RateLimitReqs, router.config.Server.RateLimitWindow))
			}

			r.Post("/intelligence/process", router.handler.ProcessIntelligence)
			r.Get("/realtime/stats", router.handler.RealtimeStats)
			r.Get("/ws", router.handler.WebSocket)
		})
	})

	// Observability
	r.Handle("/metrics", promhttp.Handler())

	return r
}
