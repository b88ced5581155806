// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spherical-ai/profile-assistant/cmd/assistant-api/handlers"
	"github.com/spherical-ai/profile-assistant/cmd/assistant-api/middleware"
	"github.com/spherical-ai/profile-assistant/internal/app"
	"github.com/spherical-ai/profile-assistant/internal/config"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(a *app.App, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Trace)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	knowledgeHandler := handlers.NewKnowledgeHandler(a.Logger, a.Store)
	assistantHandler := handlers.NewAssistantHandler(a.Logger, a.Resolver, a.Fit, a.Projects)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","service":"profile-assistant"}`))
	})
	r.Get("/ready", knowledgeHandler.Ready)

	if cfg.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Server.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
				QPS:   cfg.Server.RateLimit.QPS,
				Burst: cfg.Server.RateLimit.Burst,
			}, a.Logger)
			r.Use(limiter.Middleware)
		}

		r.Post("/answer", assistantHandler.Answer)
		r.Post("/fit", assistantHandler.Fit)
		r.Get("/projects", assistantHandler.Projects)
		r.Get("/messages", assistantHandler.Messages)
		r.Get("/knowledge/stats", knowledgeHandler.Stats)
		r.Get("/debug/routing", assistantHandler.Routing)
	})

	return r
}
