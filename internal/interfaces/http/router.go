// Package http assembles the public HTTP surface: route tree, middleware
// chain, and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/trovesx/OncoPurpose/internal/interfaces/http/handlers"
	"github.com/trovesx/OncoPurpose/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required to
// construct the complete route tree.  Nil handlers leave their routes
// unmounted, so partial assemblies work in tests.
type RouterConfig struct {
	SearchHandler   *handlers.SearchHandler
	DrugHandler     *handlers.DrugHandler
	StatsHandler    *handlers.StatsHandler
	AuthHandler     *handlers.AuthHandler
	ArtifactHandler *handlers.ArtifactHandler
	HealthHandler   *handlers.HealthHandler

	IdentityMiddleware  *middleware.IdentityMiddleware
	CORSMiddleware      *middleware.CORSMiddleware
	LoggingMiddleware   *middleware.LoggingMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware

	MetricsHandler http.Handler
}

// NewRouter constructs the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORSMiddleware != nil {
		r.Use(cfg.CORSMiddleware.Handler)
	}
	if cfg.IdentityMiddleware != nil {
		r.Use(cfg.IdentityMiddleware.Handler)
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}
	if cfg.RateLimitMiddleware != nil {
		r.Use(cfg.RateLimitMiddleware.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.SearchHandler != nil {
			api.Get("/search", cfg.SearchHandler.Search)
		}
		if cfg.DrugHandler != nil {
			api.Route("/drugs", func(dr chi.Router) {
				dr.Get("/{name}", cfg.DrugHandler.Get)
			})
			api.Get("/mechanisms/{moa}", cfg.DrugHandler.GetByMechanism)
		}
		if cfg.StatsHandler != nil {
			api.Get("/stats", cfg.StatsHandler.Get)
		}
		if cfg.AuthHandler != nil {
			api.Route("/auth", func(ar chi.Router) {
				ar.Post("/token", cfg.AuthHandler.Issue)
				ar.Post("/refresh", cfg.AuthHandler.Refresh)
				ar.Post("/revoke", cfg.AuthHandler.Revoke)
			})
		}
		if cfg.ArtifactHandler != nil {
			api.Route("/artifacts", func(ar chi.Router) {
				ar.Get("/", cfg.ArtifactHandler.List)
				ar.Get("/{artifactID}", cfg.ArtifactHandler.Get)
			})
		}
	})

	return r
}
