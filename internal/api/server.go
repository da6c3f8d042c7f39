// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/solara-app/solara/internal/account"
	"github.com/solara-app/solara/internal/auth"
	"github.com/solara-app/solara/internal/pages"
	"github.com/solara-app/solara/internal/platform/config"
	"github.com/solara-app/solara/internal/platform/constants"
	"github.com/solara-app/solara/internal/platform/metrics"
	"github.com/solara-app/solara/internal/platform/middleware"
	"github.com/solara-app/solara/internal/platform/sec"
	"github.com/solara-app/solara/internal/secevent"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here; no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler. Always returns 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. Returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the authentication lifecycle (signup, login, recovery).
	Auth *auth.Handler

	// Account handles profile and device-session management.
	Account *account.Handler

	// SecurityEvents exposes the read-only admin view of the event log.
	SecurityEvents *secevent.Handler

	// Pages serves the guarded HTML page routes.
	Pages *pages.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, securityLog *secevent.Log, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context, securityLog))
	r.Use(middleware.PanicRecovery(log, securityLog))
	r.Use(middleware.Authenticate(verifier, securityLog))
	r.Use(middleware.CORS(cfg, cfg.ExtraOriginList()))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())

		// Profile and session management requires an authenticated caller.
		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth())
			protected.Mount("/", h.Account.Routes())
		})

		// The security event log is admin-only.
		api.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRole(sec.RoleAdmin))
			admin.Mount("/security", h.SecurityEvents.Routes())
		})
	})

	// # Page Routes
	// Browser navigation, gated by the route guard.
	r.Group(func(site chi.Router) {
		site.Use(middleware.PageGuard())
		site.Mount("/", h.Pages.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
