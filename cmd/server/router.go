package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phrazzld/scaffold-api/internal/api"
	apiMiddleware "github.com/phrazzld/scaffold-api/internal/api/middleware"
)

// setupRouter creates the HTTP router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewRequestLogger(app.logger))
	r.Use(middleware.Recoverer)

	rpcHandler := api.NewRPCHandler(app.router, app.logger)
	r.Route("/api/rpc", rpcHandler.Routes)

	// A nil *postgres.DB must not become a non-nil Pinger.
	var db api.Pinger
	if app.db != nil {
		db = app.db
	}
	r.Method(http.MethodGet, "/health", api.NewHealthHandler(db, app.logger))

	if app.config.Metrics.Enabled {
		r.Method(http.MethodGet, app.config.Metrics.Path,
			promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry}))
	}

	return r
}
