package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes registers all HTTP routes
func registerRoutes(app *fiber.App, deps *Dependencies) {
	h := deps.Handlers

	// Health check and metrics routes (no auth required)
	h.Health.RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public API routes (API key auth)
	public := app.Group("/api/public")
	public.Use(deps.AuthMiddleware.RequireAPIKey())

	h.Ingestion.RegisterRoutes(public)
	if h.Analytics != nil {
		h.Analytics.RegisterRoutes(public)
	} else {
		deps.Logger.Warn("analytics queries are disabled for the memory storage backend")
	}
}
