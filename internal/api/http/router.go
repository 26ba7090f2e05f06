package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/helpdesk-intel/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Intelligence *handlers.IntelligenceHandler
	Jobs         *handlers.JobsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	tickets := api.Group("/tickets")
	tickets.Post("/check-duplicates", cfg.Intelligence.CheckDuplicates)
	tickets.Post("/similar-groups", cfg.Intelligence.SimilarGroups)
	tickets.Post("/:id/assign", cfg.Intelligence.Assign)
	tickets.Post("/:id/reassign", cfg.Intelligence.Reassign)

	technicians := api.Group("/technicians")
	technicians.Get("/suggest", cfg.Intelligence.SuggestTechnician)
	technicians.Get("/top", cfg.Intelligence.TopTechnicians)

	api.Get("/estimates", cfg.Intelligence.Estimates)

	api.Post("/jobs/:name/run", cfg.Jobs.RunOnce)
}
