package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/session-service/internal/api/http/handlers"
	"github.com/spec-kit/session-service/internal/api/operations"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Sessions *handlers.SessionHandler
	Core     operations.SessionManager
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", RequireAdmin(cfg.Core), cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/admin/login", cfg.Sessions.AdminLogin)
	authGroup.Post("/admin/verify", cfg.Sessions.VerifyAdminToken)
	authGroup.Post("/users/login", cfg.Sessions.UserLogin)
	authGroup.Post("/tokens/verify", cfg.Sessions.VerifyToken)
	authGroup.Post("/tokens/refresh", cfg.Sessions.RefreshToken)
}
