package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/api/http/handlers"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	UploadDir      string
	StaticDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Health)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Put("/:id/status", auth.RequireAdmin(), cfg.Tickets.UpdateStatus)
	tickets.Delete("/:id", auth.RequireAdmin(), cfg.Tickets.Delete)

	// Pass-through file serving for uploaded images and static assets.
	if cfg.UploadDir != "" {
		app.Static("/uploads", cfg.UploadDir)
	}
	if cfg.StaticDir != "" {
		app.Static("/static", cfg.StaticDir)
	}
}
