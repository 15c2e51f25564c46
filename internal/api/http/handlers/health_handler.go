package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/persistence"
)

// HealthHandler responds to health probes and the root informational route.
type HealthHandler struct {
	serviceName string
	environment string
	postgres    *persistence.Postgres
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, environment string, postgres *persistence.Postgres) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, environment: environment, postgres: postgres}
}

// Root handles GET /.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "AI Maintenance Reporter API",
		"status":  "running",
	})
}

// Health handles GET /api/health, reporting database reachability.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	database := "ok"
	status := "healthy"
	if err := h.postgres.Ping(ctx); err != nil {
		database = err.Error()
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":      status,
		"database":    database,
		"environment": h.environment,
	})
}
