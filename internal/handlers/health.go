package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/shopdb/internal/config"
	"github.com/localnerve/shopdb/internal/services"
	"gorm.io/gorm"
)

// HealthHandler handles liveness and health routes
type HealthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// Root handles GET /
// @Summary Liveness
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "API is running"})
}

// Health handles GET /health
// @Summary Dependency health
// @Description Pings the database and, when configured, the authorizer
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Cfg, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
