package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/database"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

// Pinger is anything with a liveness check, such as the Redis cache
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process and dependency health
type HealthHandler struct {
	store database.Storage
	cache Pinger
}

// NewHealthHandler creates a health handler. cache may be nil.
func NewHealthHandler(store database.Storage, cache Pinger) *HealthHandler {
	return &HealthHandler{store: store, cache: cache}
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Check handles GET /health. The database is required; the cache is
// reported but never fails the check.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	checks := fiber.Map{"database": "ok"}

	if err := h.store.HealthCheck(); err != nil {
		checks["database"] = "unavailable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(response.Response{
			Success: false,
			Message: "Service unavailable",
			Data:    checks,
		})
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = "unavailable"
		} else {
			checks["cache"] = "ok"
		}
	} else {
		checks["cache"] = "disabled"
	}

	return response.Success(c, checks)
}
