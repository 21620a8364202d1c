package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"mentorbot/internal/database"
	"mentorbot/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db    *database.DB
	redis *services.RedisCache // nil when running without Redis
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, redis *services.RedisCache) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	status := "healthy"

	dbStatus := "ok"
	if err := h.db.PingContext(c.Context()); err != nil {
		dbStatus = err.Error()
		status = "degraded"
	}

	cacheStatus := "in-memory"
	if h.redis != nil {
		cacheStatus = "ok"
		if err := h.redis.Ping(c.Context()); err != nil {
			cacheStatus = err.Error()
			status = "degraded"
		}
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"database":  dbStatus,
		"cache":     cacheStatus,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
