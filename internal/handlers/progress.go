package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"mentorbot/internal/services"
)

// ProgressHandler exposes point queries on learning progress.
type ProgressHandler struct {
	progress *services.ProgressService
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// Get returns the progress record for one (user, concept).
// GET /api/progress/:userID/:concept
func (h *ProgressHandler) Get(c *fiber.Ctx) error {
	userID := c.Params("userID")
	concept := strings.ToLower(c.Params("concept"))

	record, err := h.progress.Get(c.Context(), userID, concept)
	if err != nil {
		log.Printf("❌ [PROGRESS] Lookup failed for %s/%s: %v", userID, concept, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no progress recorded"})
	}
	return c.JSON(record)
}
