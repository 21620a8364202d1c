package handlers

import (
	"encoding/xml"
	"log"

	"github.com/gofiber/fiber/v2"

	"mentorbot/internal/services"
)

// twimlResponse is the messaging provider's XML reply envelope: one
// Message element per outbound unit.
type twimlResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

// WebhookHandler handles inbound chat messages from the messaging provider.
type WebhookHandler struct {
	chat *services.ChatService
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(chat *services.ChatService) *WebhookHandler {
	return &WebhookHandler{chat: chat}
}

// HandleWhatsApp processes one inbound message.
// POST /whatsapp — form fields From (sender id) and Body (message text).
// A generation failure is still a 200 with a single apology Message; only
// persistence failures surface as errors.
func (h *WebhookHandler) HandleWhatsApp(c *fiber.Ctx) error {
	from := c.FormValue("From")
	body := c.FormValue("Body")
	if from == "" || body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "From and Body are required"})
	}

	units, err := h.chat.HandleMessage(c.Context(), from, body)
	if err != nil {
		log.Printf("❌ [WEBHOOK] Failed to handle message from %s: %v", from, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	payload, err := xml.Marshal(twimlResponse{Messages: units})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	c.Set("Content-Type", "application/xml")
	return c.SendString(xml.Header + string(payload))
}
