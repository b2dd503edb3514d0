package api

import (
	"github.com/gofiber/fiber/v2"

	"threadpost/ai"
	"threadpost/utils"
)

// GenerateHandler relays generation requests to the AI service
type GenerateHandler struct {
	relay *ai.Relay
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(relay *ai.Relay) *GenerateHandler {
	return &GenerateHandler{relay: relay}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// HandleGenerate sends the prompt plus the full thread to the AI service and
// returns the normalized result
func (h *GenerateHandler) HandleGenerate(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationError("Invalid request body", err)
	}
	if req.Prompt == "" {
		return utils.ValidationError("Prompt is required", nil)
	}

	result, err := h.relay.Generate(c.UserContext(), c.Params("id"), req.Prompt)
	if err != nil {
		return err
	}

	return c.JSON(result)
}
