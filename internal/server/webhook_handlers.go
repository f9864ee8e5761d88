package server

import (
	"encoding/json"

	"habitnavi/internal/line"
	"habitnavi/internal/middleware"
	"habitnavi/internal/models"
	"habitnavi/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// HandleWebhook receives one delivery from the messaging platform. The
// contract with the platform: reject only requests that are malformed or
// fail authentication; once the envelope is accepted, always acknowledge
// with 200 no matter how individual events fared, otherwise the platform
// keeps redelivering events we already processed.
func (s *Server) HandleWebhook(c *fiber.Ctx) error {
	signature := c.Get(line.SignatureHeader)
	if signature == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing signature header"))
	}

	// The digest covers the raw body bytes; parse only after verification.
	body := c.Body()
	if !line.ValidateSignature(s.config.LineChannelSecret, signature, body) {
		observability.SignatureRejections.Inc()
		middleware.Logger.WarnContext(c.UserContext(), "webhook signature rejected", "ip", c.IP())
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid signature"))
	}

	var req line.CallbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Malformed webhook payload"))
	}

	if errs := s.dispatcher.HandleEvents(c.UserContext(), req.Events); len(errs) > 0 {
		middleware.Logger.WarnContext(c.UserContext(), "webhook processed with failures",
			"events", len(req.Events), "failed", len(errs))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
		"events": len(req.Events),
	})
}

// WebhookStatus answers manual GET probes against the webhook URL.
func (s *Server) WebhookStatus(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "active",
		"bot":    "健康ナビ",
	})
}
