package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/BerkantGC/hotel-booking-api/internal/api/dto"
	"github.com/BerkantGC/hotel-booking-api/internal/service"
)

const internalSecretHeader = "X-Internal-Secret"

// NotifyHandler exposes the trusted dispatch ingress for sibling services.
type NotifyHandler struct {
	dispatch *service.DispatchService
}

// NewNotifyHandler constructs handler.
func NewNotifyHandler(dispatch *service.DispatchService) *NotifyHandler {
	return &NotifyHandler{dispatch: dispatch}
}

// Notify handles POST /api/v1/notify. The shared secret is checked before
// the body is touched: an untrusted caller gets 403, never a parse error.
func (h *NotifyHandler) Notify(c *fiber.Ctx) error {
	secret := c.Get(internalSecretHeader)
	if err := h.dispatch.Authorize(secret); err != nil {
		return err
	}

	var req dto.NotifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if len(req.Notification) == 0 {
		return fiber.NewError(http.StatusBadRequest, "notification required")
	}

	if _, err := h.dispatch.Dispatch(secret, req.Notification); err != nil {
		return err
	}

	return c.JSON(dto.NotifyResponse{Status: "ok"})
}
