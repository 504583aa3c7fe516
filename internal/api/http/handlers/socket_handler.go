package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/BerkantGC/hotel-booking-api/internal/realtime"
	"github.com/BerkantGC/hotel-booking-api/internal/service"
	apperrors "github.com/BerkantGC/hotel-booking-api/pkg/util"
)

const subjectLocalKey = "subject_id"

// SocketHandler gates and serves realtime client connections.
type SocketHandler struct {
	auth   *service.AuthService
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewSocketHandler constructs handler.
func NewSocketHandler(authService *service.AuthService, hub *realtime.Hub, logger *zap.Logger) *SocketHandler {
	return &SocketHandler{auth: authService, hub: hub, logger: logger}
}

// Gate runs before the websocket upgrade. It verifies the credential from the
// handshake auth payload (the token query parameter) or the bearer header
// fallback, and rejects the upgrade outright on any failure, so no
// unauthenticated socket session ever exists.
func (h *SocketHandler) Gate(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	credential := c.Query("token")
	if credential == "" {
		credential = bearerToken(c.Get("Authorization"))
	}
	if credential == "" {
		return apperrors.NewUnauthorized("authentication token required")
	}

	subjectID, err := h.auth.Verifier().Verify(c.Context(), credential)
	if err != nil {
		h.logger.Info("websocket handshake rejected", zap.Error(err))
		return apperrors.NewUnauthorized("authentication failed")
	}

	c.Locals(subjectLocalKey, subjectID)
	return c.Next()
}

// Serve upgrades the gated request and hands the connection to the hub for
// the rest of its life.
func (h *SocketHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		subjectID, ok := conn.Locals(subjectLocalKey).(int64)
		if !ok {
			_ = conn.Close()
			return
		}
		h.hub.Run(realtime.NewSession(subjectID, conn))
	})
}
