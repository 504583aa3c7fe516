package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/BerkantGC/hotel-booking-api/internal/api/dto"
	"github.com/BerkantGC/hotel-booking-api/internal/service"
)

// TokenHandler exposes token introspection for collaborators outside the
// gateway.
type TokenHandler struct {
	auth *service.AuthService
}

// NewTokenHandler constructs handler.
func NewTokenHandler(authService *service.AuthService) *TokenHandler {
	return &TokenHandler{auth: authService}
}

// Verify handles GET /api/v1/verify-token.
func (h *TokenHandler) Verify(c *fiber.Ctx) error {
	credential := bearerToken(c.Get("Authorization"))
	if credential == "" {
		return c.Status(http.StatusUnauthorized).JSON(dto.VerifyTokenResponse{
			Valid: false,
			Error: "token required",
		})
	}

	subjectID, err := h.auth.Introspect(c.Context(), credential)
	if err != nil {
		return c.Status(http.StatusUnauthorized).JSON(dto.VerifyTokenResponse{
			Valid: false,
			Error: err.Error(),
		})
	}

	return c.JSON(dto.VerifyTokenResponse{
		Valid: true,
		User:  &dto.TokenRef{ID: subjectID},
	})
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
