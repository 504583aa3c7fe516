package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BerkantGC/hotel-booking-api/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Notify *handlers.NotifyHandler
	Token  *handlers.TokenHandler
	Socket *handlers.SocketHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")
	api.Post("/notify", cfg.Notify.Notify)
	api.Get("/verify-token", cfg.Token.Verify)

	app.Get("/ws", cfg.Socket.Gate, cfg.Socket.Serve())
}
