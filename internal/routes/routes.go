package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/streamhive/streamhive-backend/internal/config"
	"github.com/streamhive/streamhive-backend/internal/handlers"
	"github.com/streamhive/streamhive-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	userHandler *handlers.UserHandler,
	channelHandler *handlers.ChannelHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api/v1")

	api.Get("/health", healthHandler.Check)

	users := api.Group("/users")

	// Public session flows
	users.Post("/register", userHandler.Register)
	users.Post("/login", userHandler.Login)
	users.Post("/refresh-token", userHandler.Refresh)

	// Protected flows - middleware applied per route so it never leaks onto
	// the public ones above.
	jwt := middleware.JWTProtected(cfg)
	users.Post("/logout", jwt, userHandler.Logout)
	users.Post("/change-password", jwt, userHandler.ChangePassword)
	users.Get("/current-user", jwt, userHandler.CurrentUser)
	users.Patch("/update-account", jwt, userHandler.UpdateAccount)
	users.Patch("/avatar", jwt, userHandler.UpdateAvatar)
	users.Patch("/cover-image", jwt, userHandler.UpdateCoverImage)

	// Aggregations
	users.Get("/c/:username", jwt, channelHandler.Profile)
	users.Get("/history", jwt, channelHandler.WatchHistory)
	users.Post("/history/:videoId", jwt, channelHandler.RecordView)
}
