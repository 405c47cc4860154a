package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/streamhive/streamhive-backend/internal/dto"
	"github.com/streamhive/streamhive-backend/internal/services"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrFieldsRequired),
		errors.Is(err, services.ErrMissingIdentifier),
		errors.Is(err, services.ErrAvatarRequired),
		errors.Is(err, services.ErrInvalidOldPassword),
		// channel-not-found is rendered as 400, matching the behavior the
		// mobile clients already depend on.
		errors.Is(err, services.ErrChannelNotFound):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUserExists):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidRefreshToken),
		errors.Is(err, services.ErrRefreshTokenUsed):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrVideoNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// fail renders a service error as the failure envelope. 5xx causes are
// logged but never exposed to the client.
func fail(c *fiber.Ctx, err error) error {
	code := statusForError(err)
	message := err.Error()
	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "internal server error"
	}
	return c.Status(code).JSON(dto.Failure(code, message))
}
