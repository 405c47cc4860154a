package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/streamhive/streamhive-backend/internal/dto"
	"github.com/streamhive/streamhive-backend/internal/middleware"
	"github.com/streamhive/streamhive-backend/internal/services"
)

type ChannelHandler struct {
	channels *services.ChannelService
}

func NewChannelHandler(channels *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

func (h *ChannelHandler) Profile(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Params("username"))
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			dto.Failure(fiber.StatusBadRequest, "username is missing"))
	}

	viewerID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			dto.Failure(fiber.StatusUnauthorized, "unauthorized request"))
	}

	profile, err := h.channels.Profile(username, viewerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.Success(fiber.StatusOK, profile, "user channel fetched successfully"))
}

func (h *ChannelHandler) WatchHistory(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			dto.Failure(fiber.StatusUnauthorized, "unauthorized request"))
	}

	history, err := h.channels.WatchHistory(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.Success(fiber.StatusOK, history, "watch history fetched successfully"))
}

func (h *ChannelHandler) RecordView(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			dto.Failure(fiber.StatusUnauthorized, "unauthorized request"))
	}

	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			dto.Failure(fiber.StatusBadRequest, "invalid video id"))
	}

	if err := h.channels.RecordView(userID, videoID); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(
		dto.Success(fiber.StatusCreated, nil, "view recorded"))
}
