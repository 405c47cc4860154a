package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/streamhive/streamhive-backend/internal/dto"
	"github.com/streamhive/streamhive-backend/internal/middleware"
	"github.com/streamhive/streamhive-backend/internal/models"
	"github.com/streamhive/streamhive-backend/internal/services"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

type UserHandler struct {
	auth     *services.AuthService
	users    *services.UserService
	validate *validator.Validate
}

func NewUserHandler(auth *services.AuthService, users *services.UserService) *UserHandler {
	return &UserHandler{
		auth:     auth,
		users:    users,
		validate: validator.New(),
	}
}

// Register accepts a multipart form with the account fields plus a mandatory
// avatar file and an optional coverImage file.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			dto.Failure(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			dto.Failure(fiber.StatusBadRequest, "all fields are required"))
	}

	avatarPath, err := saveUpload(c, "avatar")
	if err != nil {
		return fail(c, err)
	}
	coverPath, err := saveUpload(c, "coverImage")
	if err != nil {
		return fail(c, err)
	}

	user, err := h.auth.Register(c.UserContext(), &req, avatarPath, coverPath)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(
		dto.Success(fiber.StatusCreated, dto.NewUserResponse(user), "user registered successfully"))
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			dto.Failure(fiber.StatusBadRequest, "invalid request body"))
	}

	user, pair, err := h.auth.Login(&req)
	if err != nil {
		return fail(c, err)
	}

	setAuthCookies(c, pair)
	return c.JSON(dto.Success(fiber.StatusOK, dto.LoginResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "user logged in successfully"))
}

func (h *UserHandler) Logout(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			dto.Failure(fiber.StatusUnauthorized, "unauthorized request"))
	}

	if err := h.auth.Logout(userID); err != nil {
		return fail(c, err)
	}

	clearAuthCookies(c)
	return c.JSON(dto.Success(fiber.StatusOK, nil, "user logged out"))
}

// Refresh reads the refresh token from the cookie or the request body and
// rotates it. The cookie is always set to the freshly rotated token.
func (h *UserHandler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies(refreshTokenCookie)
	if token == "" {
		var req dto.RefreshRequest
		if err := c.BodyParser(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(
			dto.Failure(fiber.StatusUnauthorized, "unauthorized request"))
	}

	pair, err := h.auth.Rotate(token)
	if err != nil {
		return fail(c, err)
	}

	setAuthCookies(c, pair)
	return c.JSON(dto.Success(fiber.StatusOK, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "access token refreshed"))
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			dto.Failure(fiber.StatusUnauthorized, "unauthorized request"))
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			dto.Failure(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			dto.Failure(fiber.StatusBadRequest, "old and new passwords are required"))
	}

	if err := h.auth.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.Success(fiber.StatusOK, nil, "password changed"))
}

func (h *UserHandler) CurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			dto.Failure(fiber.StatusUnauthorized, "unauthorized request"))
	}

	user, err := h.auth.GetByID(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.Success(fiber.StatusOK, dto.NewUserResponse(user), "current user fetched successfully"))
}

func (h *UserHandler) UpdateAccount(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			dto.Failure(fiber.StatusUnauthorized, "unauthorized request"))
	}

	var req dto.UpdateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			dto.Failure(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			dto.Failure(fiber.StatusBadRequest, "full name and email are required"))
	}

	user, err := h.users.UpdateAccountDetails(userID, req.FullName, req.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.Success(fiber.StatusOK, dto.NewUserResponse(user), "account updated successfully"))
}

func (h *UserHandler) UpdateAvatar(c *fiber.Ctx) error {
	return h.updateImage(c, "avatar", "avatar file is missing", "avatar updated successfully")
}

func (h *UserHandler) UpdateCoverImage(c *fiber.Ctx) error {
	return h.updateImage(c, "coverImage", "cover image file is missing", "cover image updated successfully")
}

func (h *UserHandler) updateImage(c *fiber.Ctx, field, missingMsg, okMsg string) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(
			dto.Failure(fiber.StatusUnauthorized, "unauthorized request"))
	}

	localPath, err := saveUpload(c, field)
	if err != nil {
		return fail(c, err)
	}
	if localPath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			dto.Failure(fiber.StatusBadRequest, missingMsg))
	}

	var user *models.User
	if field == "avatar" {
		user, err = h.users.UpdateAvatar(c.UserContext(), userID, localPath)
	} else {
		user, err = h.users.UpdateCoverImage(c.UserContext(), userID, localPath)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.Success(fiber.StatusOK, dto.NewUserResponse(user), okMsg))
}

// saveUpload spools the named multipart file to a temp path and returns it.
// An absent file yields an empty path, not an error.
func saveUpload(c *fiber.Ctx, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil || file == nil {
		return "", nil
	}

	path := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return "", fmt.Errorf("failed to save uploaded file: %w", err)
	}
	return path, nil
}

func setAuthCookies(c *fiber.Ctx, pair *services.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     accessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		HTTPOnly: true,
		Secure:   true,
	})
	c.Cookie(&fiber.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		HTTPOnly: true,
		Secure:   true,
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   true,
		})
	}
}
