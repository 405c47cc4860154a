package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/streamhive/streamhive-backend/internal/media"
	"github.com/streamhive/streamhive-backend/internal/models"
	"gorm.io/gorm"
)

// UserService covers the profile-update flows for an already-authenticated
// user: account details, avatar, cover image.
type UserService struct {
	db    *gorm.DB
	media media.Storage
}

func NewUserService(db *gorm.DB, media media.Storage) *UserService {
	return &UserService{db: db, media: media}
}

// UpdateAccountDetails replaces full name and email. Both are required.
func (s *UserService) UpdateAccountDetails(userID uuid.UUID, fullName, email string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, ErrFieldsRequired
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	updates := map[string]interface{}{"full_name": fullName, "email": email}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update account details: %w", err)
	}
	return &user, nil
}

// UpdateAvatar uploads the new avatar, deletes the previous remote asset
// best-effort, and persists the new URL.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*models.User, error) {
	return s.updateImage(ctx, userID, localPath, "avatar")
}

// UpdateCoverImage behaves like UpdateAvatar for the optional cover image.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*models.User, error) {
	return s.updateImage(ctx, userID, localPath, "cover_image")
}

func (s *UserService) updateImage(ctx context.Context, userID uuid.UUID, localPath, column string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	newURL, err := s.media.Upload(ctx, localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", column, err)
	}

	oldURL := user.Avatar
	if column == "cover_image" {
		oldURL = user.CoverImage
	}

	// Deleting the superseded asset never blocks the update.
	if oldURL != "" {
		if err := s.media.Delete(ctx, oldURL); err != nil {
			slog.Warn("failed to delete previous media asset",
				"user_id", userID.String(), "url", oldURL, "error", err)
		}
	}

	if err := s.db.Model(&user).Update(column, newURL).Error; err != nil {
		return nil, fmt.Errorf("failed to persist %s: %w", column, err)
	}

	if column == "cover_image" {
		user.CoverImage = newURL
	} else {
		user.Avatar = newURL
	}
	return &user, nil
}
