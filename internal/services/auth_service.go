package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/streamhive/streamhive-backend/internal/config"
	"github.com/streamhive/streamhive-backend/internal/dto"
	"github.com/streamhive/streamhive-backend/internal/media"
	"github.com/streamhive/streamhive-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrFieldsRequired      = errors.New("all fields are required")
	ErrUserExists          = errors.New("user with email or username already exists")
	ErrUserNotFound        = errors.New("user does not exist")
	ErrMissingIdentifier   = errors.New("username or email is required")
	ErrInvalidCredentials  = errors.New("invalid user credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenUsed    = errors.New("refresh token is expired or already used")
	ErrInvalidOldPassword  = errors.New("invalid old password")
	ErrAvatarRequired      = errors.New("avatar file is required")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccessClaims are embedded in short-lived access tokens.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the subject. The jti makes every issued token
// unique even when two are signed within the same second.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

type AuthService struct {
	db    *gorm.DB
	cfg   *config.Config
	media media.Storage
}

func NewAuthService(db *gorm.DB, cfg *config.Config, media media.Storage) *AuthService {
	return &AuthService{db: db, cfg: cfg, media: media}
}

// Register creates a new account. The avatar upload is mandatory and happens
// before the user row is created; a creation failure after a successful
// upload leaves the remote asset orphaned, which is accepted. Registration
// does not log the user in.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest, avatarPath, coverPath string) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.TrimSpace(req.Email)
	fullName := strings.TrimSpace(req.FullName)

	if username == "" || email == "" || fullName == "" || strings.TrimSpace(req.Password) == "" {
		return nil, ErrFieldsRequired
	}

	var existing models.User
	if err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	if avatarPath == "" {
		return nil, ErrAvatarRequired
	}

	avatarURL, err := s.media.Upload(ctx, avatarPath)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	coverURL := ""
	if coverPath != "" {
		coverURL, err = s.media.Upload(ctx, coverPath)
		if err != nil {
			// Cover image is optional; a failed upload degrades to no cover.
			slog.Warn("cover image upload failed", "error", err)
			coverURL = ""
		}
	}

	user := models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	var created models.User
	if err := s.db.First(&created, "id = ?", user.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load created user: %w", err)
	}
	return &created, nil
}

// Login authenticates by username or email and issues a token pair.
func (s *AuthService) Login(req *dto.LoginRequest) (*models.User, *TokenPair, error) {
	if req.Username == "" && req.Email == "" {
		return nil, nil, ErrMissingIdentifier
	}

	var user models.User
	err := s.db.Where("username = ? OR email = ?", strings.ToLower(req.Username), req.Email).
		First(&user).Error
	if err != nil {
		return nil, nil, ErrUserNotFound
	}

	if !user.CheckPassword(req.Password) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.IssueTokenPair(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Logout clears the refresh-token slot unconditionally. No token value is
// required; the caller's identity comes from the access token.
func (s *AuthService) Logout(userID uuid.UUID) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("refresh_token", nil).Error
}

// IssueTokenPair signs an access and a refresh token and persists the
// refresh token into the user's single slot, invalidating any prior one.
func (s *AuthService) IssueTokenPair(userID uuid.UUID) (*TokenPair, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user for token issue: %w", err)
	}

	accessToken, err := s.signAccessToken(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.signRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := s.db.Model(&user).Update("refresh_token", refreshToken).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyRefreshToken checks signature and expiry and returns the subject
// user id. It does not consult the stored slot; Rotate does that.
func (s *AuthService) VerifyRefreshToken(token string) (uuid.UUID, error) {
	claims := &RefreshClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.RefreshTokenSecret), nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return userID, nil
}

// Rotate exchanges a refresh token for a fresh pair. The presented token
// must match the stored slot exactly; a superseded token is rejected, which
// is the replay-detection guard. Two concurrent rotations of the same
// still-valid token can race past the equality check; that race is accepted.
func (s *AuthService) Rotate(token string) (*TokenPair, error) {
	userID, err := s.VerifyRefreshToken(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if user.RefreshToken == nil || *user.RefreshToken != token {
		return nil, ErrRefreshTokenUsed
	}

	return s.IssueTokenPair(user.ID)
}

// ChangePassword verifies the old password and replaces it, re-hashed.
func (s *AuthService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}

	if !user.CheckPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.Model(&user).Update("password", user.Password).Error
}

func (s *AuthService) GetByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *AuthService) signAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.AccessTokenSecret))
}

func (s *AuthService) signRefreshToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.RefreshTokenSecret))
}
