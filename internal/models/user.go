package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is the account record. Username is stored lowercase; username and
// email are globally unique. Password and RefreshToken are never serialized —
// responses are built from dto.UserResponse.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username   string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Email      string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName   string    `gorm:"size:255;not null" json:"full_name"`
	Password   string    `gorm:"not null" json:"-"`
	Avatar     string    `gorm:"not null" json:"avatar"`
	CoverImage string    `json:"cover_image"`

	// Single refresh-token slot: at most one valid refresh token per user.
	// Issuing a new token overwrites the slot and thereby invalidates the
	// previous one; logout clears it.
	RefreshToken *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SetPassword replaces the stored hash with a bcrypt hash of plain.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}
