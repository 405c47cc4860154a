package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Video is read-only from the account core; the watch-history aggregation
// resolves video references into these records.
type Video struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	VideoFile   string    `gorm:"not null" json:"video_file"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `gorm:"default:0" json:"views"`
	IsPublished bool      `gorm:"default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
