package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WatchHistoryEntry keeps the ordered sequence of videos a user has watched.
// Position increases monotonically per user and fixes the order the history
// aggregation returns.
type WatchHistoryEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null" json:"video_id"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`

	Video Video `gorm:"foreignKey:VideoID" json:"-"`
}

func (w *WatchHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
