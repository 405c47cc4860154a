package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription is an edge from a subscriber to the channel they follow.
// The account core only reads these edges; they are written by the
// subscription endpoints.
type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_subscriptions_edge" json:"subscriber_id"`
	ChannelID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_subscriptions_edge" json:"channel_id"`
	CreatedAt    time.Time `json:"created_at"`

	Subscriber User `gorm:"foreignKey:SubscriberID" json:"-"`
	Channel    User `gorm:"foreignKey:ChannelID" json:"-"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
