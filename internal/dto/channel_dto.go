package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChannelProfileResponse is the whitelisted projection the channel-profile
// aggregation returns.
type ChannelProfileResponse struct {
	ID                       uuid.UUID `json:"id"`
	Username                 string    `json:"username"`
	FullName                 string    `json:"fullName"`
	Email                    string    `json:"email"`
	Avatar                   string    `json:"avatar"`
	CoverImage               string    `json:"coverImage"`
	SubscriberCount          int64     `json:"subscriberCount"`
	ChannelSubscribedToCount int64     `json:"channelSubscribedToCount"`
	IsSubscribed             bool      `json:"isSubscribed"`
}

// VideoOwner is the reduced owner projection attached to each history video.
type VideoOwner struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// WatchHistoryVideo is a resolved history entry: the full video record with
// a single owner object, not a list.
type WatchHistoryVideo struct {
	ID          uuid.UUID  `json:"id"`
	VideoFile   string     `json:"videoFile"`
	Thumbnail   string     `json:"thumbnail"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Duration    float64    `json:"duration"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"createdAt"`
	Owner       VideoOwner `json:"owner"`
}
