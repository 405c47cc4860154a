package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/streamhive/streamhive-backend/internal/dto"
	"github.com/streamhive/streamhive-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrChannelNotFound = errors.New("channel does not exist")
	ErrVideoNotFound   = errors.New("video does not exist")
)

// ChannelService serves the read-oriented aggregations: channel profile with
// subscription counts and the resolved watch history. It reads the store
// directly and never touches token state.
type ChannelService struct {
	db *gorm.DB
}

func NewChannelService(db *gorm.DB) *ChannelService {
	return &ChannelService{db: db}
}

// Profile resolves a channel by lowercase username and decorates it with
// subscription counts and whether the viewer is subscribed.
func (s *ChannelService) Profile(username string, viewerID uuid.UUID) (*dto.ChannelProfileResponse, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	var channel models.User
	if err := s.db.First(&channel, "username = ?", username).Error; err != nil {
		return nil, ErrChannelNotFound
	}

	var subscriberCount int64
	if err := s.db.Model(&models.Subscription{}).
		Where("channel_id = ?", channel.ID).
		Count(&subscriberCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscribers: %w", err)
	}

	var subscribedToCount int64
	if err := s.db.Model(&models.Subscription{}).
		Where("subscriber_id = ?", channel.ID).
		Count(&subscribedToCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscribed channels: %w", err)
	}

	isSubscribed := false
	if viewerID != uuid.Nil {
		var n int64
		if err := s.db.Model(&models.Subscription{}).
			Where("channel_id = ? AND subscriber_id = ?", channel.ID, viewerID).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to check subscription: %w", err)
		}
		isSubscribed = n > 0
	}

	return &dto.ChannelProfileResponse{
		ID:                       channel.ID,
		Username:                 channel.Username,
		FullName:                 channel.FullName,
		Email:                    channel.Email,
		Avatar:                   channel.Avatar,
		CoverImage:               channel.CoverImage,
		SubscriberCount:          subscriberCount,
		ChannelSubscribedToCount: subscribedToCount,
		IsSubscribed:             isSubscribed,
	}, nil
}

// WatchHistory resolves the user's ordered video references into full video
// records, each carrying a single reduced owner object.
func (s *ChannelService) WatchHistory(userID uuid.UUID) ([]dto.WatchHistoryVideo, error) {
	var entries []models.WatchHistoryEntry
	if err := s.db.Where("user_id = ?", userID).
		Order("position ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load watch history: %w", err)
	}

	history := make([]dto.WatchHistoryVideo, 0, len(entries))
	if len(entries) == 0 {
		return history, nil
	}

	videoIDs := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		videoIDs = append(videoIDs, e.VideoID)
	}

	var videos []models.Video
	if err := s.db.Preload("Owner").
		Where("id IN ?", videoIDs).
		Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to load history videos: %w", err)
	}

	byID := make(map[uuid.UUID]models.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	for _, e := range entries {
		v, ok := byID[e.VideoID]
		if !ok {
			continue
		}
		history = append(history, dto.WatchHistoryVideo{
			ID:          v.ID,
			VideoFile:   v.VideoFile,
			Thumbnail:   v.Thumbnail,
			Title:       v.Title,
			Description: v.Description,
			Duration:    v.Duration,
			Views:       v.Views,
			CreatedAt:   v.CreatedAt,
			Owner: dto.VideoOwner{
				Username: v.Owner.Username,
				FullName: v.Owner.FullName,
				Avatar:   v.Owner.Avatar,
			},
		})
	}
	return history, nil
}

// RecordView appends a video to the user's watch history at the next
// position.
func (s *ChannelService) RecordView(userID, videoID uuid.UUID) error {
	var video models.Video
	if err := s.db.First(&video, "id = ?", videoID).Error; err != nil {
		return ErrVideoNotFound
	}

	position := 1
	var last models.WatchHistoryEntry
	err := s.db.Where("user_id = ?", userID).
		Order("position DESC").
		First(&last).Error
	if err == nil {
		position = last.Position + 1
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to read watch history position: %w", err)
	}

	entry := models.WatchHistoryEntry{
		UserID:   userID,
		VideoID:  videoID,
		Position: position,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}
