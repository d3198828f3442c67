package models

import (
	"time"

	"github.com/google/uuid"
)

// Story is ephemeral: at most one active per user, expired 24h after
// creation by a deferred task.
type Story struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID          string    `gorm:"column:user_id;type:text;not null;index" json:"user_id"`
	Content         string    `gorm:"column:content;type:text;not null;default:''" json:"content"`
	MediaURL        string    `gorm:"column:media_url;type:text;not null;default:''" json:"media_url"`
	MediaType       string    `gorm:"column:media_type;type:text;not null" json:"media_type"` // text | image | video
	BackgroundColor string    `gorm:"column:background_color;type:text;not null;default:''" json:"background_color"`
	CreatedAt       time.Time `gorm:"column:created_at;type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Story) TableName() string {
	return "stories"
}

// StoryView is append-only; the first view wins and re-views are no-ops.
type StoryView struct {
	StoryID   uuid.UUID `gorm:"column:story_id;type:uuid;primaryKey" json:"story_id"`
	ViewerID  string    `gorm:"column:viewer_id;type:text;primaryKey" json:"viewer_id"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (StoryView) TableName() string {
	return "story_views"
}
