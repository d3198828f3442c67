package models

import (
	"time"

	"github.com/google/uuid"
)

// Loop is a short-form video post. Unlike a Post, media is mandatory and
// there is exactly one clip per loop.
type Loop struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:text;not null;index" json:"user_id"`
	Caption   string    `gorm:"column:caption;type:text;not null;default:''" json:"caption"`
	MediaURL  string    `gorm:"column:media_url;type:text;not null" json:"media_url"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp with time zone;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Loop) TableName() string {
	return "loops"
}

type LoopLike struct {
	UserID string    `gorm:"column:user_id;type:text;primaryKey" json:"user_id"`
	LoopID uuid.UUID `gorm:"column:loop_id;type:uuid;primaryKey" json:"loop_id"`
}

func (LoopLike) TableName() string {
	return "loop_likes"
}

type LoopComment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	LoopID    uuid.UUID `gorm:"column:loop_id;type:uuid;not null;index" json:"loop_id"`
	UserID    string    `gorm:"column:user_id;type:text;not null" json:"user_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (LoopComment) TableName() string {
	return "loop_comments"
}
