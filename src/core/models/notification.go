package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMessage = "message"
)

type Notification struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SenderID   string     `gorm:"column:sender_id;type:text;not null" json:"sender_id"`
	ReceiverID string     `gorm:"column:receiver_id;type:text;not null;index" json:"receiver_id"`
	Kind       string     `gorm:"column:kind;type:varchar(50);not null" json:"kind"` // like | comment | follow | message
	Message    string     `gorm:"column:message;type:text;not null" json:"message"`
	PostID     *uuid.UUID `gorm:"column:post_id;type:uuid" json:"post_id,omitempty"`
	LoopID     *uuid.UUID `gorm:"column:loop_id;type:uuid" json:"loop_id,omitempty"`
	StoryID    *uuid.UUID `gorm:"column:story_id;type:uuid" json:"story_id,omitempty"`
	MessageID  *uuid.UUID `gorm:"column:message_id;type:uuid" json:"message_id,omitempty"`
	IsRead     bool       `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
