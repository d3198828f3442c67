package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FromUserID  string    `gorm:"column:from_user_id;type:text;not null;index" json:"from_user_id"`
	ToUserID    string    `gorm:"column:to_user_id;type:text;not null;index" json:"to_user_id"`
	Text        string    `gorm:"column:text;type:text;not null;default:''" json:"text"`
	MediaURL    string    `gorm:"column:media_url;type:text;not null;default:''" json:"media_url"`
	MessageType string    `gorm:"column:message_type;type:text;not null" json:"message_type"` // text | image
	Seen        bool      `gorm:"column:seen;not null;default:false" json:"seen"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
