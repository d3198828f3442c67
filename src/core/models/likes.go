package models

import "github.com/google/uuid"

type Like struct {
	UserID string    `gorm:"column:user_id;type:text;primaryKey" json:"user_id"`
	PostID uuid.UUID `gorm:"column:post_id;type:uuid;primaryKey" json:"post_id"`
}

func (Like) TableName() string {
	return "likes"
}

// Save marks a post bookmarked by a user. Toggled like a Like, but it
// never produces a notification.
type Save struct {
	UserID string    `gorm:"column:user_id;type:text;primaryKey" json:"user_id"`
	PostID uuid.UUID `gorm:"column:post_id;type:uuid;primaryKey" json:"post_id"`
}

func (Save) TableName() string {
	return "saves"
}
