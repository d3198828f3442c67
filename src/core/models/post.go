package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TextArray []string

func (ta *TextArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ta)
	case string:
		return json.Unmarshal([]byte(v), ta)
	}
	*ta = nil
	return nil
}

func (ta TextArray) Value() (driver.Value, error) {
	return json.Marshal(ta)
}

// Post struct represents a post in the system
type Post struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:text;not null;index" json:"user_id"`
	Content   string    `gorm:"column:content;type:text;not null;default:''" json:"content"`
	MediaURLs TextArray `gorm:"column:media_urls;type:text" json:"media_urls"`
	PostType  string    `gorm:"column:post_type;type:text;not null" json:"post_type"` // text | image | text_with_image
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp with time zone;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp with time zone;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}
