package models

import (
	"time"
)

// User is keyed by the identity provider's subject id. The server never
// mints its own user ids.
type User struct {
	ID             string    `gorm:"column:id;type:text;primaryKey;not null" json:"id"`
	Email          string    `gorm:"column:email;type:text;unique;not null" json:"email"`
	FullName       string    `gorm:"column:full_name;type:text;not null" json:"full_name"`
	Username       string    `gorm:"column:username;type:text;unique;not null" json:"username"`
	Bio            string    `gorm:"column:bio;type:text;not null;default:'Hey there! I am using Ping.'" json:"bio"`
	Location       string    `gorm:"column:location;type:text;not null;default:''" json:"location"`
	ProfilePicture string    `gorm:"column:profile_picture;type:text;not null;default:''" json:"profile_picture"`
	CoverPhoto     string    `gorm:"column:cover_photo;type:text;not null;default:''" json:"cover_photo"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamp with time zone;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;type:timestamp with time zone;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
