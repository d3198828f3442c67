package models

import (
	"time"
)

// Follow is a directed edge: follower_id follows following_id.
type Follow struct {
	FollowerID  string    `gorm:"column:follower_id;type:text;primaryKey" json:"follower_id"`
	FollowingID string    `gorm:"column:following_id;type:text;primaryKey" json:"following_id"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}

// Connection is an accepted relationship. Both directions are inserted on
// accept so each user's connection set can be read with a single keyed query.
// Connections are independent of follow state.
type Connection struct {
	UserID    string    `gorm:"column:user_id;type:text;primaryKey" json:"user_id"`
	PeerID    string    `gorm:"column:peer_id;type:text;primaryKey" json:"peer_id"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Connection) TableName() string {
	return "connections"
}

const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
)

// ConnectionRequest holds at most one row per unordered user pair at a time.
// Accepting flips Status; the row is kept for auditing.
type ConnectionRequest struct {
	ID         int       `gorm:"column:id;type:int;primaryKey;autoIncrement" json:"id"`
	FromUserID string    `gorm:"column:from_user_id;type:text;not null;index" json:"from_user_id"`
	ToUserID   string    `gorm:"column:to_user_id;type:text;not null;index" json:"to_user_id"`
	Status     string    `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ConnectionRequest) TableName() string {
	return "connection_requests"
}
