package models

import (
	"time"
)

const (
	TaskStoryExpire        = "story.expire"
	TaskConnectionReminder = "connection.reminder"
	TaskMessageDigest      = "messages.digest"
)

// DeferredTask carries only an id-sized payload; handlers re-read current
// state at run time because it may have changed since enqueue.
type DeferredTask struct {
	ID        int       `gorm:"column:id;type:int;primaryKey;autoIncrement" json:"id"`
	Kind      string    `gorm:"column:kind;type:text;not null;index" json:"kind"`
	Payload   string    `gorm:"column:payload;type:text;not null" json:"payload"`
	RunAt     time.Time `gorm:"column:run_at;type:timestamp with time zone;not null;index" json:"run_at"`
	Done      bool      `gorm:"column:done;not null;default:false" json:"done"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (DeferredTask) TableName() string {
	return "deferred_tasks"
}
