package queue

import (
	"encoding/json"
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job is one unit of queued work. Payload is opaque to the queue;
// only the handler for the job's queue interprets it.
type Job struct {
	ID      string          `gorm:"primaryKey;type:uuid"`
	Queue   string          `gorm:"index;not null"`
	Payload json.RawMessage `gorm:"type:jsonb;not null"`

	// pending/completed/failed. Transitions once, pending -> terminal.
	Status string `gorm:"index;not null;default:'pending'"`

	CreatedAt time.Time `gorm:"index;not null"`
}

func (Job) TableName() string { return "jobs" }
