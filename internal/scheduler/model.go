package scheduler

import (
	"encoding/json"
	"time"
)

const (
	TaskCampaignCheck = "campaign_check"
	TaskLeadResearch  = "lead_research"
	TaskSendReport    = "send_report"
	TaskCustom        = "custom"
)

// Task is a persisted recurring task definition. Rows are never
// deleted; deactivation is a future extension point.
type Task struct {
	ID             string          `gorm:"primaryKey;type:uuid"`
	TaskType       string          `gorm:"not null"`
	CronExpression string          `gorm:"not null"`
	Active         bool            `gorm:"index;not null"`
	Description    string          `gorm:"type:text;not null;default:''"`
	CreatedBy      string          `gorm:"not null;default:''"`
	Parameters     json.RawMessage `gorm:"type:jsonb"`
	CreatedAt      time.Time       `gorm:"not null"`
}

func (Task) TableName() string { return "scheduled_tasks" }

// TaskExecution is an append-only record of one firing.
type TaskExecution struct {
	ID         uint64    `gorm:"primaryKey"`
	TaskID     string    `gorm:"index;not null;type:uuid"`
	Status     string    `gorm:"not null"` // completed/failed
	Error      *string   `gorm:"type:text"`
	ExecutedAt time.Time `gorm:"not null"`
}

func (TaskExecution) TableName() string { return "task_executions" }
