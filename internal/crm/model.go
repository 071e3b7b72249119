package crm

import (
	"time"

	"github.com/lib/pq"
)

// Lead statuses follow the pipeline new -> researched -> emailed -> replied.
const (
	LeadNew        = "new"
	LeadResearched = "researched"
	LeadEmailed    = "emailed"
	LeadReplied    = "replied"
)

type Lead struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"index;not null"`
	Company   string    `gorm:"not null;default:''"`
	Status    string    `gorm:"index;not null;default:'new'"`
	Notes     string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Campaign struct {
	ID           string         `gorm:"primaryKey;type:uuid"`
	Name         string         `gorm:"not null;default:''"`
	LeadIDs      pq.StringArray `gorm:"type:text[]"`
	CampaignType string         `gorm:"not null"` // immediate/scheduled/drip
	ScheduleTime *time.Time
	Status       string    `gorm:"index;not null;default:'scheduled'"`
	CreatedAt    time.Time `gorm:"not null"`
}

// AnalyticsMetric is a flat metric sample written by campaign tracking.
type AnalyticsMetric struct {
	ID         uint64    `gorm:"primaryKey"`
	Metric     string    `gorm:"index;not null"`
	Value      float64   `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null"`
}
