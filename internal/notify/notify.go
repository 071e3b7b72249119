package notify

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// Notification is an operator-facing message produced by proactive
// behaviors (briefings, campaign alerts). Stored for the dashboard and
// mirrored to the log.
type Notification struct {
	ID        uint64    `gorm:"primaryKey"`
	Type      string    `gorm:"index;not null"`
	Title     string    `gorm:"not null"`
	Content   string    `gorm:"type:text;not null;default:''"`
	Priority  string    `gorm:"not null;default:'medium'"`
	CreatedAt time.Time `gorm:"not null"`
}

type Service struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{DB: db, Logger: logger}
}

func (s *Service) Send(ctx context.Context, n Notification) error {
	if n.Priority == "" {
		n.Priority = "medium"
	}
	n.CreatedAt = time.Now().UTC()

	s.Logger.Info("notification", "type", n.Type, "title", n.Title, "priority", n.Priority)
	return s.DB.WithContext(ctx).Create(&n).Error
}
