package db

import (
	"fmt"

	"leadgen/internal/assistant"
	"leadgen/internal/auth"
	"leadgen/internal/crm"
	"leadgen/internal/notify"
	"leadgen/internal/queue"
	"leadgen/internal/scheduler"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&queue.Job{},
		&scheduler.Task{},
		&scheduler.TaskExecution{},
		&assistant.ConversationThread{},
		&crm.Lead{},
		&crm.Campaign{},
		&crm.AnalyticsMetric{},
		&notify.Notification{},
		&auth.User{},
	); err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		// Consumer poll: filtered by queue+status, ordered by creation time.
		`create index if not exists idx_jobs_poll on jobs(queue, status, created_at);`,
		`create index if not exists idx_task_executions_task on task_executions(task_id, executed_at desc);`,
		`create index if not exists idx_scheduled_tasks_active on scheduled_tasks(active);`,
		`create index if not exists idx_leads_status_created on leads(status, created_at desc);`,
		`create index if not exists idx_notifications_created on notifications(created_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
