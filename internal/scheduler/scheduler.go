package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// TaskHandler executes one firing of a scheduled task.
type TaskHandler func(ctx context.Context, task *Task) error

// Scheduler persists recurring task definitions and fires them on
// their cron schedules. When Disabled is set, task ids are still
// tracked but no live timer is armed; useful for bookkeeping without
// background execution.
type Scheduler struct {
	DB          *gorm.DB
	Logger      *slog.Logger
	Interpreter Interpreter
	Disabled    bool

	cron    *cron.Cron
	baseCtx context.Context

	mu       sync.Mutex
	entries  map[string]cron.EntryID
	handlers map[string]TaskHandler
}

func New(db *gorm.DB, logger *slog.Logger, interpreter Interpreter, disabled bool) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		DB:          db,
		Logger:      logger,
		Interpreter: interpreter,
		Disabled:    disabled,
		cron:        cron.New(cron.WithParser(cronParser)),
		baseCtx:     context.Background(),
		entries:     make(map[string]cron.EntryID),
		handlers:    make(map[string]TaskHandler),
	}
}

// RegisterHandler binds a task type to its handler. Duplicate
// registration is a wiring bug and fails immediately.
func (s *Scheduler) RegisterHandler(taskType string, h TaskHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handlers[taskType]; ok {
		return fmt.Errorf("handler already registered for task type %q", taskType)
	}
	s.handlers[taskType] = h
	return nil
}

// Start loads all active tasks, arms their timers and starts the cron
// runner. Tasks created afterwards are armed by CreateTask.
func (s *Scheduler) Start(ctx context.Context) error {
	s.baseCtx = ctx

	var tasks []Task
	if err := s.DB.WithContext(ctx).Where("active = ?", true).Find(&tasks).Error; err != nil {
		return fmt.Errorf("load scheduled tasks: %w", err)
	}
	for i := range tasks {
		if err := s.ScheduleTask(&tasks[i]); err != nil {
			// One bad row must not keep the rest of the tasks down.
			s.Logger.Error("failed to arm scheduled task",
				"task_id", tasks[i].ID, "cron", tasks[i].CronExpression, "error", err)
		}
	}

	if !s.Disabled {
		s.cron.Start()
	}
	s.Logger.Info("task scheduler started", "tasks", len(tasks), "disabled", s.Disabled)
	return nil
}

// CreateTask resolves the schedule input, persists the task and arms
// its timer.
func (s *Scheduler) CreateTask(ctx context.Context, taskType, scheduleInput, description string, params json.RawMessage) (*Task, error) {
	expr, err := s.ResolveSchedule(ctx, scheduleInput)
	if err != nil {
		return nil, err
	}

	task := Task{
		ID:             uuid.NewString(),
		TaskType:       taskType,
		CronExpression: expr,
		Active:         true,
		Description:    description,
		CreatedBy:      "ai_assistant",
		Parameters:     params,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("persist scheduled task: %w", err)
	}

	if err := s.ScheduleTask(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ScheduleTask arms or re-arms the timer for a task. Re-arming an
// existing id removes the previous entry first, so a task never fires
// twice per tick.
func (s *Scheduler) ScheduleTask(task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[task.ID]; ok && prev != 0 {
		s.cron.Remove(prev)
	}

	if s.Disabled {
		s.entries[task.ID] = 0
		return nil
	}

	t := *task
	id, err := s.cron.AddFunc(task.CronExpression, func() {
		s.executeTask(s.baseCtx, &t)
	})
	if err != nil {
		return fmt.Errorf("arm timer for task %s: %w", task.ID, err)
	}
	s.entries[task.ID] = id
	return nil
}

// StopAll disarms every live timer and clears tracking.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for taskID, id := range s.entries {
		if id != 0 {
			s.cron.Remove(id)
		}
		delete(s.entries, taskID)
	}
	s.cron.Stop()
	s.Logger.Info("task scheduler stopped")
}

// TrackedTasks reports the ids with a tracked (armed or bookkept) timer.
func (s *Scheduler) TrackedTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

// executeTask dispatches one firing by task type and records the
// outcome. A failed handler leaves the timer armed.
func (s *Scheduler) executeTask(ctx context.Context, task *Task) {
	s.Logger.Info("executing scheduled task", "task_id", task.ID, "type", task.TaskType, "description", task.Description)

	s.mu.Lock()
	handler, ok := s.handlers[task.TaskType]
	s.mu.Unlock()

	var execErr error
	if !ok {
		execErr = fmt.Errorf("no handler for task type %q", task.TaskType)
	} else {
		execErr = handler(ctx, task)
	}

	exec := TaskExecution{
		TaskID:     task.ID,
		Status:     "completed",
		ExecutedAt: time.Now().UTC(),
	}
	if execErr != nil {
		s.Logger.Error("scheduled task failed", "task_id", task.ID, "type", task.TaskType, "error", execErr)
		msg := execErr.Error()
		exec.Status = "failed"
		exec.Error = &msg
	}
	if err := s.DB.WithContext(ctx).Create(&exec).Error; err != nil {
		s.Logger.Error("failed to record task execution", "task_id", task.ID, "error", err)
	}
}

// RunTaskNow fires a task immediately outside its cron schedule,
// recording the execution like a timer firing would.
func (s *Scheduler) RunTaskNow(ctx context.Context, task *Task) {
	s.executeTask(ctx, task)
}
