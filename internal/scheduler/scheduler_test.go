package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Task{}, &TaskExecution{}))
	return db
}

func TestCreateTaskPersistsResolvedCron(t *testing.T) {
	s := New(testDB(t), nil, nil, true)

	task, err := s.CreateTask(context.Background(), TaskLeadResearch, "every 30 minutes", "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "*/30 * * * *", task.CronExpression)
	assert.True(t, task.Active)
	assert.Equal(t, "ai_assistant", task.CreatedBy)

	var stored Task
	require.NoError(t, s.DB.First(&stored, "id = ?", task.ID).Error)
	assert.Equal(t, "*/30 * * * *", stored.CronExpression)
}

func TestCreateTaskRejectsUnresolvableSchedule(t *testing.T) {
	s := New(testDB(t), nil, nil, true)

	_, err := s.CreateTask(context.Background(), TaskCustom, "sometime soon maybe", "x", nil)
	require.ErrorIs(t, err, ErrScheduleResolution)

	var n int64
	require.NoError(t, s.DB.Model(&Task{}).Count(&n).Error)
	assert.Zero(t, n, "unresolvable schedule must not be persisted")
}

func TestScheduleTaskRearmRemovesPreviousEntry(t *testing.T) {
	s := New(testDB(t), nil, nil, false)
	task := &Task{ID: "t1", TaskType: TaskCustom, CronExpression: "0 * * * *"}

	require.NoError(t, s.ScheduleTask(task))
	require.NoError(t, s.ScheduleTask(task))

	assert.Len(t, s.cron.Entries(), 1, "re-arming must not duplicate firings")
	assert.Equal(t, []string{"t1"}, s.TrackedTasks())
}

func TestDisabledModeTracksWithoutArming(t *testing.T) {
	s := New(testDB(t), nil, nil, true)

	task, err := s.CreateTask(context.Background(), TaskCampaignCheck, "every hour", "check", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{task.ID}, s.TrackedTasks())
	assert.Empty(t, s.cron.Entries(), "disabled scheduler must not arm live timers")
}

func TestExecuteTaskRecordsCompletion(t *testing.T) {
	s := New(testDB(t), nil, nil, true)
	var fired int
	require.NoError(t, s.RegisterHandler(TaskCampaignCheck, func(ctx context.Context, task *Task) error {
		fired++
		return nil
	}))

	task := &Task{ID: "t1", TaskType: TaskCampaignCheck}
	s.RunTaskNow(context.Background(), task)

	assert.Equal(t, 1, fired)
	var exec TaskExecution
	require.NoError(t, s.DB.First(&exec).Error)
	assert.Equal(t, "completed", exec.Status)
	assert.Equal(t, "t1", exec.TaskID)
	assert.Nil(t, exec.Error)
}

func TestExecuteTaskRecordsFailureAndKeepsTimer(t *testing.T) {
	s := New(testDB(t), nil, nil, false)
	require.NoError(t, s.RegisterHandler(TaskSendReport, func(ctx context.Context, task *Task) error {
		return errors.New("smtp down")
	}))

	task := &Task{ID: "t2", TaskType: TaskSendReport, CronExpression: "0 9 * * *"}
	require.NoError(t, s.ScheduleTask(task))
	s.RunTaskNow(context.Background(), task)

	var exec TaskExecution
	require.NoError(t, s.DB.First(&exec).Error)
	assert.Equal(t, "failed", exec.Status)
	require.NotNil(t, exec.Error)
	assert.Contains(t, *exec.Error, "smtp down")

	// Transient failure must not disarm the schedule.
	assert.Len(t, s.cron.Entries(), 1)
}

func TestExecuteTaskUnknownTypeRecordsFailure(t *testing.T) {
	s := New(testDB(t), nil, nil, true)
	task := &Task{ID: "t3", TaskType: "no_such_type"}
	s.RunTaskNow(context.Background(), task)

	var exec TaskExecution
	require.NoError(t, s.DB.First(&exec).Error)
	assert.Equal(t, "failed", exec.Status)
}

func TestStartArmsActiveTasksOnly(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&Task{ID: "a1", TaskType: TaskCampaignCheck, CronExpression: "0 * * * *", Active: true}).Error)
	require.NoError(t, db.Create(&Task{ID: "a2", TaskType: TaskCampaignCheck, CronExpression: "0 9 * * *", Active: false}).Error)

	s := New(db, nil, nil, false)
	require.NoError(t, s.Start(context.Background()))
	defer s.StopAll()

	assert.Equal(t, []string{"a1"}, s.TrackedTasks())
}

func TestStopAllClearsTracking(t *testing.T) {
	s := New(testDB(t), nil, nil, false)
	require.NoError(t, s.ScheduleTask(&Task{ID: "t1", TaskType: TaskCustom, CronExpression: "0 * * * *"}))
	require.NoError(t, s.ScheduleTask(&Task{ID: "t2", TaskType: TaskCustom, CronExpression: "0 9 * * *"}))

	s.StopAll()
	assert.Empty(t, s.TrackedTasks())
	assert.Empty(t, s.cron.Entries())
}

func TestRegisterHandlerRejectsDuplicates(t *testing.T) {
	s := New(testDB(t), nil, nil, true)
	noop := func(ctx context.Context, task *Task) error { return nil }
	require.NoError(t, s.RegisterHandler(TaskCustom, noop))
	assert.Error(t, s.RegisterHandler(TaskCustom, noop))
}
