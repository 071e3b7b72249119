package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	if migrate {
		require.NoError(t, db.AutoMigrate(&Job{}))
	}
	return db
}

func TestEnqueueAndProcessOneJob(t *testing.T) {
	db := testDB(t, true)
	q := New("research", &Store{DB: db}, nil)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, map[string]any{"leadId": "L1"}))

	var handled int
	var got map[string]string
	q.Tick(ctx, func(ctx context.Context, payload json.RawMessage) error {
		handled++
		return json.Unmarshal(payload, &got)
	})

	assert.Equal(t, 1, handled)
	assert.Equal(t, "L1", got["leadId"])

	var j Job
	require.NoError(t, db.First(&j).Error)
	assert.Equal(t, StatusCompleted, j.Status)
}

func TestConsumerProcessesOldestFirst(t *testing.T) {
	db := testDB(t, true)
	q := New("research", &Store{DB: db}, nil)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, map[string]string{"id": id}))
	}

	var order []string
	handler := func(ctx context.Context, payload json.RawMessage) error {
		var p map[string]string
		require.NoError(t, json.Unmarshal(payload, &p))
		order = append(order, p["id"])
		return nil
	}

	for range 3 {
		q.Tick(ctx, handler)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestHandlerErrorMarksFailedAndLoopContinues(t *testing.T) {
	db := testDB(t, true)
	q := New("email", &Store{DB: db}, nil)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, map[string]string{"id": "bad"}))
	require.NoError(t, q.Enqueue(ctx, map[string]string{"id": "good"}))

	var handled []string
	handler := func(ctx context.Context, payload json.RawMessage) error {
		var p map[string]string
		require.NoError(t, json.Unmarshal(payload, &p))
		handled = append(handled, p["id"])
		if p["id"] == "bad" {
			return errors.New("boom")
		}
		return nil
	}

	q.Tick(ctx, handler)
	q.Tick(ctx, handler)

	assert.Equal(t, []string{"bad", "good"}, handled)

	var jobs []Job
	require.NoError(t, db.Order("created_at asc, id asc").Find(&jobs).Error)
	require.Len(t, jobs, 2)
	assert.Equal(t, StatusFailed, jobs[0].Status)
	assert.Equal(t, StatusCompleted, jobs[1].Status)
}

func TestHandlerPanicMarksFailed(t *testing.T) {
	db := testDB(t, true)
	q := New("email", &Store{DB: db}, nil)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, map[string]string{"id": "x"}))
	q.Tick(ctx, func(ctx context.Context, payload json.RawMessage) error {
		panic("unexpected payload shape")
	})

	var j Job
	require.NoError(t, db.First(&j).Error)
	assert.Equal(t, StatusFailed, j.Status)
}

func TestTerminalJobNeverReprocessed(t *testing.T) {
	db := testDB(t, true)
	q := New("research", &Store{DB: db}, nil)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, map[string]string{"id": "once"}))

	var handled int
	handler := func(ctx context.Context, payload json.RawMessage) error {
		handled++
		return nil
	}
	q.Tick(ctx, handler)
	q.Tick(ctx, handler)
	q.Tick(ctx, handler)

	assert.Equal(t, 1, handled)
}

func TestQueuesAreIsolated(t *testing.T) {
	db := testDB(t, true)
	store := &Store{DB: db}
	research := New("research", store, nil)
	email := New("email", store, nil)
	ctx := context.Background()

	require.NoError(t, research.Enqueue(ctx, map[string]string{"id": "r"}))

	var handled int
	email.Tick(ctx, func(ctx context.Context, payload json.RawMessage) error {
		handled++
		return nil
	})
	assert.Equal(t, 0, handled)

	research.Tick(ctx, func(ctx context.Context, payload json.RawMessage) error {
		handled++
		return nil
	})
	assert.Equal(t, 1, handled)
}

func TestMissingTableFailsEnqueueLoudly(t *testing.T) {
	db := testDB(t, false)
	q := New("research", &Store{DB: db}, nil)
	ctx := context.Background()

	err := q.Enqueue(ctx, map[string]string{"id": "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	// Consumer side degrades to a no-op instead of crashing.
	q.Tick(ctx, func(ctx context.Context, payload json.RawMessage) error {
		t.Fatal("handler should not run without a jobs table")
		return nil
	})
}

func TestIdenticalPayloadsAreIndependentJobs(t *testing.T) {
	db := testDB(t, true)
	q := New("email", &Store{DB: db}, nil)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, map[string]string{"id": "same"}))
	require.NoError(t, q.Enqueue(ctx, map[string]string{"id": "same"}))

	var handled int
	handler := func(ctx context.Context, payload json.RawMessage) error {
		handled++
		return nil
	}
	q.Tick(ctx, handler)
	q.Tick(ctx, handler)
	assert.Equal(t, 2, handled)
}
