package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Handler processes one job payload. A returned error marks the job
// failed; the consumer loop keeps going either way.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Queue is a named producer/consumer channel over the shared jobs table.
type Queue struct {
	Name   string
	Store  *Store
	Logger *slog.Logger
}

func New(name string, store *Store, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{Name: name, Store: store, Logger: logger}
}

// Enqueue inserts a pending job. Storage failures surface to the
// caller; nothing is dropped silently.
func (q *Queue) Enqueue(ctx context.Context, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s queue: %w", q.Name, err)
	}
	if _, err := q.Store.Insert(ctx, q.Name, raw); err != nil {
		q.Logger.Error("enqueue failed", "queue", q.Name, "error", err)
		return err
	}
	return nil
}

// StartConsumer begins the polling loop in a background goroutine.
// Each tick processes at most one job, oldest first. The loop exits
// only when ctx is cancelled.
func (q *Queue) StartConsumer(ctx context.Context, handler Handler, pollInterval time.Duration) {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	go q.consume(ctx, handler, pollInterval)
}

func (q *Queue) consume(ctx context.Context, handler Handler, pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Tick(ctx, handler)
		}
	}
}

// Tick runs one poll cycle: fetch, handle, record the outcome.
// Exposed so tests and operators can drive the queue without the timer.
func (q *Queue) Tick(ctx context.Context, handler Handler) {
	job, err := q.Store.NextPending(ctx, q.Name)
	if err != nil {
		if !errors.Is(err, ErrStorageUnavailable) {
			q.Logger.Error("fetch failed", "queue", q.Name, "error", err)
		}
		return
	}
	if job == nil {
		return
	}

	if err := q.runHandler(ctx, handler, job.Payload); err != nil {
		q.Logger.Error("job failed", "queue", q.Name, "job_id", job.ID, "error", err)
		if err := q.Store.MarkFailed(ctx, job.ID); err != nil {
			q.Logger.Error("mark failed errored", "queue", q.Name, "job_id", job.ID, "error", err)
		}
		return
	}

	if err := q.Store.MarkCompleted(ctx, job.ID); err != nil {
		q.Logger.Error("mark completed errored", "queue", q.Name, "job_id", job.ID, "error", err)
	}
}

// runHandler converts a handler panic into an error so one bad job
// cannot kill the consumer goroutine.
func (q *Queue) runHandler(ctx context.Context, handler Handler, payload json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, payload)
}
