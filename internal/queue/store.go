package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrStorageUnavailable = errors.New("jobs table unavailable")

// Store is the persistence layer for jobs. All queues share one table,
// logically partitioned by the queue column.
//
// Availability of the backing table is checked once and memoized per
// instance, so a missing table degrades consumer polling to no-ops
// instead of hammering the database every tick.
type Store struct {
	DB *gorm.DB

	mu      sync.Mutex
	tableOK *bool
}

func (s *Store) ensureTable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tableOK != nil {
		if !*s.tableOK {
			return ErrStorageUnavailable
		}
		return nil
	}

	ok := s.DB.Migrator().HasTable(&Job{})
	s.tableOK = &ok
	if !ok {
		return ErrStorageUnavailable
	}
	return nil
}

// Insert creates a pending job. The payload must already be serialized;
// the store never inspects it.
func (s *Store) Insert(ctx context.Context, queueName string, payload json.RawMessage) (*Job, error) {
	if err := s.ensureTable(); err != nil {
		return nil, err
	}

	if payload == nil {
		payload = json.RawMessage(`{}`)
	}
	j := Job{
		ID:        uuid.NewString(),
		Queue:     queueName,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&j).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &j, nil
}

// NextPending returns the oldest pending job for the queue, or nil when
// the queue is idle. No row locking: a single consumer per queue is
// assumed, concurrent consumers on the same queue may double-process.
func (s *Store) NextPending(ctx context.Context, queueName string) (*Job, error) {
	if err := s.ensureTable(); err != nil {
		return nil, err
	}

	var j Job
	err := s.DB.WithContext(ctx).
		Where("queue = ? AND status = ?", queueName, StatusPending).
		Order("created_at asc, id asc").
		First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) MarkCompleted(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusCompleted)
}

func (s *Store) MarkFailed(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusFailed)
}

// setStatus only moves jobs out of pending, so a terminal status is
// written at most once.
func (s *Store) setStatus(ctx context.Context, id, status string) error {
	return s.DB.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Update("status", status).Error
}
