package assistant

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationThread maps a user to their external thread id. One row
// per user, created lazily on first message, never destroyed. The row
// backs the in-process cache so the mapping survives restarts.
type ConversationThread struct {
	UserID    string    `gorm:"primaryKey"`
	ThreadID  string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ConversationThread) TableName() string { return "conversation_threads" }

// threadFor resolves the user's thread: cache, then the persisted
// mapping, then one-time creation against the run API.
func (r *Runner) threadFor(ctx context.Context, userID string) (string, error) {
	r.mu.Lock()
	if id, ok := r.threads[userID]; ok {
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	if r.DB != nil {
		var row ConversationThread
		err := r.DB.WithContext(ctx).First(&row, "user_id = ?", userID).Error
		if err == nil {
			r.cacheThread(userID, row.ThreadID)
			return row.ThreadID, nil
		}
		if err != gorm.ErrRecordNotFound {
			return "", err
		}
	}

	threadID, err := r.API.CreateThread(ctx, userID)
	if err != nil {
		return "", err
	}
	r.cacheThread(userID, threadID)

	if r.DB != nil {
		row := ConversationThread{UserID: userID, ThreadID: threadID, CreatedAt: time.Now().UTC()}
		if err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"thread_id"}),
		}).Create(&row).Error; err != nil {
			// The exchange can proceed on the cached id; recovery after
			// restart just creates a fresh thread.
			r.Logger.Error("failed to persist thread mapping", "user_id", userID, "error", err)
		}
	}
	return threadID, nil
}

func (r *Runner) cacheThread(userID, threadID string) {
	r.mu.Lock()
	r.threads[userID] = threadID
	r.mu.Unlock()
}
