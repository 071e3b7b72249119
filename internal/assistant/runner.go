package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Runner drives a conversation run to a terminal state: append the
// message, start a run, poll status, dispatch required tool calls and
// submit their outputs until the run completes or fails.
type Runner struct {
	API          RunAPI
	Tools        ToolExecutor
	DB           *gorm.DB
	Logger       *slog.Logger
	PollInterval time.Duration

	mu        sync.Mutex
	threads   map[string]string
	userLocks map[string]*sync.Mutex
}

func NewRunner(api RunAPI, tools ToolExecutor, db *gorm.DB, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		API:          api,
		Tools:        tools,
		DB:           db,
		Logger:       logger,
		PollInterval: time.Second,
		threads:      make(map[string]string),
		userLocks:    make(map[string]*sync.Mutex),
	}
}

// SendMessage runs one full exchange for the user and returns the
// assistant's reply. Exchanges for the same user are serialized; a
// second call blocks until the first one's run is terminal, so tool
// output submissions never interleave on one run.
func (r *Runner) SendMessage(ctx context.Context, userID, text string) (string, error) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	threadID, err := r.threadFor(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resolve thread for user %s: %w", userID, err)
	}

	if err := r.API.AddMessage(ctx, threadID, text); err != nil {
		return "", fmt.Errorf("append message: %w", err)
	}

	runID, err := r.API.CreateRun(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	return r.waitForCompletion(ctx, threadID, runID)
}

func (r *Runner) userLock(userID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		r.userLocks[userID] = l
	}
	return l
}

// waitForCompletion polls run status at PollInterval until terminal.
// requires_action dispatches tool calls and resumes polling.
func (r *Runner) waitForCompletion(ctx context.Context, threadID, runID string) (string, error) {
	for {
		state, err := r.API.GetRun(ctx, threadID, runID)
		if err != nil {
			return "", fmt.Errorf("poll run %s: %w", runID, err)
		}

		switch state.Status {
		case RunCompleted:
			return r.API.LatestAssistantMessage(ctx, threadID)
		case RunRequiresAction:
			if err := r.handleToolCalls(ctx, threadID, runID, state.ToolCalls); err != nil {
				return "", err
			}
			continue
		case RunFailed, RunCancelled:
			return "", &RunFailedError{Status: state.Status, Reason: state.FailureReason}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.PollInterval):
		}
	}
}

// handleToolCalls executes every pending tool call and submits all
// outputs in one batched call. A tool failure is serialized into its
// output so the run keeps going; only a submission failure aborts.
func (r *Runner) handleToolCalls(ctx context.Context, threadID, runID string, calls []ToolCall) error {
	outputs := make([]ToolOutput, 0, len(calls))
	for _, call := range calls {
		outputs = append(outputs, ToolOutput{
			ToolCallID: call.ID,
			Output:     r.executeTool(ctx, call),
		})
	}

	if err := r.API.SubmitToolOutputs(ctx, threadID, runID, outputs); err != nil {
		return fmt.Errorf("%w: run %s: %v", ErrSubmission, runID, err)
	}
	return nil
}

func (r *Runner) executeTool(ctx context.Context, call ToolCall) string {
	result, err := r.Tools.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		r.Logger.Error("tool call failed", "tool", call.Name, "error", err)
		out, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(out)
	}

	out, err := json.Marshal(result)
	if err != nil {
		out, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	return string(out)
}
