package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunRequiresAction RunStatus = "requires_action"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
	RunCancelled      RunStatus = "cancelled"
)

// ToolCall is a structured capability request emitted by a run.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolOutput carries one serialized tool result back to the run.
type ToolOutput struct {
	ToolCallID string
	Output     string
}

// RunState is a snapshot of a run as reported by the external API.
// ToolCalls is populated only when Status is requires_action.
type RunState struct {
	Status        RunStatus
	ToolCalls     []ToolCall
	FailureReason string
}

// RunAPI is the external stateful conversation/run service the driver
// polls. The production implementation wraps the OpenAI Assistants API.
type RunAPI interface {
	CreateThread(ctx context.Context, userID string) (string, error)
	AddMessage(ctx context.Context, threadID, text string) error
	CreateRun(ctx context.Context, threadID string) (string, error)
	GetRun(ctx context.Context, threadID, runID string) (RunState, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error
	LatestAssistantMessage(ctx context.Context, threadID string) (string, error)
}

// ToolExecutor dispatches one tool call. Implemented by tools.Registry.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (any, error)
}

// ErrSubmission marks a failure to deliver tool outputs back to the
// run API. The exchange is abandoned, not retried; the caller decides
// what to do with the stranded run.
var ErrSubmission = errors.New("tool output submission failed")

// RunFailedError reports a run that ended failed or cancelled,
// carrying the upstream reason.
type RunFailedError struct {
	Status RunStatus
	Reason string
}

func (e *RunFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("run %s", e.Status)
	}
	return fmt.Sprintf("run %s: %s", e.Status, e.Reason)
}
