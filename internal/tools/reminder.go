package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"leadgen/internal/assistant"
	"leadgen/internal/scheduler"
)

type setReminderArgs struct {
	TaskType    string          `json:"task_type"`
	Schedule    string          `json:"schedule"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

func registerReminderTools(reg *Registry, sched *scheduler.Scheduler) error {
	return reg.Register(assistant.ToolDefinition{
		Name:        "set_reminder",
		Description: "Set a reminder or scheduled task",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task_type": map[string]any{
					"type":        "string",
					"description": "Type of task to schedule",
				},
				"schedule": map[string]any{
					"type":        "string",
					"description": "Cron expression or natural-language schedule",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Task description",
				},
			},
			"required": []string{"task_type", "schedule"},
		},
	}, func(ctx context.Context, args json.RawMessage) (any, error) {
		var a setReminderArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		if a.TaskType == "" || a.Schedule == "" {
			return nil, fmt.Errorf("task_type and schedule required")
		}

		task, err := sched.CreateTask(ctx, a.TaskType, a.Schedule, a.Description, a.Parameters)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"task_id":         task.ID,
			"cron_expression": task.CronExpression,
		}, nil
	})
}
