package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leadgen/internal/assistant"
	"leadgen/internal/crm"
)

type scheduleCampaignArgs struct {
	LeadIDs      []string `json:"lead_ids"`
	CampaignType string   `json:"campaign_type"`
	ScheduleTime string   `json:"schedule_time"`
}

func registerCampaignTools(reg *Registry, svc *crm.Service) error {
	return reg.Register(assistant.ToolDefinition{
		Name:        "schedule_campaign",
		Description: "Schedule an email campaign for specific leads",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"lead_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Array of lead IDs to include",
				},
				"campaign_type": map[string]any{
					"type":        "string",
					"enum":        []string{"immediate", "scheduled", "drip"},
					"description": "Type of campaign",
				},
				"schedule_time": map[string]any{
					"type":        "string",
					"description": "ISO timestamp for scheduled campaigns",
				},
			},
			"required": []string{"lead_ids", "campaign_type"},
		},
	}, func(ctx context.Context, args json.RawMessage) (any, error) {
		var a scheduleCampaignArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		if len(a.LeadIDs) == 0 {
			return nil, fmt.Errorf("lead_ids required")
		}

		var scheduleTime *time.Time
		if a.ScheduleTime != "" {
			t, err := time.Parse(time.RFC3339, a.ScheduleTime)
			if err != nil {
				return nil, fmt.Errorf("invalid schedule_time: %w", err)
			}
			scheduleTime = &t
		}
		return svc.ScheduleCampaign(ctx, a.LeadIDs, a.CampaignType, scheduleTime)
	})
}
