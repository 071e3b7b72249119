package tools

import (
	"context"
	"encoding/json"

	"leadgen/internal/assistant"
	"leadgen/internal/crm"
)

type analyticsArgs struct {
	MetricType string `json:"metric_type"`
	TimeRange  string `json:"time_range"`
}

func registerAnalyticsTools(reg *Registry, svc *crm.Service) error {
	return reg.Register(assistant.ToolDefinition{
		Name:        "get_analytics",
		Description: "Get campaign analytics and performance metrics",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"metric_type": map[string]any{
					"type":        "string",
					"enum":        []string{"overview", "campaign", "lead", "email"},
					"description": "Type of analytics to retrieve",
				},
				"time_range": map[string]any{
					"type":        "string",
					"enum":        []string{"today", "week", "month", "all"},
					"description": "Time range for analytics",
				},
			},
			"required": []string{"metric_type"},
		},
	}, func(ctx context.Context, args json.RawMessage) (any, error) {
		var a analyticsArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		if a.MetricType == "campaign" {
			return svc.CheckCampaignPerformance(ctx)
		}
		return svc.Overview(ctx)
	})
}
