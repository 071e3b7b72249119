package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"leadgen/internal/assistant"
	"leadgen/internal/queue"
	"leadgen/internal/research"
)

type researchLeadArgs struct {
	LeadID        string `json:"lead_id"`
	ResearchDepth string `json:"research_depth"`
}

// registerResearchTools wires research_lead: it enqueues a job on the
// research queue rather than doing the work inline, so the run replies
// immediately and the queue consumer does the slow part.
func registerResearchTools(reg *Registry, researchQueue *queue.Queue) error {
	return reg.Register(assistant.ToolDefinition{
		Name:        "research_lead",
		Description: "Conduct research on a specific lead",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"lead_id": map[string]any{
					"type":        "string",
					"description": "ID of the lead to research",
				},
				"research_depth": map[string]any{
					"type":        "string",
					"enum":        []string{"quick", "standard", "deep"},
					"description": "How thorough the research should be",
				},
			},
			"required": []string{"lead_id"},
		},
	}, func(ctx context.Context, args json.RawMessage) (any, error) {
		var a researchLeadArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		if a.LeadID == "" {
			return nil, fmt.Errorf("lead_id required")
		}

		err := researchQueue.Enqueue(ctx, research.Request{
			LeadID: a.LeadID,
			Depth:  a.ResearchDepth,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"queued":  true,
			"lead_id": a.LeadID,
		}, nil
	})
}
