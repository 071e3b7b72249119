package tools

import (
	"context"
	"encoding/json"

	"leadgen/internal/assistant"
	"leadgen/internal/crm"
)

type queryLeadsArgs struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
	Search string `json:"search"`
}

func registerLeadTools(reg *Registry, svc *crm.Service) error {
	return reg.Register(assistant.ToolDefinition{
		Name:        "query_leads",
		Description: "Query the lead database with filters",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{
					"type":        "string",
					"enum":        []string{crm.LeadNew, crm.LeadResearched, crm.LeadEmailed, crm.LeadReplied},
					"description": "Filter by lead status",
				},
				"limit": map[string]any{
					"type":        "number",
					"description": "Number of results to return",
				},
				"search": map[string]any{
					"type":        "string",
					"description": "Search term for name, email, or company",
				},
			},
		},
	}, func(ctx context.Context, args json.RawMessage) (any, error) {
		var a queryLeadsArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return svc.QueryLeads(ctx, crm.LeadQuery{
			Status: a.Status,
			Search: a.Search,
			Limit:  a.Limit,
		})
	})
}
