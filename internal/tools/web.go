package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"leadgen/internal/assistant"
	"leadgen/internal/research"
)

type webSearchArgs struct {
	Query string `json:"query"`
}

type fetchPageArgs struct {
	URL string `json:"url"`
}

func registerWebTools(reg *Registry, searcher research.Searcher, client *http.Client, fetchTimeout time.Duration) error {
	err := reg.Register(assistant.ToolDefinition{
		Name:        "web_search",
		Description: "Search the web for information",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query",
				},
			},
			"required": []string{"query"},
		},
	}, func(ctx context.Context, args json.RawMessage) (any, error) {
		var a webSearchArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		if a.Query == "" {
			return nil, fmt.Errorf("query required")
		}
		return searcher.Search(ctx, a.Query)
	})
	if err != nil {
		return err
	}

	return reg.Register(assistant.ToolDefinition{
		Name:        "fetch_page",
		Description: "Fetch the contents of a web page",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "URL to fetch",
				},
			},
			"required": []string{"url"},
		},
	}, func(ctx context.Context, args json.RawMessage) (any, error) {
		var a fetchPageArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		if a.URL == "" {
			return nil, fmt.Errorf("url required")
		}
		body, err := research.FetchPage(ctx, client, a.URL, fetchTimeout)
		if err != nil {
			return nil, err
		}
		return map[string]string{"content": body}, nil
	})
}
