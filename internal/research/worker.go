package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"leadgen/internal/crm"
)

// Request is the payload carried by jobs on the research queue.
type Request struct {
	LeadID string `json:"lead_id"`
	Query  string `json:"query,omitempty"`
	Depth  string `json:"depth,omitempty"` // quick/standard/deep
}

// Worker handles research queue jobs: look the lead up, run the
// search, store the findings and advance the lead's status.
type Worker struct {
	Leads    *crm.Service
	Searcher Searcher
	Logger   *slog.Logger
}

func NewWorker(leads *crm.Service, searcher Searcher, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{Leads: leads, Searcher: searcher, Logger: logger}
}

// Handle is the queue.Handler for the research queue.
func (w *Worker) Handle(ctx context.Context, payload json.RawMessage) error {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("bad research payload: %w", err)
	}
	if req.LeadID == "" {
		return fmt.Errorf("research payload missing lead_id")
	}

	lead, err := w.Leads.GetLead(ctx, req.LeadID)
	if err != nil {
		return err
	}

	query := req.Query
	if query == "" {
		query = strings.TrimSpace(lead.Name + " " + lead.Company)
	}

	w.Logger.Info("researching lead", "lead_id", lead.ID, "query", query, "depth", req.Depth)
	results, err := w.Searcher.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("research search for lead %s: %w", lead.ID, err)
	}

	notes := formatNotes(results)
	if err := w.Leads.MarkResearched(ctx, lead.ID, notes); err != nil {
		return err
	}
	return nil
}

func formatNotes(results []SearchResult) string {
	if len(results) == 0 {
		return "research found no results"
	}
	var b strings.Builder
	for i, r := range results {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", r.Title, r.Link, r.Snippet)
	}
	return b.String()
}
