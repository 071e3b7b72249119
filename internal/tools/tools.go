package tools

import (
	"net/http"
	"time"

	"leadgen/internal/crm"
	"leadgen/internal/queue"
	"leadgen/internal/research"
	"leadgen/internal/scheduler"
)

// Deps collects the capabilities the default tool set dispatches to.
type Deps struct {
	CRM           *crm.Service
	ResearchQueue *queue.Queue
	Scheduler     *scheduler.Scheduler
	Searcher      research.Searcher
	HTTP          *http.Client
	FetchTimeout  time.Duration
}

// NewDefaultRegistry builds the full tool surface. Registration fails
// fast on wiring mistakes instead of waiting for the first run to hit
// an unknown tool.
func NewDefaultRegistry(d Deps) (*Registry, error) {
	reg := NewRegistry()

	if err := registerLeadTools(reg, d.CRM); err != nil {
		return nil, err
	}
	if err := registerCampaignTools(reg, d.CRM); err != nil {
		return nil, err
	}
	if err := registerAnalyticsTools(reg, d.CRM); err != nil {
		return nil, err
	}
	if err := registerResearchTools(reg, d.ResearchQueue); err != nil {
		return nil, err
	}
	if err := registerReminderTools(reg, d.Scheduler); err != nil {
		return nil, err
	}
	if err := registerWebTools(reg, d.Searcher, d.HTTP, d.FetchTimeout); err != nil {
		return nil, err
	}
	return reg, nil
}
