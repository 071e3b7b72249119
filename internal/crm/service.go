package crm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrLeadNotFound = errors.New("lead not found")

// Service is the domain glue around leads, campaigns and analytics.
// The assistant core treats these operations as opaque capabilities.
type Service struct {
	DB *gorm.DB
}

type LeadQuery struct {
	Status string
	Search string
	Limit  int
}

type LeadBrief struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Status  string `json:"status"`
}

type LeadSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Recent   []LeadBrief    `json:"recent"`
}

type LeadQueryResult struct {
	Count   int         `json:"count"`
	Leads   []Lead      `json:"leads"`
	Summary LeadSummary `json:"summary"`
}

// QueryLeads filters the lead table by status and a free-text search
// over name, email and company.
func (s *Service) QueryLeads(ctx context.Context, q LeadQuery) (*LeadQueryResult, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}

	tx := s.DB.WithContext(ctx).Model(&Lead{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		pat := "%" + q.Search + "%"
		tx = tx.Where(
			"lower(name) LIKE lower(?) OR lower(email) LIKE lower(?) OR lower(company) LIKE lower(?)",
			pat, pat, pat,
		)
	}

	var leads []Lead
	if err := tx.Limit(q.Limit).Find(&leads).Error; err != nil {
		return nil, err
	}

	return &LeadQueryResult{
		Count:   len(leads),
		Leads:   leads,
		Summary: summarize(leads),
	}, nil
}

func summarize(leads []Lead) LeadSummary {
	byStatus := make(map[string]int)
	for _, l := range leads {
		byStatus[l.Status]++
	}
	recent := make([]LeadBrief, 0, 3)
	for _, l := range leads[:min(3, len(leads))] {
		recent = append(recent, LeadBrief{Name: l.Name, Company: l.Company, Status: l.Status})
	}
	return LeadSummary{Total: len(leads), ByStatus: byStatus, Recent: recent}
}

// MarkResearched advances a lead out of the new state and appends the
// research notes.
func (s *Service) MarkResearched(ctx context.Context, leadID, notes string) error {
	res := s.DB.WithContext(ctx).Model(&Lead{}).
		Where("id = ?", leadID).
		Updates(map[string]any{
			"status":     LeadResearched,
			"notes":      notes,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrLeadNotFound, leadID)
	}
	return nil
}

func (s *Service) GetLead(ctx context.Context, leadID string) (*Lead, error) {
	var l Lead
	err := s.DB.WithContext(ctx).First(&l, "id = ?", leadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrLeadNotFound, leadID)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ScheduleCampaign records a campaign over the given leads.
func (s *Service) ScheduleCampaign(ctx context.Context, leadIDs []string, campaignType string, scheduleTime *time.Time) (*Campaign, error) {
	c := Campaign{
		ID:           uuid.NewString(),
		Name:         fmt.Sprintf("%s campaign %s", campaignType, time.Now().UTC().Format("2006-01-02")),
		LeadIDs:      leadIDs,
		CampaignType: campaignType,
		ScheduleTime: scheduleTime,
		Status:       "scheduled",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

type CampaignPerformance struct {
	NeedsAttention   bool     `json:"needs_attention"`
	Recommendation   string   `json:"recommendation"`
	SuggestedActions []string `json:"suggested_actions"`
}

// CheckCampaignPerformance flags campaigns whose reply rate is below
// the attention threshold.
func (s *Service) CheckCampaignPerformance(ctx context.Context) (*CampaignPerformance, error) {
	metrics, err := s.latestMetrics(ctx)
	if err != nil {
		return nil, err
	}

	perf := &CampaignPerformance{}
	if metrics["reply_rate"] < 0.05 {
		perf.NeedsAttention = true
		perf.Recommendation = "Consider revising email content"
		perf.SuggestedActions = []string{"pause campaign", "update messaging"}
	}
	return perf, nil
}

// Overview aggregates lead counts, campaign counts and the latest
// metric samples for the get_analytics tool and reports.
func (s *Service) Overview(ctx context.Context) (map[string]any, error) {
	var statusCounts []struct {
		Status string
		N      int
	}
	if err := s.DB.WithContext(ctx).Model(&Lead{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}
	leadsByStatus := make(map[string]int)
	total := 0
	for _, sc := range statusCounts {
		leadsByStatus[sc.Status] = sc.N
		total += sc.N
	}

	var activeCampaigns int64
	if err := s.DB.WithContext(ctx).Model(&Campaign{}).
		Where("status IN ?", []string{"scheduled", "active"}).
		Count(&activeCampaigns).Error; err != nil {
		return nil, err
	}

	metrics, err := s.latestMetrics(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"leads_total":      total,
		"leads_by_status":  leadsByStatus,
		"active_campaigns": activeCampaigns,
		"metrics":          metrics,
	}, nil
}

func (s *Service) latestMetrics(ctx context.Context) (map[string]float64, error) {
	var rows []AnalyticsMetric
	if err := s.DB.WithContext(ctx).
		Order("recorded_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	// Later samples win.
	out := make(map[string]float64)
	for _, r := range rows {
		out[r.Metric] = r.Value
	}
	return out, nil
}
