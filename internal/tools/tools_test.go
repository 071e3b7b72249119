package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"leadgen/internal/crm"
	"leadgen/internal/queue"
	"leadgen/internal/research"
	"leadgen/internal/scheduler"
)

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, query string) ([]research.SearchResult, error) {
	return []research.SearchResult{{Title: "t", Link: "l", Snippet: "s"}}, nil
}

func testDeps(t *testing.T) (Deps, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&queue.Job{}, &scheduler.Task{}, &scheduler.TaskExecution{},
		&crm.Lead{}, &crm.AnalyticsMetric{},
	))

	return Deps{
		CRM:           &crm.Service{DB: db},
		ResearchQueue: queue.New("research", &queue.Store{DB: db}, nil),
		Scheduler:     scheduler.New(db, nil, nil, true),
		Searcher:      stubSearcher{},
	}, db
}

func TestDefaultRegistryHasFullToolSurface(t *testing.T) {
	deps, _ := testDeps(t)
	reg, err := NewDefaultRegistry(deps)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"fetch_page", "get_analytics", "query_leads",
		"research_lead", "schedule_campaign", "set_reminder", "web_search",
	}, reg.Names())
	assert.Len(t, reg.Definitions(), 7)
}

func TestResearchLeadEnqueuesJob(t *testing.T) {
	deps, db := testDeps(t)
	reg, err := NewDefaultRegistry(deps)
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), "research_lead",
		json.RawMessage(`{"lead_id":"L1","research_depth":"quick"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"queued": true, "lead_id": "L1"}, out)

	var job queue.Job
	require.NoError(t, db.First(&job).Error)
	assert.Equal(t, "research", job.Queue)
	assert.Equal(t, queue.StatusPending, job.Status)

	var req research.Request
	require.NoError(t, json.Unmarshal(job.Payload, &req))
	assert.Equal(t, "L1", req.LeadID)
	assert.Equal(t, "quick", req.Depth)
}

func TestSetReminderCreatesScheduledTask(t *testing.T) {
	deps, db := testDeps(t)
	reg, err := NewDefaultRegistry(deps)
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), "set_reminder",
		json.RawMessage(`{"task_type":"lead_research","schedule":"every 30 minutes","description":"x"}`))
	require.NoError(t, err)

	res, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "*/30 * * * *", res["cron_expression"])

	var task scheduler.Task
	require.NoError(t, db.First(&task).Error)
	assert.Equal(t, "*/30 * * * *", task.CronExpression)
	assert.Equal(t, "lead_research", task.TaskType)
}

func TestQueryLeadsToolFiltersByStatus(t *testing.T) {
	deps, db := testDeps(t)
	require.NoError(t, db.Create(&crm.Lead{ID: "L1", Name: "Ada", Email: "ada@acme.io", Company: "Acme", Status: crm.LeadNew}).Error)
	require.NoError(t, db.Create(&crm.Lead{ID: "L2", Name: "Grace", Email: "grace@initech.io", Company: "Initech", Status: crm.LeadReplied}).Error)

	reg, err := NewDefaultRegistry(deps)
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), "query_leads", json.RawMessage(`{"status":"new"}`))
	require.NoError(t, err)
	res, ok := out.(*crm.LeadQueryResult)
	require.True(t, ok)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "Ada", res.Leads[0].Name)
}

func TestWebSearchTool(t *testing.T) {
	deps, _ := testDeps(t)
	reg, err := NewDefaultRegistry(deps)
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), "web_search", json.RawMessage(`{"query":"acme corp"}`))
	require.NoError(t, err)
	results, ok := out.([]research.SearchResult)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "t", results[0].Title)
}
