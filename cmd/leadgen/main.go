package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadgen/internal/assistant"
	"leadgen/internal/auth"
	"leadgen/internal/config"
	"leadgen/internal/crm"
	"leadgen/internal/db"
	httpx "leadgen/internal/http"
	"leadgen/internal/notify"
	"leadgen/internal/queue"
	"leadgen/internal/research"
	"leadgen/internal/scheduler"
	"leadgen/internal/tools"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	crmSvc := &crm.Service{DB: gdb}
	notifier := notify.NewService(gdb, logger)
	searcher := research.NewGoogleClient(cfg.GoogleSearchAPIKey, cfg.GoogleSearchEngineID)

	store := &queue.Store{DB: gdb}
	researchQueue := queue.New("research", store, logger)

	ai := assistant.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIAssistantID)
	sched := scheduler.New(gdb, logger, ai, cfg.SchedulerDisabled)

	registry, err := tools.NewDefaultRegistry(tools.Deps{
		CRM:           crmSvc,
		ResearchQueue: researchQueue,
		Scheduler:     sched,
		Searcher:      searcher,
		HTTP:          http.DefaultClient,
		FetchTimeout:  cfg.FetchTimeout,
	})
	if err != nil {
		logger.Error("tool registration failed", "error", err)
		os.Exit(1)
	}

	if err := ai.EnsureAssistant(ctx, "Lead Generation Partner", registry.Definitions()); err != nil {
		logger.Error("assistant bootstrap failed", "error", err)
		os.Exit(1)
	}

	runner := assistant.NewRunner(ai, registry, gdb, logger)
	runner.PollInterval = cfg.RunPollInterval

	if err := registerTaskHandlers(sched, crmSvc, researchQueue, notifier, ai); err != nil {
		logger.Error("task handler registration failed", "error", err)
		os.Exit(1)
	}
	if err := seedProactiveTasks(ctx, sched); err != nil {
		logger.Error("task seeding failed", "error", err)
	}
	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}

	worker := research.NewWorker(crmSvc, searcher, logger)
	researchQueue.StartConsumer(ctx, worker.Handle, cfg.QueuePollInterval)

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	r := httpx.NewRouter(cfg, gdb, jwtSvc, runner, sched)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	sched.StopAll()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

// registerTaskHandlers binds the scheduler's task types to their
// proactive behaviors.
func registerTaskHandlers(sched *scheduler.Scheduler, crmSvc *crm.Service, researchQueue *queue.Queue, notifier *notify.Service, ai *assistant.OpenAI) error {
	if err := sched.RegisterHandler(scheduler.TaskCampaignCheck, func(ctx context.Context, task *scheduler.Task) error {
		perf, err := crmSvc.CheckCampaignPerformance(ctx)
		if err != nil {
			return err
		}
		if !perf.NeedsAttention {
			return nil
		}
		return notifier.Send(ctx, notify.Notification{
			Type:     "campaign_alert",
			Title:    "Campaign needs attention",
			Content:  perf.Recommendation,
			Priority: "high",
		})
	}); err != nil {
		return err
	}

	if err := sched.RegisterHandler(scheduler.TaskLeadResearch, func(ctx context.Context, task *scheduler.Task) error {
		res, err := crmSvc.QueryLeads(ctx, crm.LeadQuery{Status: crm.LeadNew, Limit: 10})
		if err != nil {
			return err
		}
		for _, lead := range res.Leads {
			if err := researchQueue.Enqueue(ctx, research.Request{LeadID: lead.ID}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := sched.RegisterHandler(scheduler.TaskSendReport, func(ctx context.Context, task *scheduler.Task) error {
		overview, err := crmSvc.Overview(ctx)
		if err != nil {
			return err
		}
		insight, err := ai.GenerateInsight(ctx, overview)
		if err != nil {
			return err
		}
		return notifier.Send(ctx, notify.Notification{
			Type:    "morning_briefing",
			Title:   "Good morning! Here's your lead generation update",
			Content: insight,
		})
	}); err != nil {
		return err
	}

	return sched.RegisterHandler(scheduler.TaskCustom, func(ctx context.Context, task *scheduler.Task) error {
		var params map[string]any
		if len(task.Parameters) > 0 {
			if err := json.Unmarshal(task.Parameters, &params); err != nil {
				return err
			}
		}
		return notifier.Send(ctx, notify.Notification{
			Type:    "custom_task",
			Title:   task.Description,
			Content: string(task.Parameters),
		})
	})
}

// seedProactiveTasks installs the default recurring behaviors once:
// a morning briefing and an hourly campaign performance check.
func seedProactiveTasks(ctx context.Context, sched *scheduler.Scheduler) error {
	defaults := []struct {
		taskType    string
		schedule    string
		description string
	}{
		{scheduler.TaskSendReport, "0 9 * * *", "Morning briefing"},
		{scheduler.TaskCampaignCheck, "0 * * * *", "Hourly campaign performance check"},
	}

	for _, d := range defaults {
		var n int64
		if err := sched.DB.WithContext(ctx).Model(&scheduler.Task{}).
			Where("task_type = ? AND created_by = ?", d.taskType, "system").
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		task, err := sched.CreateTask(ctx, d.taskType, d.schedule, d.description, nil)
		if err != nil {
			return err
		}
		if err := sched.DB.WithContext(ctx).Model(task).Update("created_by", "system").Error; err != nil {
			return err
		}
	}
	return nil
}
