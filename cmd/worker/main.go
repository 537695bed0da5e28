package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ownerassign/ownerassign/internal/app"
	jobmetrics "github.com/ownerassign/ownerassign/internal/jobs"
	"github.com/ownerassign/ownerassign/internal/listings"
	"github.com/ownerassign/ownerassign/internal/platform/db"
	"github.com/ownerassign/ownerassign/internal/provision"
	"github.com/ownerassign/ownerassign/internal/rbac"
	"github.com/ownerassign/ownerassign/internal/shared"
	"github.com/ownerassign/ownerassign/internal/users"
	"github.com/ownerassign/ownerassign/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	listingsService := listings.NewService(listings.NewRepository(pool), rbac.NewService(pool))
	provisionService := provision.NewService(listingsService, users.NewService(users.NewRepository(pool)), logger,
		provision.WithAuditor(shared.NewAuditLogger(pool)),
	)
	provisionJob := &jobs.ProvisionJob{
		Provisioner: provisionService,
		Sweep:       listingsService,
		Logger:      logger,
		Metrics:     jobmetrics.NewMetrics(nil),
	}

	var cron []jobs.CronRegistration
	if cfg.SweepCron != "" {
		sweepTask, err := jobs.NewProvisionListingsTask(jobs.ProvisionListingsPayload{})
		if err != nil {
			logger.Error("build sweep task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.SweepCron,
			Task:    sweepTask,
			Options: []asynq.Option{asynq.MaxRetry(3)},
		})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskProvisionListings, Handler: provisionJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
