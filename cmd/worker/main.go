package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/JiaLiangChen99/robyn-admin/internal/app"
	"github.com/JiaLiangChen99/robyn-admin/internal/platform/db"
	"github.com/JiaLiangChen99/robyn-admin/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditWriter := jobs.NewAuditWriter(pool)

	var cron []jobs.CronRegistration
	if cfg.UploadRetention > 0 {
		scrubTask, err := jobs.NewUploadScrubTask(jobs.UploadScrubPayload{
			Dir:    cfg.UploadDir,
			MaxAge: cfg.UploadRetention,
		})
		if err != nil {
			logger.Error("build scrub task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    "30 2 * * *",
			Task:    scrubTask,
			Options: []asynq.Option{asynq.MaxRetry(3), asynq.Timeout(5 * time.Minute)},
		})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeAuditRecord, Handler: auditWriter.HandleAuditTask},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
