package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gudangchat/gudangchat/internal/app"
	"github.com/gudangchat/gudangchat/internal/catalog"
	"github.com/gudangchat/gudangchat/internal/commit"
	"github.com/gudangchat/gudangchat/internal/platform/cache"
	"github.com/gudangchat/gudangchat/internal/platform/db"
	"github.com/gudangchat/gudangchat/jobs"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	catalogRepo := catalog.NewRepository(pool)
	snapshots := catalog.NewSnapshots(catalogRepo, redisClient, cfg.SnapshotTTL)
	commitRepo := commit.NewRepository(pool)
	commitService := commit.NewService(commitRepo, logger)

	recalcAllTask, err := jobs.NewCostRecalcAllTask()
	if err != nil {
		logger.Error("build recalc task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewSnapshotWarmupTask(time.Now())
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCostRecalc, Handler: jobs.NewCostRecalcHandler(commitService, catalogRepo, snapshots, logger)},
			{Type: jobs.TaskSnapshotWarmup, Handler: jobs.NewSnapshotWarmupHandler(snapshots, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: recalcAllTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/30 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
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
