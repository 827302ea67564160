package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gudangchat/gudangchat/internal/app"
	"github.com/gudangchat/gudangchat/internal/catalog"
	"github.com/gudangchat/gudangchat/internal/commit"
	"github.com/gudangchat/gudangchat/internal/contacts"
	"github.com/gudangchat/gudangchat/internal/draft"
	"github.com/gudangchat/gudangchat/internal/extract"
	"github.com/gudangchat/gudangchat/internal/observability"
	"github.com/gudangchat/gudangchat/internal/platform/cache"
	"github.com/gudangchat/gudangchat/internal/platform/db"
	"github.com/gudangchat/gudangchat/jobs"
)

func main() {
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
		logger.Warn("redis unavailable, snapshot caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	extractor, err := extract.NewGroqClient(extract.Config{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		TextModel:   cfg.GroqTextModel,
		VisionModel: cfg.GroqVisionModel,
		Timeout:     cfg.GroqTimeout,
	}, logger)
	if err != nil {
		logger.Error("init extractor", slog.Any("error", err))
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(pool)
	snapshots := catalog.NewSnapshots(catalogRepo, redisClient, cfg.SnapshotTTL)
	contactsRepo := contacts.NewRepository(pool)
	commitRepo := commit.NewRepository(pool)
	commitService := commit.NewService(commitRepo, logger)
	draftService := draft.NewService(extractor, snapshots, logger)

	var jobsHandler *jobs.Handler
	var jobsClient *jobs.Client
	if redisClient != nil {
		jobsClient, err = jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Error("init jobs client", slog.Any("error", err))
			os.Exit(1)
		}
		defer jobsClient.Close()
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		jobsHandler = jobs.NewHandler(inspector, jobsClient, logger)
	}

	afterCommit := func(ctx context.Context) {
		if jobsClient != nil {
			if _, err := jobsClient.EnqueueSnapshotWarmup(ctx); err == nil {
				return
			}
		}
		if err := snapshots.Invalidate(ctx); err != nil {
			logger.Warn("invalidate snapshot", slog.Any("error", err))
		}
	}

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Metrics:         metrics,
		DraftHandler:    draft.NewHandler(logger, draftService),
		CommitHandler:   commit.NewHandler(logger, commitService, afterCommit),
		CatalogHandler:  catalog.NewHandler(logger, catalogRepo),
		ContactsHandler: contacts.NewHandler(logger, contactsRepo),
		JobsHandler:     jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
