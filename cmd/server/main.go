package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/life-tracker/internal/app"
	"github.com/benvon/life-tracker/internal/config"
	"github.com/benvon/life-tracker/internal/database"
	"github.com/benvon/life-tracker/internal/handlers"
	"github.com/benvon/life-tracker/internal/logger"
	"github.com/benvon/life-tracker/internal/middleware"
	"github.com/benvon/life-tracker/internal/queue"
	"github.com/benvon/life-tracker/internal/telemetry"
	"go.uber.org/zap"
)

const (
	rateLimitReloadInterval = 1 * time.Minute
	dlqGCInterval           = 1 * time.Hour
	dlqRetention            = 24 * time.Hour
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger("api", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("queue_enabled", cfg.QueueEnabled()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else if tp, err := telemetry.InitTracer(ctx, handlers.ServiceName, cfg.OTELEndpoint); err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracing = true
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	services := app.NewServices(db, cfg, zapLogger)
	if err := services.EnableIngestion(cfg, zapLogger, debugMode); err != nil {
		zapLogger.Warn("failed_to_create_ai_provider_ingestion_disabled", zap.Error(err))
	}

	healthChecker := handlers.NewHealthChecker(db)

	var jobs handlers.JobEnqueuer
	var jobQueue *queue.RabbitMQQueue
	if cfg.QueueEnabled() {
		jobQueue, err = app.ConnectQueue(ctx, cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		jobs = jobQueue
		healthChecker.AddCheck("queue", jobQueue.HealthCheck)
		zapLogger.Info("connected_to_rabbitmq")
	}

	var ingestLimit func(http.Handler) http.Handler
	var rateLimitReloader *middleware.RateLimitReloader
	if cfg.RedisURL != "" {
		redisClient, err := middleware.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		store, err := middleware.NewRedisStore(redisClient)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
		}
		rateLimitReloader = middleware.NewRateLimitReloader(store, services.RateLimits, database.IngestRatelimitKey, "", zapLogger, rateLimitReloadInterval)
		ingestLimit = rateLimitReloader.Middleware()
		healthChecker.AddCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
		zapLogger.Info("connected_to_redis")
	}

	openAPIHandler, err := handlers.NewOpenAPIHandler()
	if err != nil {
		zapLogger.Fatal("failed_to_load_openapi_description", zap.Error(err))
	}

	routerCfg := handlers.RouterConfig{
		Compiler:       services.Compiler,
		Progress:       services.Progress,
		Checklists:     services.Checklists,
		Milestones:     services.Milestones,
		Jobs:           jobs,
		Health:         healthChecker,
		OpenAPI:        openAPIHandler,
		IngestLimit:    ingestLimit,
		Location:       time.Local,
		FrontendURL:    cfg.FrontendURL,
		EnableHSTS:     cfg.EnableHSTS,
		Tracing:        tracing,
		RequestTimeout: middleware.DefaultRequestTimeout,
		Logger:         zapLogger,
	}
	if services.Ingestor != nil {
		routerCfg.Pending = services.Ingestor
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handlers.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      middleware.DefaultRequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	if rateLimitReloader != nil {
		go rateLimitReloader.Start(ctx)
	}
	if jobQueue != nil {
		dlqGC := queue.NewGarbageCollector(jobQueue, dlqGCInterval, dlqRetention, zapLogger)
		go func() {
			if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", dlqGCInterval),
			zap.Duration("retention", dlqRetention),
		)
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		zapLogger.Error("server_failed", zap.Error(err))
	}

	zapLogger.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	zapLogger.Info("server_exited")
}
