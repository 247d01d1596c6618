// Package app builds the tracker's repositories and services from configuration.
// The server, the worker and lifectl share it so every binary wires the core the same way.
package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/benvon/life-tracker/internal/compiler"
	"github.com/benvon/life-tracker/internal/config"
	"github.com/benvon/life-tracker/internal/database"
	"github.com/benvon/life-tracker/internal/ingest"
	"github.com/benvon/life-tracker/internal/nutrition"
	"github.com/benvon/life-tracker/internal/progress"
	"github.com/benvon/life-tracker/internal/queue"
	"github.com/benvon/life-tracker/internal/services/ai"
	"go.uber.org/zap"
)

// Services holds the repositories and services built over one database handle
type Services struct {
	DB         *database.DB
	Pending    *database.PendingLogRepository
	Checklists *database.ChecklistRepository
	Milestones *database.MilestoneRepository
	RateLimits *database.RatelimitConfigRepository
	Compiler   *compiler.DayCompiler
	Engine     *progress.Engine
	Progress   *progress.Service
	// Ingestor is nil until EnableIngestion succeeds
	Ingestor *ingest.Ingestor
}

// OpenDatabase connects with the configured driver and applies the schema
func OpenDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.New(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewServices builds the compiler and the progress service over db
func NewServices(db *database.DB, cfg *config.Config, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	goals := database.NewGoalRepository(db)
	checklists := database.NewChecklistRepository(db)
	pending := database.NewPendingLogRepository(db)
	history := database.NewProgressHistoryRepository(db)
	milestones := database.NewMilestoneRepository(db)

	engine := progress.NewEngine(
		goals,
		milestones,
		checklists,
		database.NewMetricRepository(db),
		progress.Thresholds{Two: cfg.StarThreshold2, Three: cfg.StarThreshold3},
		logger,
	)

	return &Services{
		DB:         db,
		Pending:    pending,
		Checklists: checklists,
		Milestones: milestones,
		RateLimits: database.NewRatelimitConfigRepository(db),
		Compiler:   compiler.NewDayCompiler(db, pending, database.NewLogRepository(db), logger),
		Engine:     engine,
		Progress:   progress.NewService(engine, goals, history, logger),
	}
}

// EnableIngestion builds the LLM-backed ingestor. It fails when no provider can be created.
func (s *Services) EnableIngestion(cfg *config.Config, logger *zap.Logger, debugMode bool) error {
	provider, err := NewAIProvider(cfg, logger, debugMode)
	if err != nil {
		return err
	}
	estimator, err := nutrition.NewEstimator()
	if err != nil {
		return err
	}
	s.Ingestor = ingest.NewIngestor(provider, estimator, s.DB, s.Pending, logger)
	return nil
}

// NewAIProvider resolves the configured provider through the registry
func NewAIProvider(cfg *config.Config, logger *zap.Logger, debugMode bool) (ai.Provider, error) {
	if cfg.AIAPIKey == "" {
		return nil, fmt.Errorf("AI_API_KEY not configured")
	}

	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry, logger, debugMode)

	return registry.GetProvider(cfg.AIProvider, map[string]string{
		"api_key":         cfg.AIAPIKey,
		"model":           cfg.AIModel,
		"base_url":        cfg.AIBaseURL,
		"timeout_seconds": strconv.Itoa(int(cfg.AITimeout / time.Second)),
	})
}

// ConnectQueue dials RabbitMQ, retrying with exponential backoff while the broker starts up
func ConnectQueue(ctx context.Context, amqpURL string, logger *zap.Logger) (*queue.RabbitMQQueue, error) {
	const (
		maxRetries   = 10
		initialDelay = 2 * time.Second
		maxDelay     = 30 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(amqpURL, logger)
		if err == nil {
			return q, nil
		}
		lastErr = err

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > maxDelay {
			delay = maxDelay
		}
		logger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", maxRetries, lastErr)
}
