package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL        string
	DatabaseDriver     string
	ServerPort         string
	FrontendURL        string
	EnableHSTS         bool
	RedisURL           string
	RabbitMQURL        string
	RabbitMQPrefetch   int
	AIProvider         string
	AIAPIKey           string
	AIBaseURL          string
	AIModel            string
	AITimeout          time.Duration
	StarThreshold2     float64
	StarThreshold3     float64
	NightlyRecomputeAt string
	WorkerDebugMode    bool
	ServerDebugMode    bool
	OTELEnabled        bool
	OTELEndpoint       string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DatabaseDriver:     getEnv("DATABASE_DRIVER", "postgres"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:         getEnvBool("ENABLE_HSTS", false),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:   getEnvInt("RABBITMQ_PREFETCH", 1),
		AIProvider:         getEnv("AI_PROVIDER", "openai"),
		AIAPIKey:           getEnv("AI_API_KEY", ""),
		AIBaseURL:          getEnv("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:            getEnv("AI_MODEL", ""),
		AITimeout:          getEnvDuration("AI_TIMEOUT", 30*time.Second),
		StarThreshold2:     getEnvFloat("STAR_THRESHOLD_2", 70),
		StarThreshold3:     getEnvFloat("STAR_THRESHOLD_3", 90),
		NightlyRecomputeAt: getEnv("NIGHTLY_RECOMPUTE_AT", "23:55"),
		WorkerDebugMode:    getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:    getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("DATABASE_DRIVER must be 'postgres' or 'sqlite3', got %q", cfg.DatabaseDriver)
	}

	if cfg.StarThreshold2 > cfg.StarThreshold3 {
		return nil, fmt.Errorf("STAR_THRESHOLD_2 (%v) must not exceed STAR_THRESHOLD_3 (%v)", cfg.StarThreshold2, cfg.StarThreshold3)
	}

	// The provider takes whole seconds
	if cfg.AITimeout < time.Second {
		return nil, fmt.Errorf("AI_TIMEOUT must be at least 1s, got %v", cfg.AITimeout)
	}

	if _, err := time.Parse("15:04", cfg.NightlyRecomputeAt); err != nil {
		return nil, fmt.Errorf("NIGHTLY_RECOMPUTE_AT must be HH:MM: %w", err)
	}

	return cfg, nil
}

// QueueEnabled reports whether compile and recompute work is handed to the worker.
func (c *Config) QueueEnabled() bool {
	return c.RabbitMQURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
