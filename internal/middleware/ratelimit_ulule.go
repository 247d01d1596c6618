package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/life-tracker/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	defaultRatelimitRate = "10-M"
	ratelimitKeyPrefix   = "life_tracker_ratelimit"
)

// NewRedisClient connects to redisURL and verifies the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore creates the shared limiter store used by every API instance
func NewRedisStore(client *redis.Client) (limiter.Store, error) {
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:          ratelimitKeyPrefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}

// limitHandler wraps next with a per-client-IP limiter at rate
func limitHandler(store limiter.Store, rate limiter.Rate, next http.Handler, log *zap.Logger) http.Handler {
	mw := stdlibmw.NewMiddleware(
		limiter.New(store, rate),
		stdlibmw.WithKeyGetter(request.ClientIP),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			respondErrorJSON(w, r, http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded, try again later", log)
		}),
		stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("rate_limiter_store_failed", zap.Error(err))
			respondErrorJSON(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Rate limiter unavailable", log)
		}),
	)
	return mw.Handler(next)
}
