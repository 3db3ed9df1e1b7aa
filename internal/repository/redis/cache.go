package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bennettabowman-ui/conkord/internal/config"
	"github.com/bennettabowman-ui/conkord/internal/domain"
)

// Cache provides Redis caching for recent analysis results and per-caller
// rate-limit counters. It never sits on the core pipeline path.
type Cache struct {
	client *redis.Client
}

// Key prefixes for different cache types.
const (
	PrefixResult    = "result:"
	PrefixRateLimit = "ratelimit:"
)

// Default TTLs.
const (
	ResultTTL       = 1 * time.Hour
	RateLimitWindow = 1 * time.Minute
)

// New creates a new Redis cache client.
func New(cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Health checks Redis connectivity.
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Client returns the underlying Redis client for advanced operations.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// GetResult retrieves a cached analysis result for a normalized URL. A miss
// returns (nil, nil).
func (c *Cache) GetResult(ctx context.Context, normalizedURL string) (*domain.AnalysisResult, error) {
	data, err := c.client.Get(ctx, PrefixResult+normalizedURL).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// SetResult caches an analysis result by normalized URL.
func (c *Cache) SetResult(ctx context.Context, normalizedURL string, result *domain.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, PrefixResult+normalizedURL, data, ResultTTL).Err()
}

// InvalidateResult drops a cached result.
func (c *Cache) InvalidateResult(ctx context.Context, normalizedURL string) error {
	return c.client.Del(ctx, PrefixResult+normalizedURL).Err()
}

// CheckRateLimit increments the caller's counter for the current window and
// reports whether the call is allowed.
func (c *Cache) CheckRateLimit(ctx context.Context, key string, limit int) (bool, int, error) {
	fullKey := PrefixRateLimit + key

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, RateLimitWindow)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, err
	}

	count := int(incr.Val())
	return count <= limit, count, nil
}

// GetRateLimitRemaining returns how many calls remain in the window.
func (c *Cache) GetRateLimitRemaining(ctx context.Context, key string, limit int) (int, error) {
	count, err := c.client.Get(ctx, PrefixRateLimit+key).Int()
	if err != nil {
		if err == redis.Nil {
			return limit, nil
		}
		return 0, err
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

// Get retrieves a raw value from cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set stores a raw value in cache.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a value from cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
