package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/A-San96/c4-final-project/internal/config"
	"github.com/A-San96/c4-final-project/internal/models"
	"github.com/A-San96/c4-final-project/pkg/logger"
)

// TodoCache keeps each user's todo list in Redis. Every method is best effort:
// failures are logged and reported as a miss.
type TodoCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect parses REDIS_URL, pings the server and returns the cache.
func Connect(ctx context.Context, cfg *config.Config) (*TodoCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.PoolSize = cfg.RedisPoolSize
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	return New(client, cfg.CacheTTL), nil
}

// New wraps an existing client.
func New(client *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{client: client, ttl: ttl}
}

// Key returns the cache key of a user's list.
func Key(userID string) string {
	return "todos:user:" + userID
}

// GetTodos reads the user's list. Returns (nil, false) on miss or error.
func (c *TodoCache) GetTodos(ctx context.Context, userID string) ([]models.TodoItem, bool) {
	b, err := c.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get todos failed", "error", err)
		return nil, false
	}
	var todos []models.TodoItem
	if err := json.Unmarshal(b, &todos); err != nil {
		logger.Debug(ctx, "Redis unmarshal todos failed", "error", err)
		return nil, false
	}
	return todos, true
}

// SetTodos writes the user's list with the configured TTL.
func (c *TodoCache) SetTodos(ctx context.Context, userID string, todos []models.TodoItem) {
	b, err := json.Marshal(todos)
	if err != nil {
		logger.Debug(ctx, "Marshal todos for cache failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, Key(userID), b, c.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set todos failed", "error", err)
	}
}

// InvalidateTodos deletes the user's list so the next read goes to the store.
func (c *TodoCache) InvalidateTodos(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, Key(userID)).Err(); err != nil {
		logger.Warn(ctx, "Redis invalidate todos failed", "error", err, "user_id", userID)
	}
}

// Ping checks the connection.
func (c *TodoCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *TodoCache) Close() error {
	return c.client.Close()
}
