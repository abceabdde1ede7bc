package rotation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter implements integration.KeyRotationCounter backed by a Redis
// hash. This is the deployment default: counts survive process restarts and
// are shared by every orchestrator instance rotating the same credential set.
type RedisCounter struct {
	client *redis.Client
	key    string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisCounter creates a new Redis-backed rotation counter
func NewRedisCounter(cfg RedisConfig) (*RedisCounter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCounter{
		client: client,
		key:    "integration:rotation:counts",
	}, nil
}

// NewRedisCounterWithClient creates a counter with an existing Redis client.
// This is useful for testing or when sharing a client across components
func NewRedisCounterWithClient(client *redis.Client, key string) *RedisCounter {
	if key == "" {
		key = "integration:rotation:counts"
	}
	return &RedisCounter{
		client: client,
		key:    key,
	}
}

// Get returns the current call count per credential index
func (c *RedisCounter) Get(ctx context.Context) (map[string]int, error) {
	raw, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read rotation counts: %w", err)
	}

	counts := make(map[string]int, len(raw))
	for index, value := range raw {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("corrupt rotation count for index %s: %w", index, err)
		}
		counts[index] = n
	}
	return counts, nil
}

// Increment adds one call to the given credential index
func (c *RedisCounter) Increment(ctx context.Context, credentialIndex string) error {
	if err := c.client.HIncrBy(ctx, c.key, credentialIndex, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment rotation count: %w", err)
	}
	return nil
}

// Reset clears all counts
func (c *RedisCounter) Reset(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to reset rotation counts: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisCounter) Close() error {
	return c.client.Close()
}
