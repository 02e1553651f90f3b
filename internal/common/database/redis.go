// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"samarkand-dashboard/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the client used by the shared chat context backend.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a client and verifies it with a ping.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	client := &RedisClient{Client: rdb}
	if err := client.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return client, nil
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
