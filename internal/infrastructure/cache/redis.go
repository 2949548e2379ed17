// Package cache holds the Redis and in-memory backends for idempotency keys
// and document number sequences.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisOptions holds Redis connection configuration
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// DialTimeout bounds the initial ping; default 5s
	DialTimeout time.Duration
}

// OptionsFromConfig maps the application config onto RedisOptions
func OptionsFromConfig(cfg config.RedisConfig) RedisOptions {
	return RedisOptions{
		Addr:      cfg.Addr(),
		Password:  cfg.Password,
		DB:        cfg.DB,
		KeyPrefix: cfg.KeyPrefix,
	}
}

// NewRedisClient creates a client and verifies the connection
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	timeout := opts.DialTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}
