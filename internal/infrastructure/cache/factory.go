package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends are the stores opened from the redis config section. Redis is nil
// when the idempotency store is the in-memory one.
type Backends struct {
	Idempotency shared.IdempotencyStore
	Redis       redis.UniversalClient
	// KeyPrefix is redis.key_prefix, used to namespace sequence keys
	KeyPrefix string
}

// Close releases the idempotency store and the Redis connection
func (b *Backends) Close() error {
	var errs []error
	if b.Idempotency != nil {
		errs = append(errs, b.Idempotency.Close())
	}
	if b.Redis != nil {
		errs = append(errs, b.Redis.Close())
	}
	return errors.Join(errs...)
}

// BackendsOption configures OpenBackends
type BackendsOption func(*backendsOptions)

type backendsOptions struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used to report the selected backend
func WithLogger(logger *zap.Logger) BackendsOption {
	return func(o *backendsOptions) { o.logger = logger }
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. The default allows it; a Redis number source must not.
func WithInMemoryFallback(allow bool) BackendsOption {
	return func(o *backendsOptions) { o.allowFallback = allow }
}

// OpenBackends connects to Redis when it is enabled and builds the idempotency
// store on that connection. An in-memory store does not share keys across
// instances, so one Idempotency-Key may be processed once per instance.
func OpenBackends(ctx context.Context, cfg config.RedisConfig, opts ...BackendsOption) (*Backends, error) {
	o := backendsOptions{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.Enabled {
		o.logger.Info("Redis disabled, using in-memory idempotency store")
		return &Backends{Idempotency: NewInMemoryIdempotencyStore()}, nil
	}

	redisOpts := OptionsFromConfig(cfg)
	client, err := NewRedisClient(ctx, redisOpts)
	if err != nil {
		if !o.allowFallback {
			return nil, fmt.Errorf("Redis required but unavailable: %w", err)
		}
		o.logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
			zap.String("addr", redisOpts.Addr),
			zap.Error(err),
		)
		return &Backends{Idempotency: NewInMemoryIdempotencyStore()}, nil
	}

	o.logger.Info("Using Redis for idempotency keys", zap.String("addr", redisOpts.Addr))
	return &Backends{
		// the store borrows the client; Backends.Close closes it once
		Idempotency: NewRedisIdempotencyStoreWithClient(client, redisOpts.KeyPrefix+defaultIdempotencyPrefix),
		Redis:       client,
		KeyPrefix:   redisOpts.KeyPrefix,
	}, nil
}
