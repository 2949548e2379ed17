package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyPrefix = "idempotency:"
	pendingValue             = "pending"
	completedPrefix          = "done:"
)

// releaseScript deletes the key only while it is still pending
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisIdempotencyStore keeps idempotency keys in Redis, shared by every
// instance of the service
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisIdempotencyStoreWithClient creates a store on an existing client.
// The client is not closed by Close.
func NewRedisIdempotencyStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Claim uses SET NX so exactly one caller wins the key
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, shared.IdempotencyRecord, error) {
	k := s.keyPrefix + key

	ok, err := s.client.SetNX(ctx, k, pendingValue, ttl).Result()
	if err != nil {
		return false, shared.IdempotencyRecord{}, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if ok {
		return true, shared.IdempotencyRecord{}, nil
	}

	val, err := s.client.Get(ctx, k).Result()
	if err == redis.Nil {
		// Expired between SETNX and GET; try once more
		ok, err = s.client.SetNX(ctx, k, pendingValue, ttl).Result()
		if err != nil {
			return false, shared.IdempotencyRecord{}, fmt.Errorf("failed to claim idempotency key: %w", err)
		}
		if ok {
			return true, shared.IdempotencyRecord{}, nil
		}
		return false, shared.IdempotencyRecord{}, nil
	}
	if err != nil {
		return false, shared.IdempotencyRecord{}, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return false, decodeRecord(val), nil
}

// Complete overwrites the pending marker with the result
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, result string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, completedPrefix+result, ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

// Release deletes a pending key; completed keys are left alone
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.keyPrefix + key}, pendingValue).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Close is a no-op; the owner of the client closes it
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

func decodeRecord(val string) shared.IdempotencyRecord {
	if result, ok := strings.CutPrefix(val, completedPrefix); ok {
		return shared.IdempotencyRecord{Completed: true, Result: result}
	}
	return shared.IdempotencyRecord{}
}

// Ensure RedisIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
