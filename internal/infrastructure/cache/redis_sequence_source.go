package cache

import (
	"context"
	"fmt"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/redis/go-redis/v9"
)

// RedisSequenceSource issues counter suffixes with INCR so that every
// instance sharing the Redis server draws from the same sequence
type RedisSequenceSource struct {
	client    redis.UniversalClient
	keyPrefix string
	width     int
}

// NewRedisSequenceSource creates a source. width <= 0 uses the default counter width.
func NewRedisSequenceSource(client redis.UniversalClient, keyPrefix string, width int) *RedisSequenceSource {
	if width <= 0 {
		width = document.DefaultCounterWidth
	}
	return &RedisSequenceSource{
		client:    client,
		keyPrefix: keyPrefix + "sequence:",
		width:     width,
	}
}

// Key returns the Redis key holding the counter of docType
func (s *RedisSequenceSource) Key(docType document.DocumentType) string {
	return s.keyPrefix + string(docType)
}

// Next implements document.SequenceSource
func (s *RedisSequenceSource) Next(ctx context.Context, docType document.DocumentType) (string, error) {
	if !docType.IsValid() {
		return "", &document.InvalidDocumentTypeError{Value: docType.String()}
	}
	n, err := s.client.Incr(ctx, s.Key(docType)).Result()
	if err != nil {
		return "", fmt.Errorf("failed to increment sequence: %w", err)
	}
	return fmt.Sprintf("%0*d", s.width, n), nil
}

// Seed raises the counter to at least value, used after restoring from the database
func (s *RedisSequenceSource) Seed(ctx context.Context, docType document.DocumentType, value int64) error {
	current, err := s.client.Get(ctx, s.Key(docType)).Int64()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read sequence: %w", err)
	}
	if current >= value {
		return nil
	}
	return s.client.Set(ctx, s.Key(docType), value, 0).Err()
}

// Ensure RedisSequenceSource implements SequenceSource
var _ document.SequenceSource = (*RedisSequenceSource)(nil)
