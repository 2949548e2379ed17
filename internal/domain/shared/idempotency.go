package shared

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyKeyInFlight is returned when a key is claimed by a request that has not finished
var ErrIdempotencyKeyInFlight = errors.New("idempotency key is already being processed")

// IdempotencyRecord is what a store knows about a key
type IdempotencyRecord struct {
	// Completed is false while the claiming request is still running
	Completed bool
	// Result is the value recorded by Complete, typically a document ID
	Result string
}

// IdempotencyStore deduplicates requests and events by key.
// A key moves from absent to claimed (pending) to completed; Release returns
// a claimed key to absent so the caller can retry.
type IdempotencyStore interface {
	// Claim atomically reserves key for ttl. It returns claimed=true when the
	// key was absent; otherwise the existing record is returned.
	Claim(ctx context.Context, key string, ttl time.Duration) (claimed bool, existing IdempotencyRecord, err error)

	// Complete records the result of a claimed key and keeps it for ttl
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Release forgets a claimed key
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed key is remembered
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	// Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
