package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so that a retried mutation
// (for example a fulfillment POST resent after a timeout) is applied once
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget removes a key so the request may be retried, used when the
	// guarded operation failed after the key was marked
	Forget(ctx context.Context, key string) error

	// Complete stores the outcome of the guarded operation under a marked
	// key so that a repeat of the request can be answered with it
	Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error

	// Result returns what Complete stored. ok is false while the first
	// request is still running or when the key is unknown.
	Result(ctx context.Context, key string) (result []byte, ok bool, err error)

	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a processed key is remembered
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
