package repository

import (
	"context"
	"time"

	"github.com/ntroshin/orderflow/internal/domain/model"
)

// IdempotencyStore persists at-most-once execution guards keyed by
// (caller, route, idempotency key).
type IdempotencyStore interface {
	// Reserve claims the key for execution. created is true when this call
	// won the reservation (including taking over an expired entry); when
	// false, the returned record is the live entry for the key and may or
	// may not already hold a captured response.
	Reserve(ctx context.Context, caller, route, key string, ttl time.Duration) (*model.IdempotencyRecord, bool, error)
	// Complete stores the response to replay for repeat calls.
	Complete(ctx context.Context, caller, route, key string, status int, body []byte) error
}
