package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ntroshin/orderflow/internal/domain/model"
)

// Reserve claims (caller, route, key) for execution. An insert wins the
// reservation outright; a conflicting live entry loses it; a conflicting
// expired entry is reclaimed and counts as a win.
func (s *idempotencyStore) Reserve(ctx context.Context, caller, route, key string, ttl time.Duration) (*model.IdempotencyRecord, bool, error) {
	const reserve = `INSERT INTO idempotency_keys (caller, route, key, expires_at)
                     VALUES ($1, $2, $3, NOW() + make_interval(secs => $4))
                     ON CONFLICT (caller, route, key) DO UPDATE
                        SET expires_at = EXCLUDED.expires_at,
                            response_status = NULL,
                            response_body = NULL,
                            created_at = NOW()
                        WHERE idempotency_keys.expires_at <= NOW()
                     RETURNING expires_at, created_at`

	rec := model.IdempotencyRecord{Caller: caller, Route: route, Key: key}
	err := s.storage.pool.QueryRow(ctx, reserve, caller, route, key, ttl.Seconds()).Scan(&rec.ExpiresAt, &rec.CreatedAt)
	if err == nil {
		return &rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// Lost to a live entry; hand back whatever it holds so the caller can
	// replay a captured response or report the call as in flight.
	const lookup = `SELECT response_status, response_body, expires_at, created_at
                    FROM idempotency_keys WHERE caller=$1 AND route=$2 AND key=$3`
	err = s.storage.pool.QueryRow(ctx, lookup, caller, route, key).Scan(&rec.ResponseStatus, &rec.ResponseBody, &rec.ExpiresAt, &rec.CreatedAt)
	if err != nil {
		return nil, false, err
	}
	return &rec, false, nil
}

// Complete stores the captured response for replay.
func (s *idempotencyStore) Complete(ctx context.Context, caller, route, key string, status int, body []byte) error {
	const complete = `UPDATE idempotency_keys SET response_status=$4, response_body=$5
                      WHERE caller=$1 AND route=$2 AND key=$3`
	_, err := s.storage.pool.Exec(ctx, complete, caller, route, key, status, body)
	return err
}
