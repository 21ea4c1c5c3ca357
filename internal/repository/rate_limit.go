package repository

import (
	"context"
	"time"

	"contentdesk/internal/models"
)

// RateLimitRepository stores fixed-window attempt counters.
//
// Hit must be atomic per key: when no live window exists it starts one with
// count 1 anchored at now, otherwise it increments the count, capped at
// max+1. The returned record reflects the state after the hit.
type RateLimitRepository interface {
	Hit(ctx context.Context, key string, max int, window time.Duration, now time.Time) (*models.RateLimitRecord, error)
	Delete(ctx context.Context, keys ...string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
