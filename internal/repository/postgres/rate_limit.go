package postgres

import (
	"context"
	"database/sql"
	"time"

	"contentdesk/internal/models"
	"contentdesk/internal/repository"

	"github.com/lib/pq"
)

type rateLimitRepository struct {
	repository.BaseRepository
}

// NewRateLimitRepository creates a new PostgreSQL rate limit counter repository
func NewRateLimitRepository(db *sql.DB) repository.RateLimitRepository {
	return &rateLimitRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

// Hit runs as a single upsert so concurrent attempts on one key serialize on
// the row lock instead of racing a read against a write.
func (r *rateLimitRepository) Hit(ctx context.Context, key string, max int, window time.Duration, now time.Time) (*models.RateLimitRecord, error) {
	query := `
		INSERT INTO rate_limits (key, count, created_at, expires_at)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE
				WHEN rate_limits.expires_at <= $2 THEN 1
				ELSE LEAST(rate_limits.count + 1, $4 + 1)
			END,
			created_at = CASE
				WHEN rate_limits.expires_at <= $2 THEN $2
				ELSE rate_limits.created_at
			END,
			expires_at = CASE
				WHEN rate_limits.expires_at <= $2 THEN $3
				ELSE rate_limits.expires_at
			END
		RETURNING key, count, created_at, expires_at`

	rec := &models.RateLimitRecord{}
	err := r.DB().QueryRowContext(ctx, query, key, now, now.Add(window), max).Scan(
		&rec.Key,
		&rec.Count,
		&rec.CreatedAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *rateLimitRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.DB().ExecContext(ctx, `DELETE FROM rate_limits WHERE key = ANY($1)`, pq.Array(keys))
	return err
}

func (r *rateLimitRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.DB().ExecContext(ctx, `DELETE FROM rate_limits WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
