package memory

import (
	"context"
	"sync"
	"time"

	"contentdesk/internal/models"
)

type RateLimitRepo struct {
	mu      sync.Mutex
	records map[string]models.RateLimitRecord
}

func NewRateLimitRepo() *RateLimitRepo {
	return &RateLimitRepo{
		records: make(map[string]models.RateLimitRecord),
	}
}

func (r *RateLimitRepo) Hit(ctx context.Context, key string, max int, window time.Duration, now time.Time) (*models.RateLimitRecord, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[key]
	switch {
	case !ok || !rec.IsLive(now):
		rec = models.RateLimitRecord{
			Key:       key,
			Count:     1,
			CreatedAt: now,
			ExpiresAt: now.Add(window),
		}
	case rec.Count <= max:
		rec.Count++
	}
	r.records[key] = rec

	out := rec
	return &out, nil
}

func (r *RateLimitRepo) Delete(ctx context.Context, keys ...string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		delete(r.records, k)
	}
	return nil
}

func (r *RateLimitRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for k, rec := range r.records {
		if !rec.IsLive(now) {
			delete(r.records, k)
			n++
		}
	}
	return n, nil
}

// Count returns the stored count for key, or zero when no record exists
func (r *RateLimitRepo) Count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[key].Count
}
