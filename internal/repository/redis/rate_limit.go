// Package redis stores rate limit counters in Redis for deployments that run
// several API instances in front of one database.
package redis

import (
	"context"
	"fmt"
	"time"

	"contentdesk/internal/models"
	"contentdesk/internal/repository"

	goredis "github.com/redis/go-redis/v9"
)

const defaultPrefix = "rl:"

// hitScript starts or advances a fixed window in one round trip. The TTL is
// only set on the first hit so later attempts never extend the window.
var hitScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if count == 1 or ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
local cap = tonumber(ARGV[2]) + 1
if count > cap then
	redis.call('DECRBY', KEYS[1], count - cap)
	count = cap
end
return {count, ttl}
`)

type rateLimitRepository struct {
	client goredis.UniversalClient
	prefix string
}

// NewRateLimitRepository creates a Redis-backed rate limit counter repository
func NewRateLimitRepository(client goredis.UniversalClient, prefix string) repository.RateLimitRepository {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &rateLimitRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *rateLimitRepository) Hit(ctx context.Context, key string, max int, window time.Duration, now time.Time) (*models.RateLimitRecord, error) {
	res, err := hitScript.Run(ctx, r.client, []string{r.prefix + key}, window.Milliseconds(), max).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit hit: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("rate limit hit: unexpected reply %v", res)
	}

	ttl := time.Duration(res[1]) * time.Millisecond
	return &models.RateLimitRecord{
		Key:       key,
		Count:     int(res[0]),
		CreatedAt: now.Add(ttl - window),
		ExpiresAt: now.Add(ttl),
	}, nil
}

func (r *rateLimitRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.prefix + k
	}
	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("rate limit delete: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op; Redis evicts windows through key TTLs.
func (r *rateLimitRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
