package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*miniredis.Miniredis, *rateLimitRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRateLimitRepository(client, "").(*rateLimitRepository)
}

func TestRateLimitRepository_Hit(t *testing.T) {
	mr, repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()
	window := 15 * time.Minute

	for i := 1; i <= 3; i++ {
		rec, err := repo.Hit(ctx, "login:a@example.com", 3, window, now)
		require.NoError(t, err)
		require.Equal(t, i, rec.Count)
		require.WithinDuration(t, now.Add(window), rec.ExpiresAt, time.Second)
	}

	// Capped at max+1
	for i := 0; i < 5; i++ {
		rec, err := repo.Hit(ctx, "login:a@example.com", 3, window, now)
		require.NoError(t, err)
		require.Equal(t, 4, rec.Count)
	}

	// The TTL was set on the first hit only
	require.InDelta(t, window.Seconds(), mr.TTL("rl:login:a@example.com").Seconds(), 1)

	// A new window starts once the key expires
	mr.FastForward(window)
	rec, err := repo.Hit(ctx, "login:a@example.com", 3, window, now.Add(window))
	require.NoError(t, err)
	require.Equal(t, 1, rec.Count)
}

func TestRateLimitRepository_Delete(t *testing.T) {
	mr, repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Hit(ctx, "verify:a@example.com", 10, time.Minute, time.Now())
	require.NoError(t, err)
	_, err = repo.Hit(ctx, "login:a@example.com", 5, time.Minute, time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "verify:a@example.com", "login:a@example.com"))
	require.False(t, mr.Exists("rl:verify:a@example.com"))
	require.False(t, mr.Exists("rl:login:a@example.com"))

	// Deleting nothing is fine
	require.NoError(t, repo.Delete(ctx))
}

func TestRateLimitRepository_ConcurrentHits(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.Hit(ctx, "forgot-password:b@example.com", 1000, time.Minute, time.Now())
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := repo.Hit(ctx, "forgot-password:b@example.com", 1000, time.Minute, time.Now())
	require.NoError(t, err)
	require.Equal(t, workers+1, rec.Count)
}
