package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"contentdesk/internal/repository"
	"contentdesk/internal/repository/postgres/integration"

	"github.com/stretchr/testify/require"
)

func TestLoginSessionRepository_CreateAndGet(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")
	s := tc.CreateTestLoginSession(user, "123456")

	got, err := tc.LoginSessions.GetByID(ctx, s.SessionID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.UserID)
	require.Equal(t, "123456", got.VerificationCode)
	require.True(t, s.ExpiresAt.Equal(got.ExpiresAt))

	_, err = tc.LoginSessions.GetByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestLoginSessionRepository_ConsumeOnce(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")
	s := tc.CreateTestLoginSession(user, "123456")

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tc.LoginSessions.Consume(ctx, s.SessionID); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	_, err := tc.LoginSessions.GetByID(ctx, s.SessionID)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestLoginSessionRepository_DeleteExpired(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")
	live := tc.CreateTestLoginSession(user, "111111")
	gone := tc.CreateTestLoginSession(user, "222222")
	tc.ExecuteSQL(`UPDATE login_sessions SET code_expires = $1, expires_at = $1 WHERE session_id = $2`,
		tc.Now.Add(-time.Minute), gone.SessionID)

	n, err := tc.LoginSessions.DeleteExpired(ctx, tc.Now)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = tc.LoginSessions.GetByID(ctx, live.SessionID)
	require.NoError(t, err)
	require.NoError(t, tc.LoginSessions.Delete(ctx, live.SessionID))
	_, err = tc.LoginSessions.GetByID(ctx, live.SessionID)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)
}
