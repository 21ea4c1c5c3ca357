package postgres_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"contentdesk/internal/repository"
	"contentdesk/internal/repository/postgres/integration"

	"github.com/stretchr/testify/require"
)

func TestPasswordResetRepository_Replace(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")

	first := tc.CreateTestResetSession(user, "111111")
	second := tc.CreateTestResetSession(user, "222222")

	_, err := tc.ResetSessions.GetByID(ctx, first.SessionID)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)

	got, err := tc.ResetSessions.GetByID(ctx, second.SessionID)
	require.NoError(t, err)
	require.Equal(t, "222222", got.VerificationCode)
	require.False(t, got.Verified)
}

func TestPasswordResetRepository_UpdateCode(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")
	s := tc.CreateTestResetSession(user, "111111")

	// Code expiry is capped at the session expiry
	require.NoError(t, tc.ResetSessions.UpdateCode(ctx, s.SessionID, "333333", tc.Now.Add(time.Hour), tc.Now))

	got, err := tc.ResetSessions.GetByID(ctx, s.SessionID)
	require.NoError(t, err)
	require.Equal(t, "333333", got.VerificationCode)
	require.True(t, got.CodeExpires.Equal(s.ExpiresAt))

	err = tc.ResetSessions.UpdateCode(ctx, s.SessionID, "444444", tc.Now.Add(time.Hour), s.ExpiresAt)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestPasswordResetRepository_VerifyAndComplete(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")
	s := tc.CreateTestResetSession(user, "111111")
	const newHash = "$2a$04$replacementhashreplacementhashreplacementhashrepl"

	_, err := tc.ResetSessions.CompleteReset(ctx, s.SessionID, newHash, tc.Now)
	require.ErrorIs(t, err, repository.ErrSessionNotFound, "unverified sessions cannot be consumed")

	err = tc.ResetSessions.MarkVerified(ctx, s.SessionID, "999999", tc.Now)
	require.ErrorIs(t, err, repository.ErrSessionStale)

	require.NoError(t, tc.ResetSessions.MarkVerified(ctx, s.SessionID, "111111", tc.Now))

	consumed, err := tc.ResetSessions.CompleteReset(ctx, s.SessionID, newHash, tc.Now)
	require.NoError(t, err)
	require.Equal(t, user.ID, consumed.UserID)
	require.True(t, consumed.Verified)

	updated, err := tc.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, newHash, updated.PasswordHash)
	require.False(t, updated.MustChangePassword)

	_, err = tc.ResetSessions.CompleteReset(ctx, s.SessionID, newHash, tc.Now)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestPasswordResetRepository_CompleteResetRollsBack(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")
	s := tc.CreateTestResetSession(user, "111111")
	require.NoError(t, tc.ResetSessions.MarkVerified(ctx, s.SessionID, "111111", tc.Now))

	// Longer than the password_hash column, so the user update fails
	_, err := tc.ResetSessions.CompleteReset(ctx, s.SessionID, strings.Repeat("h", 300), tc.Now)
	require.Error(t, err)

	got, err := tc.ResetSessions.GetByID(ctx, s.SessionID)
	require.NoError(t, err, "session must survive a failed password write")
	require.True(t, got.Verified)

	unchanged, err := tc.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.PasswordHash, unchanged.PasswordHash)
}

func TestPasswordResetRepository_DeleteExpired(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")
	s := tc.CreateTestResetSession(user, "111111")

	n, err := tc.ResetSessions.DeleteExpired(ctx, tc.Now)
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = tc.ResetSessions.DeleteExpired(ctx, s.ExpiresAt)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
