package service_test

import (
	"context"
	"testing"

	"contentdesk/internal/auth"
	"contentdesk/internal/models"
	"contentdesk/internal/service"
	"contentdesk/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestChangePassword(t *testing.T) {
	tc := testutil.NewTestContext(t)
	user := tc.CreateTestUser("editor@example.com", testPassword, func(u *models.User) {
		u.MustChangePassword = true
	})
	ctx := context.Background()

	t.Run("Weak Password", func(t *testing.T) {
		err := tc.Services.Account.ChangePassword(ctx, user.ID, "short")
		var weak *service.WeakPasswordError
		require.ErrorAs(t, err, &weak)
		require.Subset(t, weak.Violations, []string{
			auth.ViolationMinLength,
			auth.ViolationUpper,
			auth.ViolationNumber,
			auth.ViolationSpecial,
		})
	})

	t.Run("Unknown User", func(t *testing.T) {
		err := tc.Services.Account.ChangePassword(ctx, uuid.New(), newPassword)
		require.ErrorIs(t, err, service.ErrInvalidSession)
	})

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, tc.Services.Account.ChangePassword(ctx, user.ID, newPassword))

		updated, err := tc.Services.Account.Me(ctx, user.ID)
		require.NoError(t, err)
		require.False(t, updated.MustChangePassword)
		require.True(t, auth.NewPasswordHasher(0).ComparePassword(updated.PasswordHash, newPassword))
	})
}

func TestMe(t *testing.T) {
	tc := testutil.NewTestContext(t)
	user := tc.CreateTestUser("editor@example.com", testPassword)

	got, err := tc.Services.Account.Me(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "editor@example.com", got.Email)

	_, err = tc.Services.Account.Me(context.Background(), uuid.New())
	require.ErrorIs(t, err, service.ErrInvalidSession)
}
