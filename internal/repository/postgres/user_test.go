package postgres_test

import (
	"context"
	"testing"

	"contentdesk/internal/models"
	"contentdesk/internal/repository"
	"contentdesk/internal/repository/postgres/integration"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   models.User
		errType error
	}{
		{
			name:  "Success",
			input: models.User{Email: "Editor@Example.com", PasswordHash: "hash"},
		},
		{
			name:    "Duplicate Email Case Insensitive",
			input:   models.User{Email: "EDITOR@example.com", PasswordHash: "hash"},
			errType: repository.ErrEmailExists,
		},
		{
			name:  "Admin",
			input: models.User{Email: "admin@example.com", PasswordHash: "hash", Role: models.RoleAdmin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.input
			err := tc.Users.Create(ctx, &user)
			if tt.errType != nil {
				require.ErrorIs(t, err, tt.errType)
				return
			}

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, user.ID)
			require.False(t, user.CreatedAt.IsZero())

			got, err := tc.Users.GetByID(ctx, user.ID)
			require.NoError(t, err)
			require.Equal(t, repository.NormalizeEmail(tt.input.Email), got.Email)
			require.NotEmpty(t, got.Role)
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")

	got, err := tc.Users.GetByEmail(ctx, "  EDITOR@example.com ")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = tc.Users.GetByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = tc.Users.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")
	tc.ExecuteSQL(`UPDATE users SET must_change_password = TRUE WHERE id = $1`, user.ID)

	require.NoError(t, tc.Users.UpdatePassword(ctx, user.ID, "new-hash"))

	got, err := tc.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.False(t, got.MustChangePassword)

	err = tc.Users.UpdatePassword(ctx, uuid.New(), "new-hash")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_MarkEmailVerified(t *testing.T) {
	tc := integration.NewTestContext(t)
	ctx := context.Background()
	user := tc.CreateTestUser("editor@example.com")

	require.NoError(t, tc.Users.MarkEmailVerified(ctx, user.ID))

	got, err := tc.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, got.EmailVerified)
}
