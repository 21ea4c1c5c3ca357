// Package integration provides utilities for postgres integration testing
package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"contentdesk/internal/auth"
	"contentdesk/internal/models"
	"contentdesk/internal/repository"
	"contentdesk/internal/repository/postgres"
	testdb "contentdesk/internal/testutil/db"

	"github.com/stretchr/testify/require"
)

// TestContext holds a migrated test database and the repositories built on it
type TestContext struct {
	T             *testing.T
	DB            *sql.DB
	Users         repository.UserRepository
	LoginSessions repository.LoginSessionRepository
	ResetSessions repository.PasswordResetRepository
	RateLimits    repository.RateLimitRepository
	// Now is a fixed reference time; postgres truncates to microseconds
	Now time.Time
}

// NewTestContext creates a new test context for postgres integration tests.
// The test is skipped when no test database is configured.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	cfg := testdb.LoadTestConfig(t)
	db := testdb.SetupTestDB(t, &cfg.Database)

	return &TestContext{
		T:             t,
		DB:            db,
		Users:         postgres.NewUserRepository(db),
		LoginSessions: postgres.NewLoginSessionRepository(db),
		ResetSessions: postgres.NewPasswordResetRepository(db),
		RateLimits:    postgres.NewRateLimitRepository(db),
		Now:           time.Now().UTC().Truncate(time.Second),
	}
}

// CreateTestUser creates a user with the given email
func (tc *TestContext) CreateTestUser(email string) *models.User {
	tc.T.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "$2a$04$placeholderhashplaceholderhashplaceholderhashpla",
		Role:         models.RoleEditor,
	}
	require.NoError(tc.T, tc.Users.Create(context.Background(), user))
	return user
}

// CreateTestLoginSession stores a login session for user starting at tc.Now
func (tc *TestContext) CreateTestLoginSession(user *models.User, code string) *models.LoginSession {
	tc.T.Helper()
	id, err := auth.NewSessionID()
	require.NoError(tc.T, err)

	s := &models.LoginSession{
		SessionID:        id,
		UserID:           user.ID,
		Email:            user.Email,
		VerificationCode: code,
		CodeExpires:      tc.Now.Add(10 * time.Minute),
		CreatedAt:        tc.Now,
		ExpiresAt:        tc.Now.Add(15 * time.Minute),
	}
	require.NoError(tc.T, tc.LoginSessions.Create(context.Background(), s))
	return s
}

// CreateTestResetSession replaces the reset session of user with a fresh one
func (tc *TestContext) CreateTestResetSession(user *models.User, code string) *models.PasswordResetSession {
	tc.T.Helper()
	id, err := auth.NewSessionID()
	require.NoError(tc.T, err)

	s := &models.PasswordResetSession{
		SessionID:        id,
		UserID:           user.ID,
		Email:            user.Email,
		VerificationCode: code,
		CodeExpires:      tc.Now.Add(10 * time.Minute),
		CreatedAt:        tc.Now,
		ExpiresAt:        tc.Now.Add(30 * time.Minute),
	}
	require.NoError(tc.T, tc.ResetSessions.Replace(context.Background(), s))
	return s
}

// ExecuteSQL executes a raw SQL query for testing
func (tc *TestContext) ExecuteSQL(query string, args ...interface{}) {
	tc.T.Helper()
	_, err := tc.DB.ExecContext(context.Background(), query, args...)
	require.NoError(tc.T, err)
}
