package service

import (
	"context"
	"strings"
	"testing"

	"contentdesk/internal/auth"
	"contentdesk/internal/email"
	"contentdesk/internal/logging"
	"contentdesk/internal/ratelimit"
	"contentdesk/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

func newBareLoginService(t *testing.T) (*LoginService, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.InfoLevel)
	s := NewLoginService(
		memory.NewUserRepo(),
		memory.NewLoginSessionRepo(),
		ratelimit.New(memory.NewRateLimitRepo()),
		auth.NewPasswordHasher(bcrypt.MinCost),
		nil,
		email.SenderFunc(func(context.Context, email.Message) error { return nil }),
		logging.NewAuditLogger(zap.New(core)),
		Options{},
	)
	return s, logs
}

func TestFallbackHash(t *testing.T) {
	t.Run("Cached After First Build", func(t *testing.T) {
		s, _ := newBareLoginService(t)

		first, err := s.fallbackHash()
		require.NoError(t, err)
		require.True(t, s.hasher.ComparePassword(first, fallbackPassword))

		second, err := s.fallbackHash()
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("Build Failure Is Reported And Retried", func(t *testing.T) {
		s, logs := newBareLoginService(t)
		s.dummyPassword = strings.Repeat("x", auth.MaxPasswordBytes+1)

		_, err := s.fallbackHash()
		require.Error(t, err)
		require.Empty(t, s.dummyHash)

		// Unknown accounts still get the generic answer, and the failure is logged
		_, err = s.Login(context.Background(), "ghost@example.com", "Str0ng!Pass")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Equal(t, 1, logs.FilterMessage("failed to build fallback password hash").Len())

		s.dummyPassword = fallbackPassword
		hash, err := s.fallbackHash()
		require.NoError(t, err)
		require.NotEmpty(t, hash)
	})
}
