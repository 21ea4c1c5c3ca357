package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLoadFromEnv tests loading configuration from environment variables
func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test_secret_key")
	t.Setenv("DB_NAME", "contentdesk_test")
	t.Setenv("RATE_LIMIT_BACKEND", "memory")

	cfg := &Config{}
	err := cfg.LoadFromEnv()
	require.NoError(t, err)

	// Verify configuration values
	require.Equal(t, "8080", cfg.API.Port)
	require.Equal(t, EnvDevelopment, cfg.API.Environment)
	require.False(t, cfg.IsProduction())
	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, "contentdesk_test", cfg.Database.DBName)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Equal(t, "test_secret_key", cfg.Auth.SessionSecret)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t, 6, cfg.Auth.OTPLength)
	require.Equal(t, RateLimitBackendMemory, cfg.RateLimit.Backend)
	require.Equal(t, 1000, cfg.RateLimit.Requests)
	require.True(t, cfg.Reaper.Enabled)
	require.Equal(t, "*/10 * * * *", cfg.Reaper.Schedule)
}

func TestLoadFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{
			name:   "Missing Secret",
			env:    map[string]string{"SESSION_SECRET": ""},
			errMsg: "SESSION_SECRET is required",
		},
		{
			name: "Short Secret In Production",
			env: map[string]string{
				"SESSION_SECRET": "short",
				"APP_ENV":        "production",
			},
			errMsg: "at least 32 bytes",
		},
		{
			name: "Redis Backend Without Address",
			env: map[string]string{
				"SESSION_SECRET":     "test_secret_key",
				"RATE_LIMIT_BACKEND": "redis",
				"REDIS_ADDR":         "",
			},
			errMsg: "REDIS_ADDR is required",
		},
		{
			name: "Unknown Backend",
			env: map[string]string{
				"SESSION_SECRET":     "test_secret_key",
				"RATE_LIMIT_BACKEND": "mongo",
			},
			errMsg: "unknown RATE_LIMIT_BACKEND",
		},
		{
			name: "OTP Too Short",
			env: map[string]string{
				"SESSION_SECRET": "test_secret_key",
				"OTP_LENGTH":     "2",
			},
			errMsg: "OTP_LENGTH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := &Config{}
			err := cfg.LoadFromEnv()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIsProduction(t *testing.T) {
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("APP_ENV", "Production")

	cfg := &Config{}
	require.NoError(t, cfg.LoadFromEnv())
	require.True(t, cfg.IsProduction())
}
