package db

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"contentdesk/internal/config"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
)

// LoadTestConfig loads .env.test from the project root. Tests are skipped when
// the file does not exist so the unit suite runs without a database.
func LoadTestConfig(t *testing.T) *config.Config {
	t.Helper()

	// Get the absolute path to this file
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")

	// Calculate project root (3 levels up from this file)
	projectRoot := filepath.Join(filepath.Dir(filename), "..", "..", "..")
	projectRoot, err := filepath.Abs(projectRoot)
	require.NoError(t, err, "Failed to get absolute project root path")

	envPath := filepath.Join(projectRoot, ".env.test")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		t.Skip("skipping postgres integration test: .env.test not found")
	}

	err = godotenv.Load(envPath)
	require.NoError(t, err, "Failed to load .env.test file")

	cfg := &config.Config{}
	err = cfg.LoadFromEnv()
	require.NoError(t, err, "Failed to load config")

	// Only override migrations path to ensure it's absolute
	cfg.Database.MigrationsPath = filepath.Join(projectRoot, "migrations")

	return cfg
}
