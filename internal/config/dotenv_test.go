package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "DB_PATH", "PORT", "LOG_LEVEL", "SOLVER_TIMEOUT", "SOLVER_MAX_NODES"} {
		t.Setenv(k, "")
	}
}

func TestLoadFrom_ReadsDotEnvAndIgnoresNoise(t *testing.T) {
	clearEnv(t)
	path := writeDotEnv(t, `
# comment

PORT=9090
export DB_PATH="/tmp/runs.db"
LOG_LEVEL='debug'
SOLVER_TIMEOUT=5s
SOLVER_MAX_NODES=42
APP_ENV=dev
`)

	cfg, err := LoadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/runs.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.SolverTimeout)
	assert.Equal(t, 42, cfg.SolverMaxNodes)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Empty(t, cfg.Warnings())
}

func TestLoadFrom_EnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	path := writeDotEnv(t, "PORT=9090\n")

	cfg, err := LoadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultDBPath, cfg.DBPath)
	assert.Equal(t, defaultSolverTimeout, cfg.SolverTimeout)
	assert.Equal(t, defaultSolverMaxNodes, cfg.SolverMaxNodes)
	assert.False(t, cfg.IsDev())
}

func TestConfig_Warnings(t *testing.T) {
	cfg := Config{SolverTimeout: 0, SolverMaxNodes: -1}

	assert.Len(t, cfg.Warnings(), 2)
}
