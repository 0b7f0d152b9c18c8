package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "LOG_LEVEL", "GCP_PROJECT_ID", "GCP_REGION", "GEMINI_MODEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	d, err := cfg.AdvanceDelay()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: "9090"
log_level: debug
gcp:
  project_id: my-project
trivia:
  advance_delay: 2s
content:
  puzzle_file: /srv/puzzles.yaml
limits:
  hints_per_minute: 10
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "my-project", cfg.GCP.ProjectID)
	assert.Equal(t, defaultRegion, cfg.GCP.Region, "unset keys keep their default")
	assert.Equal(t, "/srv/puzzles.yaml", cfg.Content.PuzzleFile)
	assert.Equal(t, 10, cfg.Limits.HintsPerMinute)
	assert.Equal(t, 60, cfg.Limits.ActionsPerSecond)

	d, err := cfg.AdvanceDelay()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "port: \"9090\"\n")
	t.Setenv("PORT", "7000")
	t.Setenv("GCP_PROJECT_ID", "env-project")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "env-project", cfg.GCP.ProjectID)
	assert.Equal(t, "gemini-2.5-pro", cfg.GCP.Model)
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	_, err = LoadConfig(writeConfig(t, "port: [unclosed"))
	assert.ErrorContains(t, err, "parse config")

	_, err = LoadConfig(writeConfig(t, `
log_level: loud
trivia:
  advance_delay: soon
limits:
  actions_per_second: 0
`))
	require.Error(t, err)
	assert.ErrorContains(t, err, "log_level")
	assert.ErrorContains(t, err, "trivia.advance_delay")
	assert.ErrorContains(t, err, "limits.actions_per_second")
}

func TestAdvanceDelayNegative(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trivia.AdvanceDelay = "-1s"
	_, err := cfg.AdvanceDelay()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel))

	log, err = NewLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel), "verbose enables debug")

	_, err = NewLogger("chatty", false)
	assert.Error(t, err)
}
