package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultProvider, cfg.Provider)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
	assert.Equal(t, DefaultMaxTurns, cfg.MaxTurns)
	assert.Equal(t, DefaultMaxToolCalls, cfg.MaxToolCalls)
	assert.Equal(t, DefaultToolTimeout, cfg.ToolTimeout)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
	  "provider": "anthropic",
	  "model": "claude-sonnet-4-5",
	  "max_turns": 12,
	  "tool_timeout": "45s",
	  "log_level": "debug"
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
	assert.Equal(t, 12, cfg.MaxTurns)
	assert.Equal(t, 45*time.Second, cfg.ToolTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Keys the file leaves out keep their defaults.
	assert.Equal(t, DefaultMaxToolCalls, cfg.MaxToolCalls)
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AUTOCREW_PROVIDER", "anthropic")
	t.Setenv("AUTOCREW_MAX_TURNS", "7")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 7, cfg.MaxTurns)
}

func TestDerivedPaths(t *testing.T) {
	cfg := Config{DataDir: "/data"}

	assert.Equal(t, filepath.Join("/data", "skills"), cfg.SkillsDir())
	assert.Equal(t, filepath.Join("/data", "sessions", "default.jsonl"), cfg.SessionPath())
	assert.Equal(t, filepath.Join("/data", "runs.db"), cfg.StorePath())
	assert.Equal(t, filepath.Join("/data", "teams"), cfg.TeamsDir())
}
