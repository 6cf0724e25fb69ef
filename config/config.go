// Package config loads runtime settings from ~/.autocrew/config.json,
// AUTOCREW_* environment variables and explicit overrides, in ascending
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither file nor environment sets a key.
const (
	DefaultProvider     = "openai"
	DefaultModel        = "gpt-5.2"
	DefaultSystemPrompt = "You are AutoCrew, a helpful AI assistant."
	DefaultMaxTurns     = 30
	DefaultMaxToolCalls = 50
	DefaultToolTimeout  = 30 * time.Second
	DefaultHistoryLimit = 6
)

// Config is the resolved runtime configuration.
type Config struct {
	// Provider selects the model backend: "openai" or "anthropic".
	Provider string `mapstructure:"provider"`
	// Model is the provider-specific model identifier.
	Model string `mapstructure:"model"`
	// APIKey overrides the provider's environment credential.
	APIKey string `mapstructure:"api_key"`
	// SystemPrompt is the default chat agent's standing instruction.
	SystemPrompt string `mapstructure:"system_prompt"`
	// MaxTurns caps team runs.
	MaxTurns int `mapstructure:"max_turns"`
	// MaxToolCalls caps tool calls per turn.
	MaxToolCalls int `mapstructure:"max_tool_calls"`
	// ToolTimeout bounds each tool call.
	ToolTimeout time.Duration `mapstructure:"tool_timeout"`
	// HistoryLimit trims per-agent team history.
	HistoryLimit int `mapstructure:"history_limit"`
	// DataDir is the root for sessions, teams, skills and the run archive.
	DataDir string `mapstructure:"data_dir"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`
}

// SkillsDir returns the skills root under the data directory.
func (c Config) SkillsDir() string { return filepath.Join(c.DataDir, "skills") }

// SessionPath returns the default chat session file.
func (c Config) SessionPath() string {
	return filepath.Join(c.DataDir, "sessions", "default.jsonl")
}

// StorePath returns the SQLite run archive file.
func (c Config) StorePath() string { return filepath.Join(c.DataDir, "runs.db") }

// TeamsDir returns the per-run workspace root.
func (c Config) TeamsDir() string { return filepath.Join(c.DataDir, "teams") }

// Load resolves the configuration. path, when non-empty, names an explicit
// config file; otherwise ~/.autocrew/config.json is used when present. A
// missing config file is not an error, the defaults stand.
func Load(path string) (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".autocrew")

	v := viper.New()
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("system_prompt", DefaultSystemPrompt)
	v.SetDefault("max_turns", DefaultMaxTurns)
	v.SetDefault("max_tool_calls", DefaultMaxToolCalls)
	v.SetDefault("tool_timeout", DefaultToolTimeout)
	v.SetDefault("history_limit", DefaultHistoryLimit)
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("AUTOCREW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(dataDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
