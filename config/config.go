// Package config loads runtime configuration from the environment and builds
// model adapters from it. Variables use the AGENTLOOP_ prefix with underscores
// separating nested keys, e.g. AGENTLOOP_MODEL_PROVIDER=openai or
// AGENTLOOP_LOG_LEVEL=debug.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/agentloop/agentloop/logging"
	"github.com/agentloop/agentloop/model"
	"github.com/agentloop/agentloop/model/anthropic"
	"github.com/agentloop/agentloop/model/openai"
)

// EnvPrefix is the prefix stripped from environment variables during Load.
const EnvPrefix = "AGENTLOOP_"

// ModelConfig selects and tunes the backing model.
type ModelConfig struct {
	// Provider is one of "openai" or "anthropic".
	Provider string `koanf:"provider"`
	// Name overrides the provider's default model identifier.
	Name string `koanf:"name"`
	// APIKey is passed to the provider client. Providers also honor their
	// own native variables (OPENAI_API_KEY, ANTHROPIC_API_KEY).
	APIKey      string  `koanf:"api_key"`
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`
}

// AgentConfig tunes run-loop defaults.
type AgentConfig struct {
	MaxRounds        int `koanf:"max_rounds"`
	MaxParallelCalls int `koanf:"max_parallel_calls"`
	ResultRetries    int `koanf:"result_retries"`
}

// LogConfig tunes the structured logger.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is "text" or "json".
	Format string `koanf:"format"`
}

// Config is the root configuration.
type Config struct {
	Model ModelConfig `koanf:"model"`
	Agent AgentConfig `koanf:"agent"`
	Log   LogConfig   `koanf:"log"`
}

// Load reads configuration from environment variables and applies defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		// AGENTLOOP_MODEL_API_KEY -> model.api_key, with known compound
		// leaf names restored after the generic split.
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		s = strings.ReplaceAll(s, "_", ".")
		for _, leaf := range []string{
			"api.key", "max.tokens", "max.rounds",
			"max.parallel.calls", "result.retries",
		} {
			s = strings.Replace(s, leaf, strings.ReplaceAll(leaf, ".", "_"), 1)
		}
		return s
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = "openai"
	}
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = 0.7
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = 4096
	}
	if cfg.Agent.MaxRounds == 0 {
		cfg.Agent.MaxRounds = 15
	}
	if cfg.Agent.ResultRetries == 0 {
		cfg.Agent.ResultRetries = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// NewModel builds a model adapter from the configured provider.
func (c *Config) NewModel() (model.Model, error) {
	switch c.Model.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if c.Model.Name != "" {
				o.Model = c.Model.Name
			}
			o.Temperature = c.Model.Temperature
			o.MaxCompletionTokens = int64(c.Model.MaxTokens)
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if c.Model.Name != "" {
				o.Model = anthropicsdk.Model(c.Model.Name)
			}
			o.APIKey = c.Model.APIKey
			o.Temperature = c.Model.Temperature
			o.MaxTokens = int64(c.Model.MaxTokens)
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
}

// NewLogger builds a structured logger from the log settings.
func (c *Config) NewLogger(w io.Writer) logging.Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return logging.New(w, c.Log.Format, level)
}
