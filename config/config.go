// Package config provides Viper-based configuration loading.
package config

import (
	"fmt"
	"strings"
	"time"

	"conquest/meta"

	"github.com/spf13/viper"
)

type EngineConfig struct {
	ThinkingDelay time.Duration `mapstructure:"thinking_delay"`
	ActionDelay   time.Duration `mapstructure:"action_delay"`
	MaxAIActions  int           `mapstructure:"max_ai_actions"`
	// MaxTurns caps headless games. Interactive games are never capped.
	MaxTurns int `mapstructure:"max_turns"`
	// Seed for the combat random source. Zero seeds from the clock.
	Seed uint64 `mapstructure:"seed"`
}

type AdvisorConfig struct {
	// Provider is one of "static", "anthropic" or "http".
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxTokens    int64         `mapstructure:"max_tokens"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	FallbackHint string        `mapstructure:"fallback_hint"`
}

type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type ExperimentsConfig struct {
	Games     int    `mapstructure:"games"`
	OutputDir string `mapstructure:"output_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Engine      EngineConfig      `mapstructure:"engine"`
	Advisor     AdvisorConfig     `mapstructure:"advisor"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Server      ServerConfig      `mapstructure:"server"`
	Experiments ExperimentsConfig `mapstructure:"experiments"`
}

// Validate checks the configuration and reports every violation.
func (c Config) Validate() error {
	var errs []string

	errs = append(errs, validateEngine(c.Engine)...)
	errs = append(errs, validateAdvisor(c.Advisor)...)
	errs = append(errs, validateLogging(c.Logging)...)
	if c.Server.Addr == "" {
		errs = append(errs, "server.addr must not be empty")
	}
	if c.Experiments.Games < 1 {
		errs = append(errs, fmt.Sprintf("experiments.games must be >= 1, got %d", c.Experiments.Games))
	}
	if c.Experiments.OutputDir == "" {
		errs = append(errs, "experiments.output_dir must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEngine(e EngineConfig) []string {
	var errs []string
	if e.ThinkingDelay < 0 {
		errs = append(errs, "engine.thinking_delay must not be negative")
	}
	if e.ActionDelay < 0 {
		errs = append(errs, "engine.action_delay must not be negative")
	}
	if e.MaxAIActions < 1 {
		errs = append(errs, fmt.Sprintf("engine.max_ai_actions must be >= 1, got %d", e.MaxAIActions))
	}
	if e.MaxTurns < 1 {
		errs = append(errs, fmt.Sprintf("engine.max_turns must be >= 1, got %d", e.MaxTurns))
	}
	return errs
}

func validateAdvisor(a AdvisorConfig) []string {
	var errs []string
	switch a.Provider {
	case "static":
	case "anthropic":
		if a.Model == "" {
			errs = append(errs, "advisor.model must not be empty for the anthropic provider")
		}
		if a.MaxTokens < 1 {
			errs = append(errs, fmt.Sprintf("advisor.max_tokens must be >= 1, got %d", a.MaxTokens))
		}
	case "http":
		if a.BaseURL == "" {
			errs = append(errs, "advisor.base_url must not be empty for the http provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("advisor.provider must be one of [static, anthropic, http], got %q", a.Provider))
	}
	if a.Timeout <= 0 {
		errs = append(errs, "advisor.timeout must be positive")
	}
	if strings.TrimSpace(a.FallbackHint) == "" {
		errs = append(errs, "advisor.fallback_hint must not be empty")
	}
	return errs
}

func validateLogging(l LoggingConfig) []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	return errs
}

// Load reads configuration from path, applies CONQUEST_* environment
// overrides and validates the result. An empty path uses defaults and the
// environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("CONQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The key is a secret: it is only ever read from the environment or the
	// config file. The SDK's own variable is honored as a fallback.
	if err := v.BindEnv("advisor.api_key", "CONQUEST_ADVISOR_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("binding advisor api key: %w", err)
	}

	setDefaults(v)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.thinking_delay", meta.THINKING_DELAY)
	v.SetDefault("engine.action_delay", meta.ACTION_DELAY)
	v.SetDefault("engine.max_ai_actions", meta.MAX_AI_ACTIONS)
	v.SetDefault("engine.max_turns", meta.MAX_TURNS)
	v.SetDefault("engine.seed", 0)

	v.SetDefault("advisor.provider", "static")
	v.SetDefault("advisor.model", "claude-3-5-haiku-latest")
	v.SetDefault("advisor.timeout", meta.ADVISOR_TIMEOUT)
	v.SetDefault("advisor.max_tokens", 256)
	v.SetDefault("advisor.base_url", "")
	v.SetDefault("advisor.fallback_hint", meta.FALLBACK_HINT)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("experiments.games", 30)
	v.SetDefault("experiments.output_dir", "experiments/results")
}
