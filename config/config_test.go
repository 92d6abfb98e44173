package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"conquest/meta"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Engine: EngineConfig{
			ThinkingDelay: time.Second,
			ActionDelay:   500 * time.Millisecond,
			MaxAIActions:  3,
			MaxTurns:      300,
		},
		Advisor: AdvisorConfig{
			Provider:     "static",
			Timeout:      10 * time.Second,
			FallbackHint: "expand",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server:      ServerConfig{Addr: ":8080"},
		Experiments: ExperimentsConfig{Games: 1, OutputDir: "out"},
	}
}

func TestValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONQUEST_ADVISOR_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Load("")

	require.NoError(t, err)
	require.Equal(t, meta.THINKING_DELAY, cfg.Engine.ThinkingDelay)
	require.Equal(t, meta.ACTION_DELAY, cfg.Engine.ActionDelay)
	require.Equal(t, meta.MAX_AI_ACTIONS, cfg.Engine.MaxAIActions)
	require.Equal(t, meta.ADVISOR_TIMEOUT, cfg.Advisor.Timeout)
	require.Equal(t, meta.FALLBACK_HINT, cfg.Advisor.FallbackHint)
	require.Equal(t, "static", cfg.Advisor.Provider)
	require.Empty(t, cfg.Advisor.APIKey)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conquest.yaml")
	err := os.WriteFile(path, []byte(`
engine:
  thinking_delay: 0s
  action_delay: 0s
  max_ai_actions: 5
  seed: 42
advisor:
  provider: anthropic
  model: test-model
  timeout: 2s
logging:
  level: debug
  format: json
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Zero(t, cfg.Engine.ThinkingDelay)
	require.Equal(t, 5, cfg.Engine.MaxAIActions)
	require.Equal(t, uint64(42), cfg.Engine.Seed)
	require.Equal(t, "anthropic", cfg.Advisor.Provider)
	require.Equal(t, 2*time.Second, cfg.Advisor.Timeout)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, ":8080", cfg.Server.Addr, "defaults fill missing sections")
}

func TestLoadEnvironment(t *testing.T) {
	t.Run("prefixed overrides", func(t *testing.T) {
		t.Setenv("CONQUEST_ENGINE_MAX_AI_ACTIONS", "7")
		t.Setenv("CONQUEST_SERVER_ADDR", "127.0.0.1:9000")

		cfg, err := Load("")

		require.NoError(t, err)
		require.Equal(t, 7, cfg.Engine.MaxAIActions)
		require.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	})

	t.Run("api key from the sdk variable", func(t *testing.T) {
		t.Setenv("CONQUEST_ADVISOR_API_KEY", "")
		t.Setenv("ANTHROPIC_API_KEY", "from-sdk-env")

		cfg, err := Load("")

		require.NoError(t, err)
		require.Equal(t, "from-sdk-env", cfg.Advisor.APIKey)
	})

	t.Run("prefixed api key wins", func(t *testing.T) {
		t.Setenv("CONQUEST_ADVISOR_API_KEY", "from-conquest-env")
		t.Setenv("ANTHROPIC_API_KEY", "from-sdk-env")

		cfg, err := Load("")

		require.NoError(t, err)
		require.Equal(t, "from-conquest-env", cfg.Advisor.APIKey)
	})
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("reports every violation", func(t *testing.T) {
		cfg := validConfig()
		cfg.Engine.MaxAIActions = 0
		cfg.Advisor.Provider = "oracle"
		cfg.Logging.Level = "verbose"

		err := cfg.Validate()

		require.Error(t, err)
		require.Contains(t, err.Error(), "engine.max_ai_actions")
		require.Contains(t, err.Error(), "advisor.provider")
		require.Contains(t, err.Error(), "logging.level")
	})

	t.Run("anthropic needs a model", func(t *testing.T) {
		cfg := validConfig()
		cfg.Advisor.Provider = "anthropic"
		cfg.Advisor.MaxTokens = 100

		require.ErrorContains(t, cfg.Validate(), "advisor.model")
	})

	t.Run("http needs an endpoint", func(t *testing.T) {
		cfg := validConfig()
		cfg.Advisor.Provider = "http"

		require.ErrorContains(t, cfg.Validate(), "advisor.base_url")
	})
}

func TestValidateDelays(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Engine.ThinkingDelay = time.Duration(rapid.Int64Range(-int64(time.Hour), int64(time.Hour)).Draw(t, "thinking"))
		cfg.Engine.ActionDelay = time.Duration(rapid.Int64Range(-int64(time.Hour), int64(time.Hour)).Draw(t, "action"))

		err := cfg.Validate()

		negative := cfg.Engine.ThinkingDelay < 0 || cfg.Engine.ActionDelay < 0
		if negative != (err != nil) {
			t.Fatalf("thinking=%s action=%s: err=%v", cfg.Engine.ThinkingDelay, cfg.Engine.ActionDelay, err)
		}
	})
}
