package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"conquest/advisor"
	"conquest/agent"
	"conquest/communication/server"
	"conquest/config"
	"conquest/engine"
	"conquest/experiments"
	"conquest/experiments/metrics"
	"conquest/game"
	"conquest/gamemaster"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	mode := flag.String("mode", "play", "play, serve or experiment")
	configPath := flag.String("config", "", "path to a YAML config file")
	games := flag.Int("games", 0, "games per agent config in experiment mode, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging)
	if *games > 0 {
		cfg.Experiments.Games = *games
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *mode, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Str("mode", *mode).Msg("exiting")
	}
}

func run(ctx context.Context, mode string, cfg config.Config) error {
	adv, err := newAdvisor(cfg.Advisor)
	if err != nil {
		return err
	}

	switch mode {
	case "play":
		gm := gamemaster.NewGameMaster(newEngine(cfg, adv), os.Stdin, os.Stdout)
		return gm.Run(ctx)
	case "serve":
		e := newEngine(cfg, adv)
		s := server.NewServer(e)
		e.Start()
		err := s.ListenAndServe(ctx, cfg.Server.Addr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case "experiment":
		settings := experiments.Settings{
			Games:        cfg.Experiments.Games,
			MaxTurns:     cfg.Engine.MaxTurns,
			Workers:      runtime.NumCPU(),
			Seed:         seed(cfg.Engine.Seed),
			OutputDir:    cfg.Experiments.OutputDir,
			Advisor:      adv,
			FallbackHint: cfg.Advisor.FallbackHint,
		}
		if _, err := experiments.RunHintExperiment(ctx, settings); err != nil {
			return err
		}
		_, err := experiments.RunActionBudgetExperiment(ctx, settings)
		return err
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func newEngine(cfg config.Config, adv advisor.Advisor) *engine.Local {
	b := game.CreateMap()
	strategist := agent.NewStrategist(
		agent.WithMaxActions(cfg.Engine.MaxAIActions),
		agent.WithActionDelay(cfg.Engine.ActionDelay),
		agent.WithAdvisor(adv),
		agent.WithAdvisorTimeout(cfg.Advisor.Timeout),
		agent.WithFallbackHint(cfg.Advisor.FallbackHint),
		agent.WithMetrics(metrics.NewCollector()),
	)
	return engine.NewLocal(b,
		engine.WithResolver(game.NewResolver(b, nil, game.NewSource(seed(cfg.Engine.Seed)))),
		engine.WithStrategist(strategist),
		engine.WithThinkingDelay(cfg.Engine.ThinkingDelay),
	)
}

// newAdvisor builds the configured advisor. A missing API key degrades to
// the static fallback hint instead of failing.
func newAdvisor(cfg config.AdvisorConfig) (advisor.Advisor, error) {
	switch cfg.Provider {
	case "anthropic":
		a, err := advisor.NewAnthropic(advisor.AnthropicConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			BaseURL:   cfg.BaseURL,
		})
		if errors.Is(err, advisor.ErrMissingAPIKey) {
			log.Warn().Msg("no advisor API key configured, using the static hint")
			return advisor.Static(cfg.FallbackHint), nil
		}
		if err != nil {
			return nil, err
		}
		return a, nil
	case "http":
		return advisor.NewRemote(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout}), nil
	default:
		return advisor.Static(cfg.FallbackHint), nil
	}
}

func seed(configured uint64) uint64 {
	if configured != 0 {
		return configured
	}
	return uint64(time.Now().UnixNano())
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}
