// Package experiments plays headless games between the scripted human side
// and differently configured strategists and records the results as CSV.
package experiments

import (
	"context"
	"fmt"
	"time"

	"conquest/advisor"
	"conquest/agent"
	"conquest/engine"
	"conquest/experiments/metrics"
	"conquest/game"
	"conquest/player"

	"github.com/rs/zerolog/log"
)

// Settings are shared by every game of an experiment.
type Settings struct {
	Games        int // Per agent config
	MaxTurns     int
	Workers      int
	Seed         uint64
	OutputDir    string
	Advisor      advisor.Advisor // Used by configs without a fixed hint
	FallbackHint string
}

var hintConfigs = []metrics.AgentConfig{
	{ID: 1, MaxActions: 3}, // Configured advisor
	{ID: 2, MaxActions: 3, Hint: "Attack the player wherever they are weak."},
	{ID: 3, MaxActions: 3, Hint: "Stay defensive, reinforce and strengthen the border."},
}

var budgetConfigs = []metrics.AgentConfig{
	{ID: 1, MaxActions: 1},
	{ID: 2, MaxActions: 2},
	{ID: 3, MaxActions: 3},
	{ID: 4, MaxActions: 5},
}

// RunHintExperiment compares strategists that differ only in their hint.
func RunHintExperiment(ctx context.Context, s Settings) (string, error) {
	return runExperiment(ctx, "hints", s, hintConfigs)
}

// RunActionBudgetExperiment compares strategists that execute a different
// number of actions per turn.
func RunActionBudgetExperiment(ctx context.Context, s Settings) (string, error) {
	return runExperiment(ctx, "action_budget", s, budgetConfigs)
}

// runExperiment plays s.Games games per config, writes the records and
// returns the directory they were written to.
func runExperiment(ctx context.Context, name string, s Settings, configs []metrics.AgentConfig) (string, error) {
	if s.Games < 1 {
		return "", fmt.Errorf("experiment %s needs at least one game per config", name)
	}
	jobs := []job{}
	for _, config := range configs {
		for i := 0; i < s.Games; i++ {
			// Every config faces the same sequence of seeds
			jobs = append(jobs, job{index: len(jobs), config: config, seed: s.Seed + uint64(i)})
		}
	}

	log.Info().Str("experiment", name).Int("games", len(jobs)).Msg("starting experiment")
	gameRecords, turnRecords, err := runBatch(ctx, jobs, s.Workers, s.MaxTurns, s.Advisor, s.FallbackHint)
	if err != nil {
		return "", fmt.Errorf("experiment %s: %w", name, err)
	}
	log.Info().Str("experiment", name).Msg("completed experiment")

	// Store experiment metadata
	writer, err := metrics.NewWriter(s.OutputDir, name)
	if err != nil {
		return "", err
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	// Store experiment results
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteTurnRecords(turnRecords); err != nil {
		return "", fmt.Errorf("failed to write turn records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment records")
	return writer.Dir(), nil
}

// RunGame plays a single headless game on the standard map until a side is
// eliminated or maxTurns rounds have been played.
func RunGame(ctx context.Context, config metrics.AgentConfig, seed uint64, maxTurns int, adv advisor.Advisor, fallbackHint string) (metrics.GameMetric, []metrics.AITurnMetric, error) {
	if config.Hint != "" {
		adv = advisor.Static(config.Hint)
	}
	strategist := agent.NewStrategist(
		agent.WithMaxActions(config.MaxActions),
		agent.WithActionDelay(0),
		agent.WithAdvisor(adv),
		agent.WithFallbackHint(fallbackHint),
		agent.WithMetrics(metrics.NewCollector()),
	)
	b := game.CreateMap()
	e := engine.NewLocal(b,
		engine.WithResolver(game.NewResolver(b, nil, game.NewSource(seed))),
		engine.WithStrategist(strategist),
		engine.WithThinkingDelay(0),
	)
	human := player.NewPlayer(e, seed+1)

	gameMetric := metrics.GameMetric{StartTime: time.Now()}
	turnMetrics := []metrics.AITurnMetric{}

	e.Start()
	for !e.State().GameOver && e.State().Round <= maxTurns {
		if err := ctx.Err(); err != nil {
			return gameMetric, turnMetrics, err
		}
		round := e.State().Round
		if _, err := human.TakeTurn(ctx); err != nil {
			return gameMetric, turnMetrics, fmt.Errorf("round %d: %w", round, err)
		}
		if e.State().Round > round {
			turnMetrics = append(turnMetrics, metrics.AITurnMetric{Round: round, TurnMetric: e.LastAITurn().Metric})
		}
	}

	state := e.State()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.Rounds = state.Round
	gameMetric.Winner = "none"
	if state.GameOver {
		gameMetric.Winner = state.Winner.String()
	}
	gameMetric.Evaluation = game.EvaluateResources(e.Board(), game.AI)
	return gameMetric, turnMetrics, nil
}
