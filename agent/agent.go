// Package agent implements the automated side: it enumerates candidate
// actions, scores them against a strategy hint and executes the best few.
package agent

import (
	"context"
	"fmt"
	"time"

	"conquest/advisor"
	"conquest/experiments/metrics"
	"conquest/game"
	"conquest/meta"
	"conquest/utils"

	"github.com/rs/zerolog/log"
)

type Option func(s *Strategist)

// Notify receives one message per executed or skipped action. changed
// reports whether the board was mutated.
type Notify func(message string, changed bool)

// TurnResult summarizes one AI turn.
type TurnResult struct {
	Hint     string
	Ranked   []Candidate
	Executed []Candidate
	Metric   metrics.TurnMetric
}

type Strategist struct {
	maxActions     int
	actionDelay    time.Duration
	advisor        advisor.Advisor
	advisorTimeout time.Duration
	fallbackHint   string
	metrics        metrics.Collector
}

func WithMaxActions(n int) Option {
	return func(s *Strategist) {
		if n > 0 {
			s.maxActions = n
		}
	}
}

// WithActionDelay sets the pause between two executed actions. Zero skips it.
func WithActionDelay(d time.Duration) Option {
	return func(s *Strategist) {
		if d >= 0 {
			s.actionDelay = d
		}
	}
}

func WithAdvisor(a advisor.Advisor) Option {
	return func(s *Strategist) {
		s.advisor = a
	}
}

func WithAdvisorTimeout(d time.Duration) Option {
	return func(s *Strategist) {
		if d > 0 {
			s.advisorTimeout = d
		}
	}
}

func WithFallbackHint(hint string) Option {
	return func(s *Strategist) {
		if hint != "" {
			s.fallbackHint = hint
		}
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(s *Strategist) {
		if collector != nil {
			s.metrics = collector
		}
	}
}

func NewStrategist(options ...Option) *Strategist {
	s := &Strategist{ // Default values
		maxActions:     meta.MAX_AI_ACTIONS,
		actionDelay:    meta.ACTION_DELAY,
		advisorTimeout: meta.ADVISOR_TIMEOUT,
		fallbackHint:   meta.FALLBACK_HINT,
		metrics:        metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Plan enumerates and ranks the AI's candidates. The advisor is only
// consulted when there is something to rank. The returned error reports a
// fallback hint and is informational.
func (s *Strategist) Plan(ctx context.Context, b *game.Board) ([]Candidate, string, error) {
	candidates := Candidates(b)
	if len(candidates) == 0 {
		return candidates, "", nil
	}
	hint, err := advisor.Fetch(ctx, s.advisor, advisor.NewSnapshot(b), s.advisorTimeout, s.fallbackHint)
	return Rank(b, candidates, hint), hint, err
}

// PlayTurn plans and executes up to maxActions candidates on the resolver's
// board, in ranked order, regardless of their confidence. Every executed or
// skipped action is reported through notify. Cancelling ctx only shortens
// the pacing delays and the advisor request.
func (s *Strategist) PlayTurn(ctx context.Context, r *game.Resolver, notify Notify) TurnResult {
	if notify == nil {
		notify = func(string, bool) {}
	}
	s.metrics.Start()
	b := r.Board()

	ranked, hint, err := s.Plan(ctx, b)
	s.metrics.SetCandidates(len(ranked))
	s.metrics.SetHintFallback(err != nil)
	result := TurnResult{Hint: hint, Ranked: ranked}

	n := min(s.maxActions, len(ranked))
	for i, candidate := range ranked[:n] {
		log.Debug().Int("rank", i+1).Stringer("candidate", candidate).Msg("ai candidate")
	}

	for i, candidate := range ranked[:n] {
		if i > 0 {
			utils.Sleep(ctx, s.actionDelay)
		}
		message, changed := s.execute(r, candidate)
		if changed {
			s.metrics.AddExecuted()
			result.Executed = append(result.Executed, candidate)
		} else {
			s.metrics.AddSkipped()
		}
		if message != "" {
			notify(message, changed)
		}
	}

	result.Metric = s.metrics.Complete()
	log.Info().
		Int("candidates", result.Metric.Candidates).
		Int("executed", result.Metric.Executed).
		Int("skipped", result.Metric.Skipped).
		Bool("hintFallback", result.Metric.HintFallback).
		Dur("duration", result.Metric.Duration).
		Msg("ai turn complete")
	return result
}

// execute applies one candidate. Scores are not recomputed, but the board
// may have changed since ranking, so targets are re-checked.
func (s *Strategist) execute(r *game.Resolver, c Candidate) (string, bool) {
	b := r.Board()
	source, target := b.Territory(c.Action.From), b.Territory(c.Action.To)
	if source == nil || target == nil {
		return fmt.Sprintf("AI skipped %s: %v", c, game.ErrUnknownTerritory), false
	}

	switch c.Action.Type {
	case game.AttackAction:
		if target.Owner == game.AI {
			return fmt.Sprintf("AI skipped attack on %s: already under AI control", target.Name), false
		}
		result, err := r.ResolveAttack(source, target)
		if err != nil {
			return fmt.Sprintf("AI attack from %s on %s rejected: %v", source.Name, target.Name, err), false
		}
		return result.String(), true
	default:
		moved, err := r.ResolveTransfer(source, target, game.AI)
		if err != nil {
			return fmt.Sprintf("AI transfer from %s to %s rejected: %v", source.Name, target.Name, err), false
		}
		if moved == 0 {
			return "", false
		}
		return fmt.Sprintf("AI moved %d units from %s to %s", moved, source.Name, target.Name), true
	}
}
