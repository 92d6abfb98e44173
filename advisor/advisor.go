// Package advisor supplies free-text strategy hints for the automated side.
// Hints are untrusted: they only bias the AI's scoring through keyword and
// name matching, and any failure to obtain one falls back to a fixed text.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"conquest/game"

	"github.com/rs/zerolog/log"
)

// ErrUnavailable wraps every reason a hint could not be obtained.
var ErrUnavailable = errors.New("strategy advisor unavailable")

// Advisor returns a strategy hint for the given board snapshot.
type Advisor interface {
	Strategy(ctx context.Context, snapshot Snapshot) (string, error)
}

// Func adapts a plain function to the Advisor interface.
type Func func(ctx context.Context, snapshot Snapshot) (string, error)

func (f Func) Strategy(ctx context.Context, snapshot Snapshot) (string, error) {
	return f(ctx, snapshot)
}

type TerritoryView struct {
	Name     string        `json:"name"`
	Units    int           `json:"units"`
	Position game.Position `json:"position"`
}

type Totals struct {
	AITerritories     int `json:"aiTerritories"`
	PlayerTerritories int `json:"playerTerritories"`
	AIUnits           int `json:"aiUnits"`
	PlayerUnits       int `json:"playerUnits"`
}

// Snapshot is the read-only projection of the board sent to an advisor.
type Snapshot struct {
	AI      []TerritoryView `json:"ai"`
	Player  []TerritoryView `json:"player"`
	Neutral []TerritoryView `json:"neutral"`
	Totals  Totals          `json:"totals"`
}

// NewSnapshot projects the board into a Snapshot.
func NewSnapshot(b *game.Board) Snapshot {
	snap := Snapshot{
		AI:      []TerritoryView{},
		Player:  []TerritoryView{},
		Neutral: []TerritoryView{},
	}
	for _, t := range b.Territories() {
		view := TerritoryView{Name: t.Name, Units: t.Units, Position: t.Position}
		switch t.Owner {
		case game.AI:
			snap.AI = append(snap.AI, view)
			snap.Totals.AIUnits += t.Units
		case game.Player:
			snap.Player = append(snap.Player, view)
			snap.Totals.PlayerUnits += t.Units
		default:
			snap.Neutral = append(snap.Neutral, view)
		}
	}
	snap.Totals.AITerritories = len(snap.AI)
	snap.Totals.PlayerTerritories = len(snap.Player)
	return snap
}

// Fetch makes a single attempt to obtain a hint within timeout. It always
// returns a usable hint: on any failure the fallback is returned together
// with an error wrapping ErrUnavailable. A zero timeout means no deadline
// beyond ctx.
func Fetch(ctx context.Context, a Advisor, snapshot Snapshot, timeout time.Duration, fallback string) (string, error) {
	if a == nil {
		return fallback, fmt.Errorf("no advisor configured: %w", ErrUnavailable)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	hint, err := a.Strategy(ctx, snapshot)
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("strategy advisor failed, using fallback hint")
		return fallback, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	hint = strings.TrimSpace(hint)
	if hint == "" {
		log.Warn().Msg("strategy advisor returned an empty hint, using fallback hint")
		return fallback, fmt.Errorf("empty hint: %w", ErrUnavailable)
	}

	log.Debug().Str("hint", hint).Dur("elapsed", time.Since(start)).Msg("strategy hint received")
	return hint, nil
}
