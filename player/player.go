// Package player drives the human side of the game headlessly by clicking
// through the engine exactly as a presentation layer would.
package player

import (
	"context"
	"errors"
	"math/rand/v2"

	"conquest/engine"
	"conquest/game"

	"github.com/rs/zerolog/log"
)

type Option func(p *Player)

// Player is a seeded scripted opponent for the AI.
type Player struct {
	engine      engine.Engine
	rand        *rand.Rand
	maxActions  int
	temperature float64
}

func WithMaxActions(n int) Option {
	return func(p *Player) {
		if n > 0 {
			p.maxActions = n
		}
	}
}

func WithTemperature(temperature float64) Option {
	return func(p *Player) {
		if temperature > 0 {
			p.temperature = temperature
		}
	}
}

func NewPlayer(e engine.Engine, seed uint64, options ...Option) *Player {
	p := &Player{ // Default values
		engine:      e,
		rand:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		maxActions:  3,
		temperature: 0.5,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// TakeTurn plays up to maxActions actions and ends the turn. It returns the
// number of actions that resolved.
func (p *Player) TakeTurn(ctx context.Context) (int, error) {
	played := 0
	for i := 0; i < p.maxActions; i++ {
		if p.engine.State().GameOver {
			return played, nil
		}
		moves := possibleMoves(p.engine.Board())
		if len(moves) == 0 {
			break
		}
		chosen := moves[sample(adjustTemperature(moves, p.temperature), p.rand)].action

		err := p.click(ctx, chosen)
		switch {
		case err == nil:
			played++
		case errors.Is(err, game.ErrInsufficientUnits):
			log.Debug().Err(err).Msg("scripted player action rejected")
		default:
			return played, err
		}
	}

	if p.engine.State().GameOver {
		return played, nil
	}
	return played, p.engine.EndPlayerTurn(ctx)
}

// click selects the source and then the target of action.
func (p *Player) click(ctx context.Context, action game.Action) error {
	if selection := p.engine.State().Selection; selection != game.NoSelection {
		// Deselect leftovers first so the source click selects
		if err := p.engine.SubmitSelection(ctx, selection); err != nil {
			return err
		}
	}
	if err := p.engine.SubmitSelection(ctx, action.From); err != nil {
		return err
	}
	return p.engine.SubmitSelection(ctx, action.To)
}
