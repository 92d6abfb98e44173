package engine

import (
	"context"
	"sync"

	"conquest/game"
)

// Engine drives a single game between the human side and the AI.
type Engine interface {
	// Start moves a new game to the player's first turn. Later calls are no-ops.
	Start()
	// SubmitSelection forwards a click on territory id during the player's turn.
	SubmitSelection(ctx context.Context, id int) error
	// EndPlayerTurn reinforces the player, plays the AI turn and hands control back.
	EndPlayerTurn(ctx context.Context) error
	// State returns the last published projection.
	State() game.GameState
	// Board returns a copy of the board as of the last publication.
	Board() *game.Board
	Subscribe(o Observer)
}

// Observer receives engine events synchronously, in the order they occur,
// before the call that triggered them returns.
type Observer interface {
	StateChanged(state game.GameState)
	Message(message string)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	OnState   func(state game.GameState)
	OnMessage func(message string)
}

func (o ObserverFuncs) StateChanged(state game.GameState) {
	if o.OnState != nil {
		o.OnState(state)
	}
}

func (o ObserverFuncs) Message(message string) {
	if o.OnMessage != nil {
		o.OnMessage(message)
	}
}

type observers struct {
	mu   sync.RWMutex
	list []Observer
}

func (o *observers) add(observer Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.list = append(o.list, observer)
}

func (o *observers) snapshot() []Observer {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.list
}

func (o *observers) stateChanged(state game.GameState) {
	for _, observer := range o.snapshot() {
		observer.StateChanged(state)
	}
}

func (o *observers) message(message string) {
	for _, observer := range o.snapshot() {
		observer.Message(message)
	}
}
