package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"conquest/agent"
	"conquest/game"
	"conquest/meta"
	"conquest/utils"

	"github.com/rs/zerolog/log"
)

type Option func(e *Local)

// Local runs the game in process. Mutating entry points never queue: a call
// that overlaps another is rejected.
type Local struct {
	mu            sync.Mutex // Held for the whole of every mutating call
	board         *game.Board
	resolver      *game.Resolver
	strategist    *agent.Strategist
	thinkingDelay time.Duration
	phase         game.Phase
	winner        game.Side
	round         int
	selection     int
	lastAITurn    agent.TurnResult

	observers observers

	stateMu   sync.RWMutex
	published game.GameState
	snapshot  *game.Board
}

func WithRules(rules game.Rules) Option {
	return func(e *Local) {
		if rules != nil {
			e.resolver = game.NewResolver(e.board, rules, nil)
		}
	}
}

// WithResolver replaces the resolver. It must mutate the engine's board.
func WithResolver(r *game.Resolver) Option {
	return func(e *Local) {
		if r != nil && r.Board() == e.board {
			e.resolver = r
		}
	}
}

func WithStrategist(s *agent.Strategist) Option {
	return func(e *Local) {
		if s != nil {
			e.strategist = s
		}
	}
}

// WithThinkingDelay sets the pause before the AI acts. Zero skips it.
func WithThinkingDelay(d time.Duration) Option {
	return func(e *Local) {
		if d >= 0 {
			e.thinkingDelay = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Local) {
		if o != nil {
			e.observers.add(o)
		}
	}
}

// NewLocal creates an engine over board. A nil board uses the standard map.
func NewLocal(board *game.Board, options ...Option) *Local {
	if board == nil {
		board = game.CreateMap()
	}
	e := &Local{ // Default values
		board:         board,
		resolver:      game.NewResolver(board, nil, game.NewSource(uint64(time.Now().UnixNano()))),
		strategist:    agent.NewStrategist(),
		thinkingDelay: meta.THINKING_DELAY,
		phase:         game.NotStartedPhase,
		winner:        game.None,
		selection:     game.NoSelection,
	}
	for _, option := range options {
		option(e)
	}
	e.store()
	return e
}

func (e *Local) Subscribe(o Observer) {
	if o != nil {
		e.observers.add(o)
	}
}

func (e *Local) Start() {
	if !e.mu.TryLock() {
		return
	}
	defer e.mu.Unlock()
	if e.phase != game.NotStartedPhase {
		return
	}

	e.phase = game.PlayerTurnPhase
	e.round = 1
	log.Info().Msg("game started")
	e.message("Game started. Select one of your territories.")
	e.publish()
}

func (e *Local) SubmitSelection(ctx context.Context, id int) error {
	if !e.mu.TryLock() {
		return fmt.Errorf("selection while the AI is playing: %w", game.ErrInvalidTurn)
	}
	defer e.mu.Unlock()
	if e.phase != game.PlayerTurnPhase {
		return fmt.Errorf("selection during %s: %w", e.phase, game.ErrInvalidTurn)
	}

	result := game.Select(e.selection, id, e.board)
	selectionChanged := result.Selection != e.selection
	e.selection = result.Selection
	if result.Message != "" {
		e.message(result.Message)
	}
	if result.Err != nil {
		return result.Err
	}
	if result.Action == nil {
		if selectionChanged {
			e.publish()
		}
		return nil
	}

	err := e.apply(*result.Action)
	e.publish()
	if err != nil {
		return err
	}
	e.checkWinner()
	return nil
}

// apply resolves a player action. Failures are reported to observers and
// leave the board unchanged.
func (e *Local) apply(action game.Action) error {
	source, target := e.board.Territory(action.From), e.board.Territory(action.To)
	switch action.Type {
	case game.AttackAction:
		result, err := e.resolver.ResolveAttack(source, target)
		if err != nil {
			e.message(fmt.Sprintf("Attack failed: %s needs more than one unit", source.Name))
			return err
		}
		e.message(result.String())
	default:
		moved, err := e.resolver.ResolveTransfer(source, target, game.Player)
		if err != nil {
			e.message(fmt.Sprintf("Transfer failed: %s has no units to spare", source.Name))
			return err
		}
		e.message(fmt.Sprintf("Moved %d units from %s to %s", moved, source.Name, target.Name))
	}
	return nil
}

func (e *Local) EndPlayerTurn(ctx context.Context) error {
	if !e.mu.TryLock() {
		return game.ErrTurnInProgress
	}
	defer e.mu.Unlock()
	switch e.phase {
	case game.NotStartedPhase, game.GameOverPhase:
		return fmt.Errorf("end turn during %s: %w", e.phase, game.ErrInvalidTurn)
	case game.PlayerTurnPhase:
	default:
		return game.ErrTurnInProgress
	}

	e.selection = game.NoSelection
	reinforced := e.board.Reinforce(game.Player)
	e.message(fmt.Sprintf("Player reinforced %d territories", reinforced))
	e.publish()
	if e.checkWinner() {
		return nil
	}

	e.phase = game.AIThinkingPhase
	e.message("AI is thinking...")
	e.publish()
	utils.Sleep(ctx, e.thinkingDelay)

	e.phase = game.AITurnPhase
	e.publish()
	turn := e.strategist.PlayTurn(ctx, e.resolver, func(message string, changed bool) {
		e.message(message)
		if changed {
			e.publish()
		}
	})
	e.stateMu.Lock()
	e.lastAITurn = turn
	e.stateMu.Unlock()

	reinforced = e.board.Reinforce(game.AI)
	e.message(fmt.Sprintf("AI reinforced %d territories", reinforced))
	e.round++
	e.phase = game.PlayerTurnPhase
	e.publish()
	e.checkWinner()
	log.Debug().Int("round", e.round).Msg("player turn")
	return nil
}

// checkWinner ends the game if a side has been eliminated.
func (e *Local) checkWinner() bool {
	winner := game.CheckWinner(e.board)
	if winner == game.None {
		return false
	}
	e.phase = game.GameOverPhase
	e.winner = winner
	e.selection = game.NoSelection
	log.Info().Str("winner", winner.String()).Int("round", e.round).Msg("game over")
	e.message(fmt.Sprintf("Game over: %s wins", winner))
	e.publish()
	return true
}

func (e *Local) State() game.GameState {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.published
}

func (e *Local) Board() *game.Board {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.snapshot.Copy()
}

// LastAITurn returns the summary of the most recent AI turn.
func (e *Local) LastAITurn() agent.TurnResult {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.lastAITurn
}

// store recomputes the projection. Callers hold mu or own the engine.
func (e *Local) store() game.GameState {
	player, ai, neutral := game.Tally(e.board)
	state := game.GameState{
		Turn:      game.Player,
		Phase:     e.phase,
		Round:     e.round,
		GameOver:  e.phase == game.GameOverPhase,
		Winner:    e.winner,
		Selection: e.selection,
		Player:    player,
		AI:        ai,
		Neutral:   neutral,
	}
	if e.phase == game.AIThinkingPhase || e.phase == game.AITurnPhase {
		state.Turn = game.AI
	}

	e.stateMu.Lock()
	e.published = state
	e.snapshot = e.board.Copy()
	e.stateMu.Unlock()
	return state
}

func (e *Local) publish() {
	e.observers.stateChanged(e.store())
}

func (e *Local) message(message string) {
	log.Debug().Str("event", message).Msg("engine event")
	e.observers.message(message)
}
