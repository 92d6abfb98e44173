package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"conquest/advisor"
	"conquest/agent"
	"conquest/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	states   []game.GameState
	messages []string
	events   []string
}

func (r *recorder) StateChanged(state game.GameState) {
	r.states = append(r.states, state)
	r.events = append(r.events, "state:"+state.Phase.String())
}

func (r *recorder) Message(message string) {
	r.messages = append(r.messages, message)
	r.events = append(r.events, "message")
}

// keepOneRules moves every unit but one on transfers.
type keepOneRules struct {
	*game.StandardRules
}

func (keepOneRules) TransferAmount(units int, _ game.Side) int {
	return units - 1
}

func newTestEngine(b *game.Board, source game.Source, options ...Option) (*Local, *recorder) {
	rec := &recorder{}
	strategist := agent.NewStrategist(agent.WithActionDelay(0), agent.WithAdvisor(advisor.Static("expand")))
	options = append([]Option{
		WithResolver(game.NewResolver(b, nil, source)),
		WithStrategist(strategist),
		WithThinkingDelay(0),
		WithObserver(rec),
	}, options...)
	return NewLocal(b, options...), rec
}

func TestLocalLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("calls before start are rejected", func(t *testing.T) {
		e, rec := newTestEngine(game.CreateMap(), nil)

		require.ErrorIs(t, e.SubmitSelection(ctx, 0), game.ErrInvalidTurn)
		require.ErrorIs(t, e.EndPlayerTurn(ctx), game.ErrInvalidTurn)
		require.Equal(t, game.NotStartedPhase, e.State().Phase)
		require.Empty(t, rec.events)
	})

	t.Run("start is idempotent", func(t *testing.T) {
		e, rec := newTestEngine(game.CreateMap(), nil)

		e.Start()
		e.Start()

		require.Equal(t, []string{"message", "state:player_turn"}, rec.events)
		state := e.State()
		require.Equal(t, game.PlayerTurnPhase, state.Phase)
		require.Equal(t, game.Player, state.Turn)
		require.Equal(t, 1, state.Round)
		require.Equal(t, game.SideStats{Territories: 1, Units: 5}, state.Player)
		require.Equal(t, game.SideStats{Territories: 19}, state.Neutral)
	})

	t.Run("published state has no winner while running", func(t *testing.T) {
		e, _ := newTestEngine(game.CreateMap(), nil)
		e.Start()

		state := e.State()
		require.Equal(t, game.None, state.Winner)
		data, err := json.Marshal(state)
		require.NoError(t, err)
		require.Contains(t, string(data), `"winner":"None"`)
	})

	t.Run("engine events are logged under their own field", func(t *testing.T) {
		var buf bytes.Buffer
		previous := log.Logger
		log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
		t.Cleanup(func() { log.Logger = previous })
		e, _ := newTestEngine(game.CreateMap(), nil)

		e.Start()

		var entry map[string]any
		for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
			entry = map[string]any{}
			require.NoError(t, json.Unmarshal(line, &entry))
			if entry["message"] == "engine event" {
				break
			}
		}
		require.Equal(t, "engine event", entry["message"])
		require.Equal(t, "Game started. Select one of your territories.", entry["event"])
	})

	t.Run("selecting publishes the new selection", func(t *testing.T) {
		b := game.CreateMap()
		e, rec := newTestEngine(b, nil)
		e.Start()
		northwatch := b.TerritoryByName("Northwatch")

		require.NoError(t, e.SubmitSelection(ctx, northwatch.ID))

		require.Equal(t, northwatch.ID, e.State().Selection)
		require.Equal(t, []string{"message", "state:player_turn", "message", "state:player_turn"}, rec.events)
	})

	t.Run("non-adjacent clicks keep the selection", func(t *testing.T) {
		b := game.CreateMap()
		e, _ := newTestEngine(b, nil)
		e.Start()
		northwatch := b.TerritoryByName("Northwatch")
		require.NoError(t, e.SubmitSelection(ctx, northwatch.ID))

		err := e.SubmitSelection(ctx, b.TerritoryByName("Thornfield").ID)

		require.ErrorIs(t, err, game.ErrNotAdjacent)
		require.Equal(t, northwatch.ID, e.State().Selection)
	})
}

func TestLocalPlayerActions(t *testing.T) {
	ctx := context.Background()

	t.Run("attack conquers a neutral neighbor", func(t *testing.T) {
		b := game.CreateMap()
		e, rec := newTestEngine(b, &game.FixedSource{Draws: []float64{0.5}})
		e.Start()
		northwatch, ashford := b.TerritoryByName("Northwatch"), b.TerritoryByName("Ashford")

		require.NoError(t, e.SubmitSelection(ctx, northwatch.ID))
		require.NoError(t, e.SubmitSelection(ctx, ashford.ID))

		require.Equal(t, game.Player, ashford.Owner)
		require.Equal(t, 1, northwatch.Units)
		state := e.State()
		require.Equal(t, 2, state.Player.Territories)
		require.Equal(t, game.NoSelection, state.Selection)
		require.Contains(t, rec.messages, "Player conquered Ashford from Northwatch (4 vs 0), 4 units moved in")
	})

	t.Run("failed transfer leaves the board unchanged", func(t *testing.T) {
		b := game.CreateMap()
		e, rec := newTestEngine(b, nil)
		northwatch, ashford := b.TerritoryByName("Northwatch"), b.TerritoryByName("Ashford")
		b.SetUnits(northwatch, 1)
		b.SetOwner(ashford, game.Player)
		b.SetUnits(ashford, 3)
		e.Start()

		require.NoError(t, e.SubmitSelection(ctx, northwatch.ID))
		err := e.SubmitSelection(ctx, ashford.ID)

		require.ErrorIs(t, err, game.ErrInsufficientUnits)
		require.Equal(t, 1, northwatch.Units)
		require.Equal(t, 3, ashford.Units)
		require.Contains(t, rec.messages[len(rec.messages)-1], "Transfer failed")
	})

	t.Run("custom rules drive transfers", func(t *testing.T) {
		b := game.CreateMap()
		rec := &recorder{}
		e := NewLocal(b, WithRules(keepOneRules{game.NewStandardRules()}), WithThinkingDelay(0), WithObserver(rec))
		northwatch, ashford := b.TerritoryByName("Northwatch"), b.TerritoryByName("Ashford")
		b.SetOwner(ashford, game.Player)
		e.Start()

		require.NoError(t, e.SubmitSelection(ctx, northwatch.ID))
		require.NoError(t, e.SubmitSelection(ctx, ashford.ID))

		require.Equal(t, 1, northwatch.Units)
		require.Equal(t, 4, ashford.Units)
		require.Contains(t, rec.messages, "Moved 4 units from Northwatch to Ashford")
	})

	t.Run("eliminating the ai ends the game", func(t *testing.T) {
		b := game.NewBoard()
		alpha := b.AddTerritory("Alpha", game.Position{}, game.Player, 10)
		bravo := b.AddTerritory("Bravo", game.Position{X: game.GridSpacing}, game.AI, 1)
		e, rec := newTestEngine(b, &game.FixedSource{Draws: []float64{0.99, 0}})
		e.Start()

		require.NoError(t, e.SubmitSelection(ctx, alpha.ID))
		require.NoError(t, e.SubmitSelection(ctx, bravo.ID))

		state := e.State()
		require.True(t, state.GameOver)
		require.Equal(t, game.GameOverPhase, state.Phase)
		require.Equal(t, game.Player, state.Winner)
		require.Equal(t, "Game over: Player wins", rec.messages[len(rec.messages)-1])

		before := e.Board()
		events := len(rec.events)
		require.ErrorIs(t, e.EndPlayerTurn(ctx), game.ErrInvalidTurn)
		require.ErrorIs(t, e.SubmitSelection(ctx, alpha.ID), game.ErrInvalidTurn)
		require.Equal(t, events, len(rec.events), "no events after game over")
		for i, tr := range before.Territories() {
			require.Equal(t, *tr, *b.Territory(i))
		}
	})
}

func TestLocalEndPlayerTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("full round", func(t *testing.T) {
		b := game.CreateMap()
		e, rec := newTestEngine(b, game.NewSource(3))
		e.Start()

		require.NoError(t, e.EndPlayerTurn(ctx))

		state := e.State()
		require.Equal(t, game.PlayerTurnPhase, state.Phase)
		require.Equal(t, 2, state.Round)
		require.Equal(t, 6, b.TerritoryByName("Northwatch").Units, "player reinforced once")
		require.Greater(t, state.AI.Territories, 1, "ai expanded into neutral land")
		require.NotEmpty(t, e.LastAITurn().Ranked)

		phases := []game.Phase{}
		for _, s := range rec.states {
			if len(phases) == 0 || phases[len(phases)-1] != s.Phase {
				phases = append(phases, s.Phase)
			}
		}
		require.Equal(t, []game.Phase{
			game.PlayerTurnPhase, game.AIThinkingPhase, game.AITurnPhase, game.PlayerTurnPhase,
		}, phases)
		require.Contains(t, rec.messages, "Player reinforced 1 territories")
		require.Equal(t, fmt.Sprintf("AI reinforced %d territories", state.AI.Territories), rec.messages[len(rec.messages)-1])
	})

	t.Run("clears the pending selection", func(t *testing.T) {
		b := game.CreateMap()
		e, _ := newTestEngine(b, nil)
		e.Start()
		require.NoError(t, e.SubmitSelection(ctx, b.TerritoryByName("Northwatch").ID))

		require.NoError(t, e.EndPlayerTurn(ctx))

		require.Equal(t, game.NoSelection, e.State().Selection)
	})

	t.Run("overlapping calls are rejected", func(t *testing.T) {
		b := game.CreateMap()
		entered := make(chan struct{})
		release := make(chan struct{})
		blocking := advisor.Func(func(context.Context, advisor.Snapshot) (string, error) {
			close(entered)
			<-release
			return "expand", nil
		})
		strategist := agent.NewStrategist(agent.WithActionDelay(0), agent.WithAdvisor(blocking))
		e, _ := newTestEngine(b, nil, WithStrategist(strategist))
		e.Start()

		done := make(chan error)
		go func() { done <- e.EndPlayerTurn(ctx) }()
		<-entered

		require.ErrorIs(t, e.EndPlayerTurn(ctx), game.ErrTurnInProgress)
		require.ErrorIs(t, e.SubmitSelection(ctx, 0), game.ErrInvalidTurn)
		require.Equal(t, game.AITurnPhase, e.State().Phase)
		require.Equal(t, game.AI, e.State().Turn)

		close(release)
		require.NoError(t, <-done)
		require.Equal(t, game.PlayerTurnPhase, e.State().Phase)
	})

	t.Run("cancellation shortens delays but completes the turn", func(t *testing.T) {
		b := game.CreateMap()
		e, _ := newTestEngine(b, nil, WithThinkingDelay(time.Hour))
		e.Start()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		start := time.Now()
		require.NoError(t, e.EndPlayerTurn(cancelled))

		require.Less(t, time.Since(start), time.Minute)
		require.Equal(t, game.PlayerTurnPhase, e.State().Phase)
		require.Equal(t, 2, e.State().Round)
		require.Equal(t, 6, b.TerritoryByName("Northwatch").Units)
	})

	t.Run("ai can eliminate the player", func(t *testing.T) {
		b := game.NewBoard()
		b.AddTerritory("Alpha", game.Position{}, game.Player, 1)
		b.AddTerritory("Bravo", game.Position{X: game.GridSpacing}, game.AI, 20)
		e, rec := newTestEngine(b, &game.FixedSource{Draws: []float64{0.99, 0}})
		e.Start()

		require.NoError(t, e.EndPlayerTurn(ctx))

		state := e.State()
		require.True(t, state.GameOver)
		require.Equal(t, game.AI, state.Winner)
		require.Equal(t, "Game over: AI wins", rec.messages[len(rec.messages)-1])
	})
}
