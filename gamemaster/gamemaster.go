// Package gamemaster runs a game from a text console.
package gamemaster

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"conquest/engine"
	"conquest/game"
	"conquest/utils"

	"github.com/rs/zerolog/log"
)

var commands = []string{"select", "end", "board", "state", "help", "quit", "exit"}

const usage = `Commands:
  select <name|id>  click a territory
  end               end your turn
  board             show the board
  state             show the game state
  help              show this help
  quit              leave the game
`

// GameMaster reads commands from in, drives the engine and prints every
// engine event to out.
type GameMaster struct {
	engine engine.Engine
	in     io.Reader
	mu     sync.Mutex // Guards out and the fields below
	out    io.Writer
	phase  game.Phase
	round  int
}

// NewGameMaster creates a console session and subscribes it to e.
func NewGameMaster(e engine.Engine, in io.Reader, out io.Writer) *GameMaster {
	gm := &GameMaster{
		engine: e,
		in:     in,
		out:    out,
		phase:  game.NotStartedPhase,
	}
	e.Subscribe(gm)
	return gm
}

func (gm *GameMaster) StateChanged(state game.GameState) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	// Only turn transitions are worth a status line
	if state.Phase == gm.phase && state.Round == gm.round {
		return
	}
	gm.phase, gm.round = state.Phase, state.Round
	fmt.Fprintln(gm.out, statusLine(state))
}

func (gm *GameMaster) Message(message string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	fmt.Fprintf(gm.out, "> %s\n", message)
}

// Run starts the game and processes commands until the input ends, the
// player quits, the game is over or ctx is done.
func (gm *GameMaster) Run(ctx context.Context) error {
	gm.engine.Start()
	gm.printf("%s", usage)

	scanner := bufio.NewScanner(gm.in)
	for !gm.engine.State().GameOver {
		if err := ctx.Err(); err != nil {
			return err
		}
		gm.printf("[%s] ", gm.engine.State().Phase)
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := gm.execute(ctx, scanner.Text())
		if err != nil {
			gm.printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	gm.printf("%s\n", statusLine(gm.engine.State()))
	return nil
}

// execute runs a single command line. It reports whether the session should
// end.
func (gm *GameMaster) execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch utils.FindIndex(commands, strings.ToLower(fields[0])) {
	case 0:
		if len(fields) < 2 {
			return false, errors.New("select needs a territory name or id")
		}
		id, err := gm.resolve(strings.Join(fields[1:], " "))
		if err != nil {
			return false, err
		}
		return false, gm.engine.SubmitSelection(ctx, id)
	case 1:
		return false, gm.engine.EndPlayerTurn(ctx)
	case 2:
		gm.mu.Lock()
		defer gm.mu.Unlock()
		return false, RenderBoard(gm.out, gm.engine.Board(), gm.engine.State().Selection)
	case 3:
		gm.printf("%s\n", statusLine(gm.engine.State()))
	case 4:
		gm.printf("%s", usage)
	case 5, 6:
		log.Info().Msg("player left the game")
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type help", fields[0])
	}
	return false, nil
}

// resolve accepts a territory name or numeric id.
func (gm *GameMaster) resolve(name string) (int, error) {
	b := gm.engine.Board()
	if t := b.TerritoryByName(name); t != nil {
		return t.ID, nil
	}
	if id, err := strconv.Atoi(name); err == nil && b.Territory(id) != nil {
		return id, nil
	}
	return 0, fmt.Errorf("territory %q: %w", name, game.ErrUnknownTerritory)
}

func (gm *GameMaster) printf(format string, args ...any) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	fmt.Fprintf(gm.out, format, args...)
}

func statusLine(state game.GameState) string {
	if state.GameOver {
		return fmt.Sprintf("Game over after %d rounds: %s wins", state.Round, state.Winner)
	}
	return fmt.Sprintf("Round %d, %s | Player %d territories %d units | AI %d territories %d units | Neutral %d",
		state.Round, state.Phase,
		state.Player.Territories, state.Player.Units,
		state.AI.Territories, state.AI.Units,
		state.Neutral.Territories)
}
