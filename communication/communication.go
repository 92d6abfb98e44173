// Package communication holds the wire types shared by the HTTP/WebSocket
// server and its client.
package communication

import (
	"errors"
	"net/http"

	"conquest/game"
)

// Event types sent over WebSocket.
const (
	EventConnected = "connected"
	EventState     = "state"
	EventMessage   = "message"
)

// Event is the envelope for all WebSocket messages.
type Event struct {
	Type    string          `json:"type"`
	Session string          `json:"session"`
	State   *game.GameState `json:"state,omitempty"`
	Message string          `json:"message,omitempty"`
}

type TerritoryView struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Owner    game.Side     `json:"owner"`
	Units    int           `json:"units"`
	Position game.Position `json:"position"`
}

type StateResponse struct {
	Session string         `json:"session"`
	State   game.GameState `json:"state"`
}

type BoardResponse struct {
	Session     string          `json:"session"`
	Territories []TerritoryView `json:"territories"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Territories projects the board for transport.
func Territories(b *game.Board) []TerritoryView {
	views := make([]TerritoryView, 0, len(b.Territories()))
	for _, t := range b.Territories() {
		views = append(views, TerritoryView{ID: t.ID, Name: t.Name, Owner: t.Owner, Units: t.Units, Position: t.Position})
	}
	return views
}

var codes = []struct {
	err    error
	code   string
	status int
}{
	{game.ErrInvalidTurn, "invalid_turn", http.StatusConflict},
	{game.ErrTurnInProgress, "turn_in_progress", http.StatusConflict},
	{game.ErrUnknownTerritory, "unknown_territory", http.StatusNotFound},
	{game.ErrNotAdjacent, "not_adjacent", http.StatusUnprocessableEntity},
	{game.ErrInsufficientUnits, "insufficient_units", http.StatusUnprocessableEntity},
}

// Classify maps an engine error to an error code and HTTP status.
func Classify(err error) (string, int) {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code, c.status
		}
	}
	return "internal", http.StatusInternalServerError
}

// ErrorForCode returns the sentinel error behind code, or nil.
func ErrorForCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
