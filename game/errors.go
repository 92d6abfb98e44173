package game

import "errors"

// Game errors. None of them is fatal: the game stays playable after each.
var (
	ErrInsufficientUnits = errors.New("not enough units")
	ErrNotAdjacent       = errors.New("territories are not adjacent")
	ErrInvalidTurn       = errors.New("not your turn")
	ErrUnknownTerritory  = errors.New("unknown territory")
	ErrTurnInProgress    = errors.New("turn already in progress")
)
