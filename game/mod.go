package game

import (
	"fmt"
	"strings"
)

// Side identifies who owns a territory or whose turn it is.
type Side int

const (
	Neutral Side = iota
	Player
	AI
)

// None is the winner while the game is still running. It never owns a
// territory.
const None Side = -1

func (s Side) String() string {
	switch s {
	case Player:
		return "Player"
	case AI:
		return "AI"
	case None:
		return "None"
	default:
		return "Neutral"
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "player":
		*s = Player
	case "ai":
		*s = AI
	case "neutral", "":
		*s = Neutral
	case "none":
		*s = None
	default:
		return fmt.Errorf("unknown side %q", text)
	}
	return nil
}

