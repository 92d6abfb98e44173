package game

import "fmt"

type Phase int

const (
	NotStartedPhase Phase = iota
	PlayerTurnPhase
	AIThinkingPhase
	AITurnPhase
	GameOverPhase
)

func (p Phase) String() string {
	switch p {
	case PlayerTurnPhase:
		return "player_turn"
	case AIThinkingPhase:
		return "ai_thinking"
	case AITurnPhase:
		return "ai_turn"
	case GameOverPhase:
		return "game_over"
	default:
		return "not_started"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := NotStartedPhase; candidate <= GameOverPhase; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// SideStats aggregates what a side holds on the board.
type SideStats struct {
	Territories int `json:"territories"`
	Units       int `json:"units"`
}

// GameState is a read-only projection of the board and turn, recomputed
// after every mutating step. It is never the source of truth.
type GameState struct {
	Turn      Side      `json:"turn"`
	Phase     Phase     `json:"phase"`
	Round     int       `json:"round"`
	GameOver  bool      `json:"gameOver"`
	Winner    Side      `json:"winner"`
	Selection int       `json:"selection"` // Selected territory ID or NoSelection
	Player    SideStats `json:"player"`
	AI        SideStats `json:"ai"`
	Neutral   SideStats `json:"neutral"`
}

// Stats returns the aggregate for side.
func (gs GameState) Stats(side Side) SideStats {
	switch side {
	case Player:
		return gs.Player
	case AI:
		return gs.AI
	default:
		return gs.Neutral
	}
}

// Tally counts territories and units per side.
func Tally(b *Board) (player, ai, neutral SideStats) {
	for _, t := range b.Territories() {
		var s *SideStats
		switch t.Owner {
		case Player:
			s = &player
		case AI:
			s = &ai
		default:
			s = &neutral
		}
		s.Territories++
		s.Units += t.Units
	}
	return player, ai, neutral
}

// CheckWinner returns the side that eliminated its opponent, or None.
func CheckWinner(b *Board) Side {
	player, ai, _ := Tally(b)
	if ai.Territories == 0 {
		return Player
	}
	if player.Territories == 0 {
		return AI
	}
	return None
}
