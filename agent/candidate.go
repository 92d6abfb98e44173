package agent

import (
	"fmt"

	"conquest/game"
)

// Candidate is a scored action the AI may take this turn.
type Candidate struct {
	Action     game.Action
	Source     string
	Target     string
	Confidence float64
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s %s -> %s (%.2f)", c.Action.Type, c.Source, c.Target, c.Confidence)
}

// Candidates enumerates every action available to the AI, in board order:
// one per (source, neighbor) pair where the source is AI-owned with more than
// one unit. Same-owner neighbors become transfers, all others attacks.
func Candidates(b *game.Board) []Candidate {
	candidates := []Candidate{}
	for _, source := range b.OwnedBy(game.AI) {
		if source.Units <= 1 {
			continue
		}
		for _, target := range b.Neighbors(source) {
			actionType := game.AttackAction
			if target.Owner == source.Owner {
				actionType = game.TransferAction
			}
			candidates = append(candidates, Candidate{
				Action: game.Action{Type: actionType, From: source.ID, To: target.ID},
				Source: source.Name,
				Target: target.Name,
			})
		}
	}
	return candidates
}
