package player

import (
	"math"
	"math/rand/v2"

	"conquest/game"
)

type move struct {
	action game.Action
	score  float64
}

// possibleMoves lists every attack and transfer the human side can make,
// scored by how favorable it looks.
func possibleMoves(b *game.Board) []move {
	moves := []move{}
	for _, source := range b.OwnedBy(game.Player) {
		if source.Units <= 1 {
			continue
		}
		frontline := false
		for _, n := range b.Neighbors(source) {
			if n.Owner != game.Player {
				frontline = true
				break
			}
		}
		for _, target := range b.Neighbors(source) {
			if target.Owner == game.Player {
				// Only push units forward from territories with nothing to fight
				if frontline || source.Units < 3 {
					continue
				}
				moves = append(moves, move{
					action: game.Action{Type: game.TransferAction, From: source.ID, To: target.ID},
					score:  0.5 + 0.1*float64(game.CountNeighborsOwnedBy(b, target, game.AI)),
				})
				continue
			}
			score := float64(source.Units-1) / float64(max(1, target.Units))
			if target.Owner == game.AI {
				score *= 1.25
			}
			moves = append(moves, move{
				action: game.Action{Type: game.AttackAction, From: source.ID, To: target.ID},
				score:  score,
			})
		}
	}
	return moves
}

// adjustTemperature turns scores into sampling probabilities. Lower
// temperatures favor the best moves more strongly.
func adjustTemperature(moves []move, temperature float64) []float64 {
	exponent := 1.0 / temperature
	sum := 0.0
	policy := make([]float64, len(moves))
	for i, m := range moves {
		prob := math.Pow(math.Max(m.score, 1e-6), exponent)
		sum += prob
		policy[i] = prob
	}
	// Normalize
	for i := range policy {
		policy[i] /= sum
	}
	return policy
}

// sample picks an index from policy.
func sample(policy []float64, r *rand.Rand) int {
	sampled := r.Float64()
	cumulative := 0.0
	for i, prob := range policy {
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return len(policy) - 1
}
