package agent

import (
	"cmp"
	"strings"

	"conquest/game"
	"conquest/utils"

	"golang.org/x/exp/slices"
)

const (
	playerTargetBonus      = 1.5
	attackNeighborBonus    = 0.2
	transferNeighborWeight = 0.3
	transferMargin         = 2

	hintNameBonus        = 1.5
	hintAggressionBonus  = 1.2
	hintDefensivePenalty = 0.8
	hintReinforceBonus   = 1.3
)

// Score returns the confidence of a candidate action given the current board
// and a strategy hint. Unknown territories score 0.
func Score(b *game.Board, action game.Action, hint string) float64 {
	source, target := b.Territory(action.From), b.Territory(action.To)
	if source == nil || target == nil {
		return 0
	}
	hint = strings.ToLower(hint)
	if action.Type == game.AttackAction {
		return EvaluateAttack(b, source, target, hint)
	}
	return EvaluateTransfer(b, source, target, hint)
}

// EvaluateAttack scores an attack. The hint must already be lowercased.
func EvaluateAttack(b *game.Board, source, target *game.Territory, hint string) float64 {
	score := float64(source.Units-1) / float64(max(1, target.Units))
	if target.Owner == game.Player {
		score *= playerTargetBonus
	}
	score += attackNeighborBonus * float64(game.CountNeighborsOwnedBy(b, target, game.Player))

	if strings.Contains(hint, strings.ToLower(target.Name)) {
		score *= hintNameBonus
	}
	if utils.ContainsAll(hint, "attack", "player") {
		score *= hintAggressionBonus
	}
	if utils.ContainsAny(hint, "defensive", "defend") {
		score *= hintDefensivePenalty
	}
	return score
}

// EvaluateTransfer scores a transfer. Transfers that would not meaningfully
// rebalance score 0 but stay in the candidate list.
func EvaluateTransfer(b *game.Board, source, dest *game.Territory, hint string) float64 {
	if source.Units <= dest.Units+transferMargin {
		return 0
	}
	score := float64(source.Units-dest.Units) / float64(max(1, source.Units+dest.Units))
	score += transferNeighborWeight * float64(game.CountNeighborsOwnedBy(b, dest, game.Player))

	if strings.Contains(hint, strings.ToLower(dest.Name)) {
		score *= hintNameBonus
	}
	if utils.ContainsAny(hint, "reinforce", "strengthen") {
		score *= hintReinforceBonus
	}
	return score
}

// Rank scores every candidate and sorts them by descending confidence.
// Equal scores keep their enumeration order.
func Rank(b *game.Board, candidates []Candidate, hint string) []Candidate {
	ranked := slices.Clone(candidates)
	for i := range ranked {
		ranked[i].Confidence = Score(b, ranked[i].Action, hint)
	}
	slices.SortStableFunc(ranked, func(a, c Candidate) int {
		return cmp.Compare(c.Confidence, a.Confidence)
	})
	return ranked
}
