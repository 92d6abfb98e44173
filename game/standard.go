package game

import "math"

type StandardRules struct {
	VarianceFloor    float64 // Lowest strength multiplier
	VarianceSpan     float64 // Width of the multiplier range
	AttackerLossRate float64 // Share of units a repelled attacker loses
	DefenderLossRate float64 // Share of units a successful defender loses
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		VarianceFloor:    0.8,
		VarianceSpan:     0.4,
		AttackerLossRate: 0.5,
		DefenderLossRate: 0.3,
	}
}

func (sr *StandardRules) AttackStrength(units int, draw float64) int {
	// One unit always stays behind
	return floor(float64(units-1) * sr.factor(draw))
}

func (sr *StandardRules) DefenseStrength(units int, draw float64) int {
	return floor(float64(units) * sr.factor(draw))
}

func (sr *StandardRules) factor(draw float64) float64 {
	return sr.VarianceFloor + draw*sr.VarianceSpan
}

func (sr *StandardRules) DetermineAttackOutcome(attackerUnits, defenderUnits, attack, defense int) (int, int, bool) {
	// Ties favor the defender
	if attack > defense {
		remaining := (attackerUnits - 1) * attack / (attack + defense)
		return 1, remaining, true
	}
	attackerLosses := floor(float64(attackerUnits) * sr.AttackerLossRate)
	defenderLosses := floor(float64(defenderUnits) * sr.DefenderLossRate)
	return max(1, attackerUnits-attackerLosses), max(1, defenderUnits-defenderLosses), false
}

func (sr *StandardRules) TransferAmount(units int, initiator Side) int {
	if initiator == AI {
		// The AI always keeps at least one unit at the source
		return max(0, (units-1)/2)
	}
	return max(0, units/2)
}

func floor(f float64) int {
	return int(math.Floor(f))
}
