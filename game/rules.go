package game

type Rules interface {
	// AttackStrength scales the committed units by a draw in [0,1).
	AttackStrength(units int, draw float64) int
	// DefenseStrength scales the defending units by a draw in [0,1).
	DefenseStrength(units int, draw float64) int
	// DetermineAttackOutcome returns the unit counts of both territories
	// after the battle and whether the defender was conquered.
	DetermineAttackOutcome(attackerUnits, defenderUnits, attack, defense int) (attackerAfter, defenderAfter int, conquered bool)
	// TransferAmount returns how many units initiator moves out of a
	// territory holding units.
	TransferAmount(units int, initiator Side) int
}
