package game

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// AttackResult describes a resolved battle.
type AttackResult struct {
	Attacker        string
	Defender        string
	Side            Side // Attacking side
	AttackStrength  int
	DefenseStrength int
	Conquered       bool
	AttackerBefore  int
	DefenderBefore  int
	AttackerAfter   int
	DefenderAfter   int
}

func (r AttackResult) String() string {
	if r.Conquered {
		return fmt.Sprintf("%s conquered %s from %s (%d vs %d), %d units moved in",
			r.Side, r.Defender, r.Attacker, r.AttackStrength, r.DefenseStrength, r.DefenderAfter)
	}
	return fmt.Sprintf("%s attack from %s on %s was repelled (%d vs %d)",
		r.Side, r.Attacker, r.Defender, r.AttackStrength, r.DefenseStrength)
}

// Resolver applies attacks and transfers to a board.
type Resolver struct {
	board  *Board
	rules  Rules
	source Source
}

// NewResolver creates a Resolver. A nil rules or source falls back to the
// standard rules and a source seeded with 1.
func NewResolver(board *Board, rules Rules, source Source) *Resolver {
	if rules == nil {
		rules = NewStandardRules()
	}
	if source == nil {
		source = NewSource(1)
	}
	return &Resolver{board: board, rules: rules, source: source}
}

// Board returns the board the resolver mutates.
func (r *Resolver) Board() *Board {
	return r.board
}

// ResolveAttack resolves an attack from attacker on defender. It fails
// without mutating anything if the attacker cannot commit a unit.
func (r *Resolver) ResolveAttack(attacker, defender *Territory) (AttackResult, error) {
	if attacker.Units <= 1 {
		return AttackResult{}, fmt.Errorf("cannot attack from %s with %d units: %w", attacker.Name, attacker.Units, ErrInsufficientUnits)
	}

	result := AttackResult{
		Attacker:       attacker.Name,
		Defender:       defender.Name,
		Side:           attacker.Owner,
		AttackerBefore: attacker.Units,
		DefenderBefore: defender.Units,
	}
	// The attacker draws first
	result.AttackStrength = r.rules.AttackStrength(attacker.Units, r.source.Float64())
	result.DefenseStrength = r.rules.DefenseStrength(defender.Units, r.source.Float64())

	attackerAfter, defenderAfter, conquered := r.rules.DetermineAttackOutcome(
		attacker.Units, defender.Units, result.AttackStrength, result.DefenseStrength)

	r.board.SetUnits(attacker, attackerAfter)
	r.board.SetUnits(defender, defenderAfter)
	if conquered {
		r.board.SetOwner(defender, attacker.Owner)
	}
	result.Conquered = conquered
	result.AttackerAfter = attacker.Units
	result.DefenderAfter = defender.Units

	log.Debug().
		Str("side", result.Side.String()).
		Str("attacker", result.Attacker).
		Str("defender", result.Defender).
		Int("attackStrength", result.AttackStrength).
		Int("defenseStrength", result.DefenseStrength).
		Bool("conquered", result.Conquered).
		Msg("attack resolved")

	return result, nil
}

// ResolveTransfer moves units from source to dest on behalf of initiator and
// returns how many moved. Player transfers that would move nothing fail; AI
// transfers that would move nothing are silently skipped.
func (r *Resolver) ResolveTransfer(source, dest *Territory, initiator Side) (int, error) {
	moved := r.rules.TransferAmount(source.Units, initiator)
	if moved <= 0 {
		if initiator == AI {
			return 0, nil
		}
		return 0, fmt.Errorf("cannot transfer from %s with %d units: %w", source.Name, source.Units, ErrInsufficientUnits)
	}

	r.board.SetUnits(source, source.Units-moved)
	r.board.SetUnits(dest, dest.Units+moved)

	log.Debug().
		Str("side", initiator.String()).
		Str("source", source.Name).
		Str("dest", dest.Name).
		Int("moved", moved).
		Msg("transfer resolved")

	return moved, nil
}
