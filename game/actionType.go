package game

// ActionType represents the type of action a side can perform.
type ActionType int

const (
	TransferAction ActionType = iota
	AttackAction
)

func (a ActionType) String() string {
	if a == AttackAction {
		return "attack"
	}
	return "transfer"
}
