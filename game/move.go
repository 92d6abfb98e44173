package game

// Action represents a transfer or attack from one territory to another.
type Action struct {
	Type ActionType
	From int // Source territory ID
	To   int // Target territory ID
}

