package game

// CountNeighborsOwnedBy counts the territories adjacent to t owned by side.
func CountNeighborsOwnedBy(b *Board, t *Territory, side Side) int {
	count := 0
	for _, n := range b.Neighbors(t) {
		if n.Owner == side {
			count++
		}
	}
	return count
}

// EvaluateResources tallies each side's territories and units to produce a
// relative score between -1 and 1 from side's perspective.
func EvaluateResources(b *Board, side Side) float64 {
	player, ai, _ := Tally(b)
	own, other := player, ai
	if side == AI {
		own, other = ai, player
	}
	territoryScore := normalize(float64(own.Territories), float64(other.Territories))
	unitScore := normalize(float64(own.Units), float64(other.Units))
	return (territoryScore + unitScore) / 2
}

// normalize converts two values into a single score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	// [a/(a+b)-0.5]*2 = (a-b)/(a+b)
	return (value - otherValue) / total
}
