package game

import (
	"math"
	"strings"
)

// Position is a point on the board plane. It only drives adjacency.
type Position struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between two positions.
func (p Position) Distance(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Z-o.Z)
}

type Territory struct {
	ID       int      // Stable identifier, also the index into the board
	Name     string   // Unique display name
	Position Position // Board coordinates
	Owner    Side     // Current owner
	Units    int      // Never negative
}

// Board holds every territory in setup order. Adjacency is derived from
// positions on each query rather than stored.
type Board struct {
	territories []*Territory
	byName      map[string]*Territory
}

// NewBoard creates and returns an empty Board.
func NewBoard() *Board {
	return &Board{
		byName: make(map[string]*Territory),
	}
}

// AddTerritory appends a territory and assigns it the next id.
func (b *Board) AddTerritory(name string, pos Position, owner Side, units int) *Territory {
	t := &Territory{
		ID:       len(b.territories),
		Name:     name,
		Position: pos,
		Owner:    owner,
		Units:    max(0, units),
	}
	b.territories = append(b.territories, t)
	b.byName[strings.ToLower(name)] = t
	return t
}

// Territories returns the territories in setup order.
func (b *Board) Territories() []*Territory {
	return b.territories
}

// Territory returns the territory with the given id, or nil.
func (b *Board) Territory(id int) *Territory {
	if id < 0 || id >= len(b.territories) {
		return nil
	}
	return b.territories[id]
}

// TerritoryByName looks a territory up ignoring case.
func (b *Board) TerritoryByName(name string) *Territory {
	return b.byName[strings.ToLower(strings.TrimSpace(name))]
}

// Adjacent checks if two territories border each other.
func (b *Board) Adjacent(a, c *Territory) bool {
	if a == nil || c == nil || a.ID == c.ID {
		return false
	}
	return a.Position.Distance(c.Position) < AdjacencyThreshold
}

// Neighbors returns the territories adjacent to t in board order.
func (b *Board) Neighbors(t *Territory) []*Territory {
	var neighbors []*Territory
	for _, other := range b.territories {
		if b.Adjacent(t, other) {
			neighbors = append(neighbors, other)
		}
	}
	return neighbors
}

// OwnedBy returns the territories owned by side in board order.
func (b *Board) OwnedBy(side Side) []*Territory {
	var owned []*Territory
	for _, t := range b.territories {
		if t.Owner == side {
			owned = append(owned, t)
		}
	}
	return owned
}

func (b *Board) SetOwner(t *Territory, side Side) {
	t.Owner = side
}

// SetUnits sets the unit count, clamped to zero.
func (b *Board) SetUnits(t *Territory, n int) {
	t.Units = max(0, n)
}

// Reinforce adds one unit to every territory owned by side and returns how
// many territories were reinforced.
func (b *Board) Reinforce(side Side) int {
	count := 0
	for _, t := range b.territories {
		if t.Owner == side {
			b.SetUnits(t, t.Units+1)
			count++
		}
	}
	return count
}

// Copy returns a deep copy of the board.
func (b *Board) Copy() *Board {
	c := NewBoard()
	for _, t := range b.territories {
		c.AddTerritory(t.Name, t.Position, t.Owner, t.Units)
	}
	return c
}

const (
	gridRows      = 5
	gridCols      = 5
	startingUnits = 5
)

// gridGaps are the cells left empty so the board is not a full lattice.
var gridGaps = map[[2]int]bool{
	{1, 1}: true, {1, 3}: true,
	{3, 1}: true, {3, 3}: true,
}

// territoryNames lists the names of the standard board in row-major order,
// skipping the gaps.
var territoryNames = []string{
	"Northwatch", "Ashford", "Brightwater", "Coldharbor", "Dunmere",
	"Eastmarch", "Fallowmoor", "Glenhaven",
	"Highcrest", "Ironvale", "Juniper", "Kingsreach", "Larkspur",
	"Mistfen", "Nettlebrook", "Oakshade",
	"Pinecliff", "Quarrytown", "Redmoor", "Stonebridge", "Thornfield",
}

// CreateMap builds the standard board: a 5x5 grid with four gaps, the Player
// holding one corner and the AI the opposite one.
func CreateMap() *Board {
	b := NewBoard()
	next := 0
	for row := 0; row < gridRows; row++ {
		for col := 0; col < gridCols; col++ {
			if gridGaps[[2]int{row, col}] {
				continue
			}
			pos := Position{
				X: float64(col-gridCols/2) * GridSpacing,
				Z: float64(row-gridRows/2) * GridSpacing,
			}
			owner, units := Neutral, 0
			switch {
			case row == 0 && col == 0:
				owner, units = Player, startingUnits
			case row == gridRows-1 && col == gridCols-1:
				owner, units = AI, startingUnits
			}
			b.AddTerritory(territoryNames[next], pos, owner, units)
			next++
		}
	}
	return b
}
