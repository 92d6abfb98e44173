package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCreateMap(t *testing.T) {
	t.Run("standard layout", func(t *testing.T) {
		b := CreateMap()

		require.Len(t, b.Territories(), 21, "5x5 grid minus four gaps")
		player := b.OwnedBy(Player)
		ai := b.OwnedBy(AI)
		require.Len(t, player, 1, "Player starts with one corner")
		require.Len(t, ai, 1, "AI starts with the opposite corner")
		require.Equal(t, "Northwatch", player[0].Name)
		require.Equal(t, "Thornfield", ai[0].Name)
		require.Equal(t, startingUnits, player[0].Units)
		require.Equal(t, startingUnits, ai[0].Units)

		for _, tr := range b.Territories() {
			if tr.Owner == Neutral {
				require.Zero(t, tr.Units, "neutral territories start empty")
			}
		}
	})

	t.Run("ids follow insertion order", func(t *testing.T) {
		b := CreateMap()
		for i, tr := range b.Territories() {
			require.Equal(t, i, tr.ID)
			require.Same(t, tr, b.Territory(i))
		}
		require.Nil(t, b.Territory(-1))
		require.Nil(t, b.Territory(len(b.Territories())))
	})

	t.Run("names are unique and resolvable ignoring case", func(t *testing.T) {
		b := CreateMap()
		for _, tr := range b.Territories() {
			require.Same(t, tr, b.TerritoryByName(tr.Name))
		}
		require.Equal(t, "Ironvale", b.TerritoryByName("  IRONVALE ").Name)
		require.Nil(t, b.TerritoryByName("Atlantis"))
	})
}

func TestAdjacency(t *testing.T) {
	b := CreateMap()
	northwatch := b.TerritoryByName("Northwatch") // (0,0)
	ashford := b.TerritoryByName("Ashford")       // (0,1)
	eastmarch := b.TerritoryByName("Eastmarch")   // (1,0)
	highcrest := b.TerritoryByName("Highcrest")   // (2,0)
	ironvale := b.TerritoryByName("Ironvale")     // (2,1)

	t.Run("orthogonal cells border each other", func(t *testing.T) {
		require.True(t, b.Adjacent(northwatch, ashford))
		require.True(t, b.Adjacent(northwatch, eastmarch))
	})

	t.Run("diagonal cells do not", func(t *testing.T) {
		require.False(t, b.Adjacent(eastmarch, ironvale), "distance 7.07 is above the threshold")
	})

	t.Run("gaps break adjacency", func(t *testing.T) {
		require.False(t, b.Adjacent(northwatch, highcrest), "two cells apart")
		require.Len(t, b.Neighbors(ashford), 2, "the gap below Ashford removes a neighbor")
	})

	t.Run("irreflexive", func(t *testing.T) {
		require.False(t, b.Adjacent(northwatch, northwatch))
		require.False(t, b.Adjacent(northwatch, nil))
	})
}

func TestAdjacencySymmetric(t *testing.T) {
	b := CreateMap()
	n := len(b.Territories())
	rapid.Check(t, func(t *rapid.T) {
		i := rapid.IntRange(0, n-1).Draw(t, "a")
		j := rapid.IntRange(0, n-1).Draw(t, "b")
		a, c := b.Territory(i), b.Territory(j)
		if b.Adjacent(a, c) != b.Adjacent(c, a) {
			t.Fatalf("adjacency of %s and %s is not symmetric", a.Name, c.Name)
		}
	})
}

func TestSetUnitsClamps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := CreateMap()
		tr := b.Territory(0)
		n := rapid.IntRange(-1000, 1000).Draw(t, "units")
		b.SetUnits(tr, n)
		if tr.Units < 0 {
			t.Fatalf("units went negative: %d", tr.Units)
		}
		if n >= 0 && tr.Units != n {
			t.Fatalf("expected %d units, got %d", n, tr.Units)
		}
	})
}

func TestReinforce(t *testing.T) {
	b := CreateMap()
	ashford := b.TerritoryByName("Ashford")
	b.SetOwner(ashford, Player)

	count := b.Reinforce(Player)

	require.Equal(t, 2, count)
	require.Equal(t, startingUnits+1, b.TerritoryByName("Northwatch").Units)
	require.Equal(t, 1, ashford.Units)
	require.Equal(t, startingUnits, b.TerritoryByName("Thornfield").Units, "other sides are untouched")
}

func TestBoardCopy(t *testing.T) {
	b := CreateMap()
	c := b.Copy()
	c.SetUnits(c.Territory(0), 42)

	require.Equal(t, startingUnits, b.Territory(0).Units, "copy must not alias the original")
	require.Equal(t, b.Territory(3).Name, c.Territory(3).Name)
}
