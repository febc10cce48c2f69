package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_Queries(t *testing.T) {
	g := gridFromRows([][]int{
		{2, 0, 0},
		{0, 4, 0},
		{0, 0, 8},
	})

	assert.Equal(t, 3, g.Size())
	assert.True(t, g.WithinBounds(Position{X: 2, Y: 2}))
	assert.False(t, g.WithinBounds(Position{X: 3, Y: 0}))
	assert.False(t, g.WithinBounds(Position{X: 0, Y: -1}))
	assert.Nil(t, g.CellContent(Position{X: -1, Y: 0}))
	assert.True(t, g.CellOccupied(Position{X: 1, Y: 1}))
	assert.True(t, g.CellAvailable(Position{X: 1, Y: 0}))
	assert.False(t, g.CellAvailable(Position{X: 5, Y: 0}), "out of bounds is never available")
	assert.True(t, g.CellsAvailable())
	assert.Equal(t, 6, g.EmptyCount())
	assert.Len(t, g.AvailableCells(), 6)
	assert.Equal(t, 8, g.MaxValue())
}

func TestGrid_EachCellVisitsOnce(t *testing.T) {
	g := NewGrid(4)
	seen := map[Position]int{}
	g.EachCell(func(pos Position, _ *Tile) {
		seen[pos]++
	})
	assert.Len(t, seen, 16)
	for pos, n := range seen {
		assert.Equal(t, 1, n, "position %v visited %d times", pos, n)
	}
}

func TestGrid_InsertRemove(t *testing.T) {
	g := NewGrid(2)
	tile := NewTile(Position{X: 1, Y: 0}, 2)
	g.InsertTile(tile)
	assert.Same(t, tile, g.CellContent(Position{X: 1, Y: 0}))

	assert.Panics(t, func() { g.InsertTile(NewTile(Position{X: 1, Y: 0}, 4)) }, "occupied cell")
	assert.Panics(t, func() { g.InsertTile(NewTile(Position{X: 2, Y: 0}, 4)) }, "out of bounds")

	g.RemoveTile(tile)
	assert.True(t, g.CellAvailable(Position{X: 1, Y: 0}))
}

func TestGrid_RandomAvailableCell(t *testing.T) {
	g := gridFromRows([][]int{
		{2, 2},
		{2, 0},
	})
	rng := NewSeededSource(1)
	for i := 0; i < 10; i++ {
		assert.Equal(t, Position{X: 1, Y: 1}, g.RandomAvailableCell(rng))
	}

	g.InsertTile(NewTile(Position{X: 1, Y: 1}, 4))
	assert.Panics(t, func() { g.RandomAvailableCell(rng) })
}

func TestGrid_CloneIsDeep(t *testing.T) {
	g := gridFromRows([][]int{
		{2, 4},
		{0, 0},
	})
	c := g.Clone()
	require.True(t, g.Equal(c))

	c.InsertTile(NewTile(Position{X: 0, Y: 1}, 8))
	c.CellContent(Position{X: 0, Y: 0}).Value = 16

	assert.False(t, g.Equal(c))
	assert.Equal(t, 2, g.Value(Position{X: 0, Y: 0}))
	assert.True(t, g.CellAvailable(Position{X: 0, Y: 1}))
}

func TestGrid_AppendValues(t *testing.T) {
	a := gridFromRows([][]int{{2, 0}, {0, 4}})
	b := gridFromRows([][]int{{2, 0}, {0, 4}})
	c := gridFromRows([][]int{{0, 2}, {0, 4}})

	assert.Equal(t, a.AppendValues(nil), b.AppendValues(nil))
	assert.NotEqual(t, a.AppendValues(nil), c.AppendValues(nil))
}

func TestGrid_String(t *testing.T) {
	g := gridFromRows([][]int{{2, 0}, {0, 4}})
	assert.Equal(t, "     2     .\n     .     4\n", g.String())
}
