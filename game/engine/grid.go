package engine

import (
	"encoding/binary"
	"fmt"
)

// Grid is a square matrix of optional tiles. It has no knowledge of game rules.
type Grid struct {
	size  int
	cells []*Tile
}

// NewGrid creates an empty size x size grid
func NewGrid(size int) *Grid {
	if size < 1 {
		panic(fmt.Sprintf("grid: invalid size %d", size))
	}
	return &Grid{
		size:  size,
		cells: make([]*Tile, size*size),
	}
}

// Size returns the grid dimension
func (g *Grid) Size() int {
	return g.size
}

func (g *Grid) index(pos Position) int {
	return pos.Y*g.size + pos.X
}

// WithinBounds reports whether pos lies on the grid
func (g *Grid) WithinBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < g.size && pos.Y >= 0 && pos.Y < g.size
}

// CellContent returns the tile at pos, or nil if the cell is empty or out of bounds
func (g *Grid) CellContent(pos Position) *Tile {
	if !g.WithinBounds(pos) {
		return nil
	}
	return g.cells[g.index(pos)]
}

// CellAvailable reports whether pos is on the grid and empty
func (g *Grid) CellAvailable(pos Position) bool {
	return g.WithinBounds(pos) && g.cells[g.index(pos)] == nil
}

// CellOccupied reports whether pos holds a tile
func (g *Grid) CellOccupied(pos Position) bool {
	return g.CellContent(pos) != nil
}

// CellsAvailable reports whether at least one cell is empty
func (g *Grid) CellsAvailable() bool {
	for _, t := range g.cells {
		if t == nil {
			return true
		}
	}
	return false
}

// AvailableCells returns every empty position in column-major order
func (g *Grid) AvailableCells() []Position {
	var cells []Position
	g.EachCell(func(pos Position, t *Tile) {
		if t == nil {
			cells = append(cells, pos)
		}
	})
	return cells
}

// RandomAvailableCell picks an empty position uniformly at random.
// Calling it on a full grid is a programming error.
func (g *Grid) RandomAvailableCell(rng RandomSource) Position {
	cells := g.AvailableCells()
	if len(cells) == 0 {
		panic("grid: RandomAvailableCell called on a full grid")
	}
	return cells[rng.IntN(len(cells))]
}

// InsertTile places t at its stored position, which must be empty
func (g *Grid) InsertTile(t *Tile) {
	if !g.WithinBounds(t.Position) {
		panic(fmt.Sprintf("grid: insert out of bounds at (%d,%d)", t.X, t.Y))
	}
	idx := g.index(t.Position)
	if g.cells[idx] != nil {
		panic(fmt.Sprintf("grid: insert into occupied cell (%d,%d)", t.X, t.Y))
	}
	g.cells[idx] = t
}

// RemoveTile clears the cell at t's stored position
func (g *Grid) RemoveTile(t *Tile) {
	if g.WithinBounds(t.Position) {
		g.cells[g.index(t.Position)] = nil
	}
}

// moveTile relocates t to pos, keeping the stored position in sync with the cell
func (g *Grid) moveTile(t *Tile, pos Position) {
	g.cells[g.index(t.Position)] = nil
	g.cells[g.index(pos)] = t
	t.updatePosition(pos)
}

// EachCell visits every cell exactly once, columns outer and rows inner
func (g *Grid) EachCell(fn func(pos Position, t *Tile)) {
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			pos := Position{X: x, Y: y}
			fn(pos, g.cells[g.index(pos)])
		}
	}
}

// Tiles returns all occupied tiles in column-major order
func (g *Grid) Tiles() []*Tile {
	var tiles []*Tile
	g.EachCell(func(_ Position, t *Tile) {
		if t != nil {
			tiles = append(tiles, t)
		}
	})
	return tiles
}

// Value returns the tile value at pos, 0 for an empty cell
func (g *Grid) Value(pos Position) int {
	if t := g.CellContent(pos); t != nil {
		return t.Value
	}
	return 0
}

// MaxValue returns the largest tile value on the grid, 0 when empty
func (g *Grid) MaxValue() int {
	maxVal := 0
	for _, t := range g.cells {
		if t != nil && t.Value > maxVal {
			maxVal = t.Value
		}
	}
	return maxVal
}

// EmptyCount returns the number of empty cells
func (g *Grid) EmptyCount() int {
	n := 0
	for _, t := range g.cells {
		if t == nil {
			n++
		}
	}
	return n
}

// Clone returns an independent deep copy without merge provenance
func (g *Grid) Clone() *Grid {
	c := &Grid{
		size:  g.size,
		cells: make([]*Tile, len(g.cells)),
	}
	for i, t := range g.cells {
		if t != nil {
			c.cells[i] = NewTile(t.Position, t.Value)
		}
	}
	return c
}

// Equal reports whether both grids have the same size and tile values
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.size != other.size {
		return false
	}
	for i := range g.cells {
		a, b := g.cells[i], other.cells[i]
		if (a == nil) != (b == nil) {
			return false
		}
		if a != nil && a.Value != b.Value {
			return false
		}
	}
	return true
}

// AppendValues appends the row-major cell values to buf as uvarints.
// Empty cells encode as 0. Used as a compact key for caches.
func (g *Grid) AppendValues(buf []byte) []byte {
	for _, t := range g.cells {
		if t == nil {
			buf = append(buf, 0)
			continue
		}
		buf = binary.AppendUvarint(buf, uint64(t.Value))
	}
	return buf
}

// String renders the grid row by row, empty cells as dots
func (g *Grid) String() string {
	out := make([]byte, 0, g.size*g.size*6)
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			v := g.Value(Position{X: x, Y: y})
			if v == 0 {
				out = append(out, fmt.Sprintf("%6s", ".")...)
			} else {
				out = append(out, fmt.Sprintf("%6d", v)...)
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}
