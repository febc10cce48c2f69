package engine

import "math/bits"

// Log2 returns the base-2 exponent of a power-of-two tile value, 0 for empty cells
func Log2(value int) int {
	if value <= 0 {
		return 0
	}
	return bits.Len(uint(value)) - 1
}

// IsCorner reports whether pos is one of the four corners of a size x size grid
func IsCorner(pos Position, size int) bool {
	last := size - 1
	return (pos.X == 0 || pos.X == last) && (pos.Y == 0 || pos.Y == last)
}

// IsEdge reports whether pos lies on the outer ring of a size x size grid
func IsEdge(pos Position, size int) bool {
	last := size - 1
	return pos.X == 0 || pos.X == last || pos.Y == 0 || pos.Y == last
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// MaxTilePositions returns every position holding the grid's maximum value
func MaxTilePositions(g *Grid) []Position {
	maxVal := g.MaxValue()
	if maxVal == 0 {
		return nil
	}
	var out []Position
	g.EachCell(func(pos Position, t *Tile) {
		if t != nil && t.Value == maxVal {
			out = append(out, pos)
		}
	})
	return out
}

// CornerDistance returns how far the closest maximum tile is from any corner
func CornerDistance(g *Grid) int {
	last := g.size - 1
	corners := [4]Position{{0, 0}, {last, 0}, {0, last}, {last, last}}
	best := -1
	for _, pos := range MaxTilePositions(g) {
		for _, c := range corners {
			if d := ManhattanDistance(pos, c); best == -1 || d < best {
				best = d
			}
		}
	}
	return best
}

// CountValue counts tiles holding value
func CountValue(g *Grid, value int) int {
	count := 0
	for _, t := range g.cells {
		if t != nil && t.Value == value {
			count++
		}
	}
	return count
}

// AnalyzeBoardRisk gives a coarse label for how close the board is to locking up
func AnalyzeBoardRisk(g *Grid) string {
	empty := g.EmptyCount()
	switch {
	case empty == 0 && !tileMatchesAvailable(g):
		return "CRITICAL: no moves left"
	case empty == 0:
		return "DANGER: board full, only merges remain"
	case empty <= 2:
		return "CAUTION: few empty cells"
	case empty <= g.size:
		return "LOW: consider consolidating"
	}
	return "SAFE: plenty of room"
}
