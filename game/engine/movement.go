package engine

// traversals lists column and row indices so that the cells farthest along
// the vector are visited first
type traversals struct {
	xs []int
	ys []int
}

func buildTraversals(size int, vector Position) traversals {
	t := traversals{
		xs: make([]int, size),
		ys: make([]int, size),
	}
	for i := 0; i < size; i++ {
		t.xs[i] = i
		t.ys[i] = i
	}
	if vector.X == 1 {
		reverse(t.xs)
	}
	if vector.Y == 1 {
		reverse(t.ys)
	}
	return t
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// findFarthestPosition walks from pos along vector while cells are empty.
// It returns the last empty position and the one right after it.
func findFarthestPosition(g *Grid, pos, vector Position) (farthest, next Position) {
	for {
		farthest = pos
		pos = farthest.Add(vector)
		if !g.CellAvailable(pos) {
			return farthest, pos
		}
	}
}

// prepareTiles records positions and clears merge provenance before a move
func prepareTiles(g *Grid) {
	for _, t := range g.cells {
		if t != nil {
			t.savePosition()
		}
	}
}

// slideResult collects what happened during the slide and merge phase
type slideResult struct {
	moved  bool
	gained int
	merges []int
	won    bool
}

// slide moves and merges every tile on g in dir. A tile merges at most once.
func slide(g *Grid, dir Direction, winValue int) slideResult {
	var res slideResult

	vector := dir.Vector()
	order := buildTraversals(g.size, vector)

	prepareTiles(g)

	for _, x := range order.xs {
		for _, y := range order.ys {
			cell := Position{X: x, Y: y}
			tile := g.CellContent(cell)
			if tile == nil {
				continue
			}

			farthest, nextPos := findFarthestPosition(g, cell, vector)
			next := g.CellContent(nextPos)

			if next != nil && next.Value == tile.Value && !next.Merged() {
				merged := NewTile(nextPos, tile.Value*2)
				merged.mergedFrom = [2]*Tile{tile, next}

				g.RemoveTile(next)
				g.InsertTile(merged)
				g.RemoveTile(tile)

				// Converge the two tiles' positions
				tile.updatePosition(nextPos)

				res.gained += merged.Value
				res.merges = append(res.merges, merged.Value)

				if merged.Value == winValue {
					res.won = true
				}
			} else if farthest != cell {
				g.moveTile(tile, farthest)
			}

			if tile.Position != cell {
				res.moved = true
			}
		}
	}

	return res
}

// tileMatchesAvailable reports whether any two adjacent tiles share a value
func tileMatchesAvailable(g *Grid) bool {
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			pos := Position{X: x, Y: y}
			tile := g.CellContent(pos)
			if tile == nil {
				continue
			}
			for _, dir := range Directions {
				other := g.CellContent(pos.Add(dir.Vector()))
				if other != nil && other.Value == tile.Value {
					return true
				}
			}
		}
	}
	return false
}

// movesAvailable reports whether any move can change g
func movesAvailable(g *Grid) bool {
	return g.CellsAvailable() || tileMatchesAvailable(g)
}
