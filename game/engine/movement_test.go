package engine

import (
	"testing"
)

// gridFromRows builds a grid from row-major values, 0 meaning empty
func gridFromRows(rows [][]int) *Grid {
	g := NewGrid(len(rows))
	for y, row := range rows {
		for x, v := range row {
			if v != 0 {
				g.InsertTile(NewTile(Position{X: x, Y: y}, v))
			}
		}
	}
	return g
}

// rowsOf renders a grid back to row-major values
func rowsOf(g *Grid) [][]int {
	rows := make([][]int, g.Size())
	for y := range rows {
		rows[y] = make([]int, g.Size())
		for x := range rows[y] {
			rows[y][x] = g.Value(Position{X: x, Y: y})
		}
	}
	return rows
}

func equalRows(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestBuildTraversals(t *testing.T) {
	tests := []struct {
		dir    Direction
		wantXs []int
		wantYs []int
	}{
		{Up, []int{0, 1, 2, 3}, []int{0, 1, 2, 3}},
		{Right, []int{3, 2, 1, 0}, []int{0, 1, 2, 3}},
		{Down, []int{0, 1, 2, 3}, []int{3, 2, 1, 0}},
		{Left, []int{0, 1, 2, 3}, []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			tr := buildTraversals(4, tt.dir.Vector())
			if !equalRows([][]int{tr.xs, tr.ys}, [][]int{tt.wantXs, tt.wantYs}) {
				t.Errorf("traversals = %v/%v, want %v/%v", tr.xs, tr.ys, tt.wantXs, tt.wantYs)
			}
		})
	}
}

func TestFindFarthestPosition(t *testing.T) {
	g := gridFromRows([][]int{
		{0, 0, 2, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	farthest, next := findFarthestPosition(g, Position{X: 3, Y: 0}, Left.Vector())
	if farthest != (Position{X: 3, Y: 0}) || next != (Position{X: 2, Y: 0}) {
		t.Errorf("blocked walk: farthest=%v next=%v", farthest, next)
	}

	farthest, next = findFarthestPosition(g, Position{X: 2, Y: 0}, Down.Vector())
	if farthest != (Position{X: 2, Y: 3}) || next != (Position{X: 2, Y: 4}) {
		t.Errorf("open walk: farthest=%v next=%v", farthest, next)
	}
}

func TestSlide_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		dir        Direction
		before     [][]int
		after      [][]int
		wantMoved  bool
		wantGained int
		wantMerges []int
	}{
		{
			name: "three equal tiles merge once",
			dir:  Left,
			before: [][]int{
				{2, 2, 2, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			after: [][]int{
				{4, 2, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			wantMoved:  true,
			wantGained: 4,
			wantMerges: []int{4},
		},
		{
			name: "two pairs merge independently",
			dir:  Left,
			before: [][]int{
				{2, 2, 4, 4},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			after: [][]int{
				{4, 8, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			wantMoved:  true,
			wantGained: 12,
			wantMerges: []int{4, 8},
		},
		{
			name: "merged tile does not merge again",
			dir:  Right,
			before: [][]int{
				{4, 2, 2, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			after: [][]int{
				{0, 0, 4, 4},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			wantMoved:  true,
			wantGained: 4,
			wantMerges: []int{4},
		},
		{
			name: "column slides down",
			dir:  Down,
			before: [][]int{
				{2, 0, 0, 0},
				{0, 0, 0, 0},
				{2, 0, 0, 0},
				{8, 0, 0, 0},
			},
			after: [][]int{
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{4, 0, 0, 0},
				{8, 0, 0, 0},
			},
			wantMoved:  true,
			wantGained: 4,
			wantMerges: []int{4},
		},
		{
			name: "blocked row does not move",
			dir:  Left,
			before: [][]int{
				{2, 4, 8, 16},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			after: [][]int{
				{2, 4, 8, 16},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			wantMoved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gridFromRows(tt.before)
			res := slide(g, tt.dir, DefaultWinValue)

			if res.moved != tt.wantMoved {
				t.Errorf("moved = %v, want %v", res.moved, tt.wantMoved)
			}
			if res.gained != tt.wantGained {
				t.Errorf("gained = %d, want %d", res.gained, tt.wantGained)
			}
			if len(res.merges) != len(tt.wantMerges) {
				t.Fatalf("merges = %v, want %v", res.merges, tt.wantMerges)
			}
			for i := range res.merges {
				if res.merges[i] != tt.wantMerges[i] {
					t.Errorf("merges = %v, want %v", res.merges, tt.wantMerges)
				}
			}
			if got := rowsOf(g); !equalRows(got, tt.after) {
				t.Errorf("grid after slide = %v, want %v", got, tt.after)
			}
		})
	}
}

func TestSlide_TilePositionsMatchCells(t *testing.T) {
	g := gridFromRows([][]int{
		{2, 2, 4, 4},
		{0, 8, 0, 8},
		{2, 0, 0, 2},
		{16, 16, 16, 0},
	})
	for _, dir := range Directions {
		slide(g, dir, DefaultWinValue)
		g.EachCell(func(pos Position, tile *Tile) {
			if tile != nil && tile.Position != pos {
				t.Errorf("after %s: tile at %v stores position %v", dir, pos, tile.Position)
			}
		})
	}
}

func TestSlide_WinDetection(t *testing.T) {
	g := gridFromRows([][]int{
		{1024, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	res := slide(g, Left, 2048)
	if !res.won {
		t.Error("expected merge into 2048 to report a win")
	}
}

func TestSlide_ProvenanceClearedNextMove(t *testing.T) {
	g := gridFromRows([][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	slide(g, Left, DefaultWinValue)
	merged := g.CellContent(Position{X: 0, Y: 0})
	if !merged.Merged() {
		t.Fatal("expected merged tile to carry provenance")
	}
	a, b := merged.MergedFrom()
	if a == nil || b == nil || a.Value != 2 || b.Value != 2 {
		t.Errorf("unexpected provenance %v %v", a, b)
	}

	slide(g, Down, DefaultWinValue)
	if merged.Merged() {
		t.Error("provenance should be cleared at the start of the next move")
	}
}

func TestMovesAvailable(t *testing.T) {
	snake := gridFromRows([][]int{
		{2, 4, 8, 16},
		{256, 128, 64, 32},
		{512, 1024, 2048, 4096},
		{65536, 32768, 16384, 8192},
	})
	if movesAvailable(snake) {
		t.Error("snake grid should have no moves")
	}

	pair := gridFromRows([][]int{
		{2, 4, 8, 16},
		{256, 128, 64, 32},
		{512, 1024, 2048, 4096},
		{65536, 32768, 8192, 8192},
	})
	if !tileMatchesAvailable(pair) || !movesAvailable(pair) {
		t.Error("equal neighbours should leave a move")
	}

	open := gridFromRows([][]int{
		{2, 4, 8, 16},
		{256, 128, 64, 32},
		{512, 1024, 2048, 4096},
		{65536, 32768, 16384, 0},
	})
	if !movesAvailable(open) {
		t.Error("an empty cell should leave a move")
	}
}
