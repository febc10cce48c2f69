package ai

import (
	"math"

	"github.com/samber/lo"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// CornerBonusValue is awarded when a maximum tile sits in a corner
const CornerBonusValue = 10000.0

// Weights scales each heuristic term of the composite score
type Weights struct {
	EmptyCells     float64 `json:"empty_cells" yaml:"empty_cells"`
	Smoothness     float64 `json:"smoothness" yaml:"smoothness"`
	Monotonicity   float64 `json:"monotonicity" yaml:"monotonicity"`
	MaxTile        float64 `json:"max_tile" yaml:"max_tile"`
	Corner         float64 `json:"corner" yaml:"corner"`
	Edge           float64 `json:"edge" yaml:"edge"`
	MergePotential float64 `json:"merge_potential" yaml:"merge_potential"`
}

// DefaultWeights returns the reference weight vector
func DefaultWeights() Weights {
	return Weights{
		EmptyCells:     2.7,
		Smoothness:     0.1,
		Monotonicity:   1.0,
		MaxTile:        1.0,
		Corner:         1.0,
		Edge:           0.3,
		MergePotential: 0.5,
	}
}

// IsZero reports whether no weight has been set
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// Breakdown holds the raw and weighted heuristic terms for one grid
type Breakdown struct {
	EmptyCells     float64 `json:"empty_cells"`
	Smoothness     float64 `json:"smoothness"`
	Monotonicity   float64 `json:"monotonicity"`
	MaxTile        float64 `json:"max_tile"`
	Corner         float64 `json:"corner"`
	Edge           float64 `json:"edge"`
	MergePotential float64 `json:"merge_potential"`
	Total          float64 `json:"total"`
}

// Evaluator scores grids. It never mutates its input and is safe for
// concurrent use.
type Evaluator struct {
	weights Weights
}

// NewEvaluator creates an evaluator, using DefaultWeights for a zero vector
func NewEvaluator(w Weights) *Evaluator {
	if w.IsZero() {
		w = DefaultWeights()
	}
	return &Evaluator{weights: w}
}

// Weights returns the evaluator's weight vector
func (e *Evaluator) Weights() Weights {
	return e.weights
}

// Evaluate returns the weighted composite score of g
func (e *Evaluator) Evaluate(g *engine.Grid) float64 {
	return e.Breakdown(g).Total
}

// Breakdown computes every term and the weighted total
func (e *Evaluator) Breakdown(g *engine.Grid) Breakdown {
	b := Breakdown{
		EmptyCells:     EmptyCells(g),
		Smoothness:     Smoothness(g),
		Monotonicity:   Monotonicity(g),
		MaxTile:        MaxTileLog(g),
		Corner:         CornerBonus(g),
		Edge:           EdgeBonus(g),
		MergePotential: MergePotential(g),
	}
	w := e.weights
	b.Total = w.EmptyCells*b.EmptyCells +
		w.Smoothness*b.Smoothness +
		w.Monotonicity*b.Monotonicity +
		w.MaxTile*b.MaxTile +
		w.Corner*b.Corner +
		w.Edge*b.Edge +
		w.MergePotential*b.MergePotential
	return b
}

// EmptyCells counts unoccupied positions
func EmptyCells(g *engine.Grid) float64 {
	return float64(g.EmptyCount())
}

func log2At(g *engine.Grid, pos engine.Position) float64 {
	return float64(engine.Log2(g.Value(pos)))
}

// Smoothness is the negated sum of log2 differences between each tile and
// its occupied right and down neighbours
func Smoothness(g *engine.Grid) float64 {
	penalty := 0.0
	for _, tile := range g.Tiles() {
		v := float64(engine.Log2(tile.Value))
		for _, dir := range [2]engine.Direction{engine.Right, engine.Down} {
			next := tile.Position.Add(dir.Vector())
			if g.CellOccupied(next) {
				penalty += math.Abs(v - log2At(g, next))
			}
		}
	}
	return -penalty
}

// Monotonicity rewards rows and columns whose log2 values only rise or only
// fall, skipping empty cells. Each axis contributes its better direction.
func Monotonicity(g *engine.Grid) float64 {
	size := g.Size()
	var totals [4]float64

	for x := 0; x < size; x++ {
		monotoneLine(g, size, func(i int) engine.Position { return engine.Position{X: x, Y: i} }, &totals[0], &totals[1])
	}
	for y := 0; y < size; y++ {
		monotoneLine(g, size, func(i int) engine.Position { return engine.Position{X: i, Y: y} }, &totals[2], &totals[3])
	}

	return math.Max(totals[0], totals[1]) + math.Max(totals[2], totals[3])
}

func monotoneLine(g *engine.Grid, size int, at func(i int) engine.Position, falling, rising *float64) {
	current := 0
	next := 1
	for next < size {
		for next < size && !g.CellOccupied(at(next)) {
			next++
		}
		if next >= size {
			next--
		}
		cur := log2At(g, at(current))
		nxt := log2At(g, at(next))
		if cur > nxt {
			*falling += nxt - cur
		} else if nxt > cur {
			*rising += cur - nxt
		}
		current = next
		next++
	}
}

// CornerBonus returns CornerBonusValue when any maximum tile is in a corner
func CornerBonus(g *engine.Grid) float64 {
	size := g.Size()
	inCorner := lo.SomeBy(engine.MaxTilePositions(g), func(pos engine.Position) bool {
		return engine.IsCorner(pos, size)
	})
	if inCorner {
		return CornerBonusValue
	}
	return 0
}

// EdgeBonus sums log2 values of tiles on the outer ring
func EdgeBonus(g *engine.Grid) float64 {
	size := g.Size()
	return lo.SumBy(g.Tiles(), func(t *engine.Tile) float64 {
		if !engine.IsEdge(t.Position, size) {
			return 0
		}
		return float64(engine.Log2(t.Value))
	})
}

// MergePotential sums a tile's value once for every neighbour sharing it
func MergePotential(g *engine.Grid) float64 {
	total := 0.0
	for _, tile := range g.Tiles() {
		for _, dir := range engine.Directions {
			if g.Value(tile.Position.Add(dir.Vector())) == tile.Value {
				total += float64(tile.Value)
			}
		}
	}
	return total
}

// MaxTileLog returns log2 of the largest tile, 0 on an empty grid
func MaxTileLog(g *engine.Grid) float64 {
	return float64(engine.Log2(g.MaxValue()))
}
