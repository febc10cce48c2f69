package ai

import (
	"math"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// DefaultSampleCap bounds how many empty cells a chance node expands
const DefaultSampleCap = 6

// SearchStats reports the work done by the last search
type SearchStats struct {
	Nodes       int `json:"nodes"`
	CacheHits   int `json:"cache_hits"`
	CacheMisses int `json:"cache_misses"`
}

// Searcher runs depth-limited expectimax over simulated copies of a game.
// A Searcher is not safe for concurrent use.
type Searcher struct {
	eval      *Evaluator
	rng       engine.RandomSource
	sampleCap int
	cache     *evalCache
	nodes     int
}

// SearcherOption configures a Searcher
type SearcherOption func(*Searcher)

// WithSampleCap sets the maximum number of empty cells sampled per chance node
func WithSampleCap(n int) SearcherOption {
	return func(s *Searcher) {
		if n > 0 {
			s.sampleCap = n
		}
	}
}

// WithoutCache disables evaluation memoization
func WithoutCache() SearcherOption {
	return func(s *Searcher) {
		s.cache.enabled = false
	}
}

// NewSearcher creates a searcher. rng drives chance-node sampling; nil uses
// an unseeded source.
func NewSearcher(eval *Evaluator, rng engine.RandomSource, opts ...SearcherOption) *Searcher {
	if eval == nil {
		eval = NewEvaluator(DefaultWeights())
	}
	if rng == nil {
		rng = engine.NewCryptoSource()
	}
	s := &Searcher{
		eval:      eval,
		rng:       rng,
		sampleCap: DefaultSampleCap,
		cache:     newEvalCache(eval, true),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluator returns the heuristic used at leaves
func (s *Searcher) Evaluator() *Evaluator {
	return s.eval
}

// Stats returns counters for the most recent search
func (s *Searcher) Stats() SearchStats {
	return SearchStats{
		Nodes:       s.nodes,
		CacheHits:   s.cache.hits,
		CacheMisses: s.cache.misses,
	}
}

func (s *Searcher) begin() {
	s.nodes = 0
	s.cache.reset()
}

// Expectimax returns the value of eng's position as a player node searched
// to depth. Depth 0 is exactly the evaluator's score. eng is not modified.
func (s *Searcher) Expectimax(eng *engine.GameEngine, depth int) float64 {
	s.begin()
	return s.maxNode(eng.Simulation(), depth)
}

// BestMove returns the direction with the highest expectimax value, or
// engine.NoDirection when no direction changes the board. eng is not modified.
func (s *Searcher) BestMove(eng *engine.GameEngine, depth int) (engine.Direction, float64) {
	s.begin()
	sim := eng.Simulation()
	if sim.IsTerminated() {
		return engine.NoDirection, s.cache.evaluate(sim.GetState().Grid)
	}

	best := engine.NoDirection
	bestScore := math.Inf(-1)
	snap := sim.Snapshot()
	for _, dir := range engine.Directions {
		moved, _ := sim.Slide(dir)
		if moved {
			if v := s.chanceNode(sim, depth-1); v > bestScore {
				best, bestScore = dir, v
			}
		}
		sim.Restore(snap)
	}
	if best == engine.NoDirection {
		return best, s.cache.evaluate(sim.GetState().Grid)
	}
	return best, bestScore
}

// GreedyMove picks the direction whose immediate result scores best, without
// look-ahead over spawns
func (s *Searcher) GreedyMove(eng *engine.GameEngine) (engine.Direction, float64) {
	s.begin()
	sim := eng.Simulation()

	best := engine.NoDirection
	bestScore := math.Inf(-1)
	snap := sim.Snapshot()
	for _, dir := range engine.Directions {
		if moved, _ := sim.Slide(dir); moved {
			s.nodes++
			if v := s.cache.evaluate(sim.GetState().Grid); v > bestScore {
				best, bestScore = dir, v
			}
		}
		sim.Restore(snap)
	}
	return best, bestScore
}

// maxNode is the player's turn: the best chance value over legal directions
func (s *Searcher) maxNode(sim *engine.GameEngine, depth int) float64 {
	s.nodes++
	grid := sim.GetState().Grid
	if depth <= 0 || sim.IsTerminated() {
		return s.cache.evaluate(grid)
	}

	best := math.Inf(-1)
	legal := false
	snap := sim.Snapshot()
	for _, dir := range engine.Directions {
		moved, _ := sim.Slide(dir)
		if moved {
			legal = true
			if v := s.chanceNode(sim, depth-1); v > best {
				best = v
			}
		}
		sim.Restore(snap)
	}

	if !legal {
		return s.cache.evaluate(sim.GetState().Grid)
	}
	return best
}

// chanceNode is the environment's turn: the expected value over sampled
// spawn cells of both spawn values
func (s *Searcher) chanceNode(sim *engine.GameEngine, depth int) float64 {
	s.nodes++
	grid := sim.GetState().Grid
	cells := grid.AvailableCells()
	if depth <= 0 || len(cells) == 0 {
		return s.cache.evaluate(grid)
	}

	cells = sampleCells(cells, s.sampleCap, s.rng)
	cfg := sim.GetConfig()
	p := cfg.SpawnLowProbability

	total := 0.0
	snap := sim.Snapshot()
	for _, cell := range cells {
		sim.PlaceTile(cell, cfg.SpawnLowValue)
		low := s.maxNode(sim, depth-1)
		sim.Restore(snap)

		sim.PlaceTile(cell, cfg.SpawnHighValue)
		high := s.maxNode(sim, depth-1)
		sim.Restore(snap)

		total += p*low + (1-p)*high
	}
	return total / float64(len(cells))
}

// sampleCells picks up to n cells uniformly without replacement using a
// partial Fisher-Yates shuffle. cells is reordered in place.
func sampleCells(cells []engine.Position, n int, rng engine.RandomSource) []engine.Position {
	if n <= 0 || len(cells) <= n {
		return cells
	}
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(cells)-i)
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells[:n]
}
