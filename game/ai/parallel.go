package ai

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

type branchResult struct {
	dir   engine.Direction
	score float64
	nodes int
}

// BestMoveParallel expands each top-level direction in its own goroutine.
// Every branch owns a simulation copy and a child searcher seeded from s, so
// the result is reproducible for a seeded s and branches never share state.
func (s *Searcher) BestMoveParallel(ctx context.Context, eng *engine.GameEngine, depth int) (engine.Direction, float64, error) {
	logger := zerolog.Ctx(ctx)
	s.begin()

	root := eng.Simulation()
	if root.IsTerminated() {
		return engine.NoDirection, s.eval.Evaluate(root.GetState().Grid), nil
	}

	// Seeds are drawn up front, in direction order, so scheduling cannot
	// change which branch gets which stream.
	var seeds [len(engine.Directions)]uint64
	for i := range seeds {
		seeds[i] = engine.DeriveSeed(s.rng)
	}

	results := make([]branchResult, len(engine.Directions))
	g, gctx := errgroup.WithContext(ctx)
	for i, dir := range engine.Directions {
		if !root.CanMove(dir) {
			results[i] = branchResult{dir: engine.NoDirection}
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			child := NewSearcher(s.eval, engine.NewSeededSource(seeds[i]), WithSampleCap(s.sampleCap))
			child.cache.enabled = s.cache.enabled

			sim := root.Simulation()
			sim.Slide(dir)
			score := child.chanceNode(sim, depth-1)
			results[i] = branchResult{dir: dir, score: score, nodes: child.nodes}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Debug().Err(err).Msg("parallel-search-cancelled")
		return engine.NoDirection, 0, err
	}

	best := engine.NoDirection
	bestScore := math.Inf(-1)
	for _, r := range results {
		s.nodes += r.nodes
		if r.dir != engine.NoDirection && r.score > bestScore {
			best, bestScore = r.dir, r.score
		}
	}
	if best == engine.NoDirection {
		return best, s.eval.Evaluate(root.GetState().Grid), nil
	}

	logger.Debug().Str("direction", best.String()).Float64("score", bestScore).
		Int("depth", depth).Int("nodes", s.nodes).Msg("parallel-search")
	return best, bestScore, nil
}
