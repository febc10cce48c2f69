package ai

import (
	"github.com/cespare/xxhash"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// evalCache memoizes evaluator scores for grids seen during one search.
// Keys are xxhash digests of the grid's cell values.
type evalCache struct {
	eval    *Evaluator
	scores  map[uint64]float64
	buf     []byte
	hits    int
	misses  int
	enabled bool
}

func newEvalCache(eval *Evaluator, enabled bool) *evalCache {
	return &evalCache{
		eval:    eval,
		scores:  make(map[uint64]float64),
		enabled: enabled,
	}
}

func (c *evalCache) evaluate(g *engine.Grid) float64 {
	if !c.enabled {
		return c.eval.Evaluate(g)
	}
	c.buf = g.AppendValues(c.buf[:0])
	key := xxhash.Sum64(c.buf)
	if v, ok := c.scores[key]; ok {
		c.hits++
		return v
	}
	c.misses++
	v := c.eval.Evaluate(g)
	c.scores[key] = v
	return v
}

func (c *evalCache) reset() {
	clear(c.scores)
	c.hits = 0
	c.misses = 0
}
