package ai

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// Mode names how a decision was made
type Mode string

const (
	ModeGreedy     Mode = "greedy"
	ModeExpectimax Mode = "expectimax"
	ModeFixed      Mode = "fixed"
)

// PolicyConfig controls when the policy pays for a deep search
type PolicyConfig struct {
	// Search deeply once the largest tile reaches this value
	DeepTileThreshold int `json:"deep_tile_threshold" yaml:"deep_tile_threshold"`
	// ...or once this few cells are empty
	LowEmptyCells int `json:"low_empty_cells" yaml:"low_empty_cells"`
	// Use CriticalDepth at or below this many empty cells
	CriticalEmptyCells int `json:"critical_empty_cells" yaml:"critical_empty_cells"`
	Depth              int `json:"depth" yaml:"depth"`
	CriticalDepth      int `json:"critical_depth" yaml:"critical_depth"`
	// FixedDepth > 0 always searches to that depth
	FixedDepth int  `json:"fixed_depth" yaml:"fixed_depth"`
	SampleCap  int  `json:"sample_cap" yaml:"sample_cap"`
	Parallel   bool `json:"parallel" yaml:"parallel"`
}

// DefaultPolicyConfig returns the adaptive depth thresholds
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		DeepTileThreshold:  512,
		LowEmptyCells:      4,
		CriticalEmptyCells: 2,
		Depth:              3,
		CriticalDepth:      4,
		SampleCap:          DefaultSampleCap,
	}
}

// ApplyDefaults fills zero thresholds from DefaultPolicyConfig
func (c *PolicyConfig) ApplyDefaults() {
	d := DefaultPolicyConfig()
	if c.DeepTileThreshold == 0 {
		c.DeepTileThreshold = d.DeepTileThreshold
	}
	if c.LowEmptyCells == 0 {
		c.LowEmptyCells = d.LowEmptyCells
	}
	if c.CriticalEmptyCells == 0 {
		c.CriticalEmptyCells = d.CriticalEmptyCells
	}
	if c.Depth == 0 {
		c.Depth = d.Depth
	}
	if c.CriticalDepth == 0 {
		c.CriticalDepth = d.CriticalDepth
	}
	if c.SampleCap == 0 {
		c.SampleCap = d.SampleCap
	}
}

// Decision is a chosen direction and how it was found
type Decision struct {
	Direction engine.Direction `json:"direction"`
	Score     float64          `json:"score"`
	Depth     int              `json:"depth"`
	Mode      Mode             `json:"mode"`
}

// Policy chooses between the cheap greedy rule and expectimax per position
type Policy struct {
	config   PolicyConfig
	searcher *Searcher
}

// NewPolicy creates a policy backed by its own searcher
func NewPolicy(cfg PolicyConfig, eval *Evaluator, rng engine.RandomSource) *Policy {
	cfg.ApplyDefaults()
	return &Policy{
		config:   cfg,
		searcher: NewSearcher(eval, rng, WithSampleCap(cfg.SampleCap)),
	}
}

// Config returns the policy thresholds
func (p *Policy) Config() PolicyConfig {
	return p.config
}

// Searcher returns the underlying searcher
func (p *Policy) Searcher() *Searcher {
	return p.searcher
}

// Plan returns the mode and depth the policy would use for grid
func (p *Policy) Plan(grid *engine.Grid) (Mode, int) {
	if p.config.FixedDepth > 0 {
		return ModeFixed, p.config.FixedDepth
	}
	empty := grid.EmptyCount()
	if grid.MaxValue() >= p.config.DeepTileThreshold || empty <= p.config.LowEmptyCells {
		if empty <= p.config.CriticalEmptyCells {
			return ModeExpectimax, p.config.CriticalDepth
		}
		return ModeExpectimax, p.config.Depth
	}
	return ModeGreedy, 1
}

// Decide picks a direction for eng's current position without modifying it.
// Direction is engine.NoDirection when no move is legal.
func (p *Policy) Decide(ctx context.Context, eng *engine.GameEngine) (Decision, error) {
	mode, depth := p.Plan(eng.GetState().Grid)
	d := Decision{Mode: mode, Depth: depth}

	switch {
	case mode == ModeGreedy:
		d.Direction, d.Score = p.searcher.GreedyMove(eng)
	case p.config.Parallel:
		dir, score, err := p.searcher.BestMoveParallel(ctx, eng, depth)
		if err != nil {
			return d, err
		}
		d.Direction, d.Score = dir, score
	default:
		d.Direction, d.Score = p.searcher.BestMove(eng, depth)
	}

	zerolog.Ctx(ctx).Trace().Str("mode", string(mode)).Int("depth", depth).
		Str("direction", d.Direction.String()).Int("nodes", p.searcher.Stats().Nodes).Msg("decide")
	return d, nil
}
