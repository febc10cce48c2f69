package ai

import (
	"context"
	"testing"

	"github.com/matryer/is"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

func TestPolicy_Plan(t *testing.T) {
	is := is.New(t)
	p := NewPolicy(PolicyConfig{}, nil, engine.NewSeededSource(1))

	open := gridFromRows([][]int{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	mode, depth := p.Plan(open)
	is.Equal(mode, ModeGreedy)
	is.Equal(depth, 1)

	bigTile := gridFromRows([][]int{
		{512, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	mode, depth = p.Plan(bigTile)
	is.Equal(mode, ModeExpectimax)
	is.Equal(depth, 3)

	crowded := gridFromRows([][]int{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 0, 0},
	})
	mode, depth = p.Plan(crowded)
	is.Equal(mode, ModeExpectimax)
	is.Equal(depth, 4) // two or fewer empty cells search deeper

	fourEmpty := gridFromRows([][]int{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{0, 0, 0, 0},
	})
	mode, depth = p.Plan(fourEmpty)
	is.Equal(mode, ModeExpectimax)
	is.Equal(depth, 3)
}

func TestPolicy_FixedDepth(t *testing.T) {
	is := is.New(t)
	p := NewPolicy(PolicyConfig{FixedDepth: 2}, nil, engine.NewSeededSource(1))
	mode, depth := p.Plan(engine.NewGrid(4))
	is.Equal(mode, ModeFixed)
	is.Equal(depth, 2)
}

func TestPolicy_ApplyDefaults(t *testing.T) {
	is := is.New(t)
	cfg := PolicyConfig{Depth: 2}
	cfg.ApplyDefaults()
	is.Equal(cfg.Depth, 2)
	is.Equal(cfg.CriticalDepth, 4)
	is.Equal(cfg.DeepTileThreshold, 512)
	is.Equal(cfg.SampleCap, DefaultSampleCap)
}

func TestPolicy_Decide(t *testing.T) {
	is := is.New(t)
	eng, err := engine.NewEngine(engine.DefaultGameConfig(), engine.NewSeededSource(3))
	is.NoErr(err)

	p := NewPolicy(DefaultPolicyConfig(), nil, engine.NewSeededSource(3))
	d, err := p.Decide(context.Background(), eng)
	is.NoErr(err)
	is.Equal(d.Mode, ModeGreedy)
	is.True(eng.CanMove(d.Direction))
}

func TestPolicy_DecideParallel(t *testing.T) {
	is := is.New(t)
	eng, err := engine.NewEngine(engine.DefaultGameConfig(), engine.NewSeededSource(3))
	is.NoErr(err)

	p := NewPolicy(PolicyConfig{FixedDepth: 2, Parallel: true}, nil, engine.NewSeededSource(3))
	d, err := p.Decide(context.Background(), eng)
	is.NoErr(err)
	is.Equal(d.Mode, ModeFixed)
	is.True(eng.CanMove(d.Direction))
}
