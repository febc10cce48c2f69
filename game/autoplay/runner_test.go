package autoplay

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/tilemerge/game/ai"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

func newTestRunner(t *testing.T, cfg *engine.GameConfig, seed uint64, opts Options) (*Runner, *engine.GameEngine) {
	t.Helper()
	eng, err := engine.NewEngine(cfg, engine.NewSeededSource(seed))
	require.NoError(t, err)
	policy := ai.NewPolicy(ai.DefaultPolicyConfig(), nil, engine.NewSeededSource(seed+1))
	return NewRunner(eng, policy, opts), eng
}

func TestRunner_ReachesTarget(t *testing.T) {
	opts := DefaultOptions()
	opts.TargetScore = 500
	r, eng := newTestRunner(t, engine.DefaultGameConfig(), 1, opts)

	res := r.Run(context.Background(), nil)

	assert.True(t, res.Succeeded)
	assert.Equal(t, ReasonTargetReached, res.Reason)
	assert.GreaterOrEqual(t, res.Score, 500)
	assert.Equal(t, eng.GetScore(), res.Score)
	assert.Positive(t, res.MovesTaken)
	assert.Same(t, eng.GetState(), res.FinalState)
}

func TestRunner_BudgetExhausted(t *testing.T) {
	opts := DefaultOptions()
	opts.TargetScore = 1 << 30
	opts.MaxMoves = 5
	r, _ := newTestRunner(t, engine.DefaultGameConfig(), 2, opts)

	res := r.Run(context.Background(), nil)

	assert.False(t, res.Succeeded)
	assert.Equal(t, ReasonBudgetExhausted, res.Reason)
	assert.Equal(t, 5, res.MovesTaken)
}

func TestRunner_CancelledBeforeStart(t *testing.T) {
	opts := DefaultOptions()
	opts.TargetScore = 1000
	r, eng := newTestRunner(t, engine.DefaultGameConfig(), 3, opts)
	before := eng.Snapshot()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := r.Run(ctx, nil)

	assert.Equal(t, ReasonCancelled, res.Reason)
	assert.Equal(t, 0, res.MovesTaken)
	assert.True(t, before.Grid.Equal(eng.GetState().Grid))
}

func TestRunner_CancelMidRun(t *testing.T) {
	opts := DefaultOptions()
	opts.TargetScore = 1 << 30
	r, _ := newTestRunner(t, engine.DefaultGameConfig(), 4, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	steps := 0
	res := r.Run(ctx, func(c Cycle) bool {
		steps++
		if steps == 10 {
			cancel()
		}
		return true
	})

	assert.Equal(t, ReasonCancelled, res.Reason)
	assert.LessOrEqual(t, res.MovesTaken, 10)
	assert.True(t, r.Done())
}

func TestRunner_StopFromCallback(t *testing.T) {
	opts := DefaultOptions()
	opts.TargetScore = 1 << 30
	r, _ := newTestRunner(t, engine.DefaultGameConfig(), 5, opts)

	res := r.Run(context.Background(), func(c Cycle) bool {
		return c.Moves < 3
	})
	assert.Equal(t, ReasonStopped, res.Reason)
	assert.Equal(t, 3, res.MovesTaken)
}

func TestRunner_RetriesBounded(t *testing.T) {
	// A 2x2 board dies quickly, forcing every retry to be used
	cfg := engine.DefaultGameConfig()
	cfg.Size = 2
	opts := DefaultOptions()
	opts.TargetScore = 1 << 30
	opts.CheckpointInterval = 1
	opts.MaxRetries = 2
	r, eng := newTestRunner(t, cfg, 6, opts)

	restores := 0
	res := r.Run(context.Background(), func(c Cycle) bool {
		if c.Event == EventRestored {
			restores++
		}
		return true
	})

	assert.False(t, res.Succeeded)
	assert.Equal(t, ReasonGameOver, res.Reason)
	assert.Equal(t, 2, res.Retries)
	assert.Equal(t, 2, restores)
	assert.True(t, eng.GetState().Over)
}

func TestRunner_NoRetries(t *testing.T) {
	cfg := engine.DefaultGameConfig()
	cfg.Size = 2
	opts := DefaultOptions()
	opts.TargetScore = 1 << 30
	opts.MaxRetries = 0
	r, _ := newTestRunner(t, cfg, 7, opts)

	res := r.Run(context.Background(), nil)
	assert.Equal(t, ReasonGameOver, res.Reason)
	assert.Equal(t, 0, res.Retries)
}

func TestRunner_ContinueAfterWin(t *testing.T) {
	cfg := engine.DefaultGameConfig()
	cfg.WinValue = 16
	opts := DefaultOptions()
	opts.TargetScore = 300

	r, eng := newTestRunner(t, cfg, 8, opts)
	sawKeepGoing := false
	res := r.Run(context.Background(), func(c Cycle) bool {
		if c.Event == EventKeepGoing {
			sawKeepGoing = true
		}
		return true
	})

	assert.True(t, sawKeepGoing)
	assert.True(t, eng.GetState().Won)
	assert.True(t, eng.GetState().KeepPlaying)
	assert.Equal(t, ReasonTargetReached, res.Reason)
}

func TestRunner_StopOnWin(t *testing.T) {
	cfg := engine.DefaultGameConfig()
	cfg.WinValue = 16
	opts := DefaultOptions()
	opts.TargetScore = 1 << 30
	opts.ContinueAfterWin = false

	r, eng := newTestRunner(t, cfg, 9, opts)
	res := r.Run(context.Background(), nil)

	assert.Equal(t, ReasonWon, res.Reason)
	assert.False(t, res.Succeeded)
	assert.True(t, eng.GetState().Won)
	assert.Equal(t, 16, res.MaxTile)
}

func TestRunner_TakesCheckpoints(t *testing.T) {
	opts := DefaultOptions()
	opts.TargetScore = 1 << 30
	opts.MaxMoves = 60
	opts.CheckpointInterval = 10
	opts.MaxCheckpoints = 3
	r, _ := newTestRunner(t, engine.DefaultGameConfig(), 10, opts)

	r.Run(context.Background(), nil)
	assert.Equal(t, 3, r.Checkpoints())
}

func TestRunner_ReportsCheckpointedCycles(t *testing.T) {
	opts := DefaultOptions()
	opts.TargetScore = 1 << 30
	opts.MaxMoves = 60
	opts.CheckpointInterval = 5
	opts.MaxCheckpoints = 100
	r, _ := newTestRunner(t, engine.DefaultGameConfig(), 12, opts)

	checkpointed := 0
	res := r.Run(context.Background(), func(c Cycle) bool {
		if c.Checkpointed {
			checkpointed++
			assert.Equal(t, EventMoved, c.Event)
			assert.Zero(t, (c.Moves-1)%opts.CheckpointInterval, "checkpoint taken off interval at move %d", c.Moves)
		}
		return true
	})

	require.Equal(t, ReasonBudgetExhausted, res.Reason)
	assert.Positive(t, checkpointed)
	assert.Equal(t, r.Checkpoints(), checkpointed)
}

func TestRunner_RestoresOffsetCheckpoint(t *testing.T) {
	cfg := engine.DefaultGameConfig()
	cfg.Size = 3
	opts := DefaultOptions()
	opts.TargetScore = 1 << 30
	opts.CheckpointInterval = 1
	opts.MaxRetries = 3

	// a restore that skips past the newest checkpoint
	sawOffsetRestore := false
	for seed := uint64(1); seed <= 40 && !sawOffsetRestore; seed++ {
		r, eng := newTestRunner(t, cfg, seed, opts)
		for {
			held := slices.Clone(r.ring.items)
			retries := r.retries

			c, more := r.Step(context.Background())
			if !more {
				break
			}
			if c.Event != EventRestored {
				continue
			}

			idx := max(len(held)-1-(opts.RestoreOffset+retries), 0)
			want := held[idx]
			state := eng.GetState()
			assert.Equal(t, want.Score(), state.Score, "seed %d", seed)
			assert.Equal(t, want.TurnCount(), state.TurnCount, "seed %d", seed)
			assert.True(t, want.Grid().Equal(state.Grid), "seed %d: restored grid differs", seed)
			assert.Equal(t, idx+1, r.ring.Len(), "newer checkpoints should be dropped")
			assert.Equal(t, retries+1, c.Retries)
			if idx < len(held)-1 {
				sawOffsetRestore = true
			}
		}
	}
	assert.True(t, sawOffsetRestore, "expected a restore to an older checkpoint")
}

func TestRunner_StepAfterDone(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxMoves = 1
	opts.TargetScore = 1 << 30
	r, _ := newTestRunner(t, engine.DefaultGameConfig(), 11, opts)
	r.Run(context.Background(), nil)

	c, more := r.Step(context.Background())
	assert.False(t, more)
	assert.Equal(t, EventStopped, c.Event)
}

func TestOptions_ApplyDefaults(t *testing.T) {
	o := Options{TargetScore: 10, MaxRetries: -1}
	o.ApplyDefaults()
	assert.Equal(t, 80000, o.MaxMoves)
	assert.Equal(t, 50, o.CheckpointInterval)
	assert.Equal(t, 10, o.MaxCheckpoints)
	assert.Equal(t, 0, o.MaxRetries)
	assert.Equal(t, 10, o.TargetScore)
}
