package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *GameConfig {
	cfg := DefaultGameConfig()
	cfg.StartTiles = 0
	return cfg
}

// newTestEngine returns a seeded engine whose grid is set to rows
func newTestEngine(t *testing.T, rows [][]int) *GameEngine {
	t.Helper()
	cfg := createTestConfig()
	cfg.Size = len(rows)
	eng, err := NewEngine(cfg, NewSeededSource(7))
	require.NoError(t, err)
	eng.GetState().Grid = gridFromRows(rows)
	return eng
}

func TestNewEngine(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig(), NewSeededSource(1))
	require.NoError(t, err)

	state := eng.GetState()
	assert.Equal(t, 4, state.Grid.Size())
	assert.Len(t, state.Grid.Tiles(), 2, "new game seeds two tiles")
	assert.Equal(t, 0, state.Score)
	assert.Equal(t, 0, state.TurnCount)
	assert.False(t, state.Over)
	assert.False(t, state.Won)
	assert.Len(t, state.TimeStamps, 1, "game start is stamped")

	for _, tile := range state.Grid.Tiles() {
		assert.Contains(t, []int{2, 4}, tile.Value)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.Size = 1
	_, err := NewEngine(cfg, nil)
	assert.Error(t, err)

	_, err = NewEngine(nil, nil)
	assert.Error(t, err)
}

func TestNewEngineWithDefaults(t *testing.T) {
	eng := NewEngineWithDefaults()
	assert.Equal(t, DefaultGridSize, eng.GetConfig().Size)
	assert.Len(t, eng.GetState().Grid.Tiles(), DefaultStartTiles)
}

func TestNewEngine_Reproducible(t *testing.T) {
	a, err := NewEngine(DefaultGameConfig(), NewSeededSource(99))
	require.NoError(t, err)
	b, err := NewEngine(DefaultGameConfig(), NewSeededSource(99))
	require.NoError(t, err)

	for _, dir := range []Direction{Left, Up, Right, Down, Left, Left, Up} {
		a.Move(dir)
		b.Move(dir)
	}
	assert.True(t, a.GetState().Grid.Equal(b.GetState().Grid))
	assert.Equal(t, a.GetScore(), b.GetScore())
}

func TestEngine_MoveScenario(t *testing.T) {
	eng := newTestEngine(t, [][]int{
		{2, 2, 4, 4},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	result := eng.Move(Left)

	assert.True(t, result.Moved)
	assert.Equal(t, 12, result.ScoreGained)
	assert.Equal(t, 12, eng.GetScore())
	assert.Equal(t, 1, eng.GetState().TurnCount)
	require.NotNil(t, result.Spawned)
	assert.Len(t, eng.GetState().Grid.Tiles(), 3, "two merged tiles plus one spawn")

	g := eng.GetState().Grid
	assert.Equal(t, 4, g.Value(Position{X: 0, Y: 0}))
	assert.Equal(t, 8, g.Value(Position{X: 1, Y: 0}))
}

func TestEngine_NoOpMove(t *testing.T) {
	eng := newTestEngine(t, [][]int{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	before := eng.GetState().Grid.Clone()

	result := eng.Move(Left)

	assert.False(t, result.Moved)
	assert.Nil(t, result.Spawned)
	assert.Equal(t, 0, eng.GetScore())
	assert.Equal(t, 0, eng.GetState().TurnCount)
	assert.True(t, before.Equal(eng.GetState().Grid))
	assert.False(t, eng.GetState().Over)
}

func TestEngine_DeadGridSetsOver(t *testing.T) {
	eng := newTestEngine(t, [][]int{
		{2, 4, 8, 16},
		{256, 128, 64, 32},
		{512, 1024, 2048, 4096},
		{65536, 32768, 16384, 8192},
	})
	eng.KeepGoing()
	assert.False(t, eng.MovesAvailable())

	before := eng.GetState().Grid.Clone()
	result := eng.Move(Up)

	assert.False(t, result.Moved)
	assert.Nil(t, result.Spawned)
	assert.True(t, eng.GetState().Over)
	assert.True(t, before.Equal(eng.GetState().Grid))
}

func TestEngine_MoveFillingGridSetsOver(t *testing.T) {
	cfg := createTestConfig()
	cfg.Size = 2
	cfg.SpawnLowProbability = 1
	eng, err := NewEngine(cfg, NewSeededSource(3))
	require.NoError(t, err)

	// Sliding left leaves exactly one empty cell; the spawn of 2 fills it
	// with no equal neighbours
	eng.GetState().Grid = gridFromRows([][]int{
		{0, 4},
		{8, 16},
	})

	result := eng.Move(Left)
	require.True(t, result.Moved)
	assert.True(t, eng.GetState().Over)
	assert.Equal(t, 0, eng.GetState().Grid.EmptyCount())
}

func TestEngine_NeverOverWithEmptyCell(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig(), NewSeededSource(11))
	require.NoError(t, err)

	for i := 0; i < 500 && !eng.IsTerminated(); i++ {
		eng.Move(Directions[i%4])
		state := eng.GetState()
		if state.Over {
			assert.Equal(t, 0, state.Grid.EmptyCount(), "over with empty cells at turn %d", state.TurnCount)
		}
	}
}

func TestEngine_ScoreMonotonic(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig(), NewSeededSource(5))
	require.NoError(t, err)

	prev := 0
	for i := 0; i < 300 && !eng.IsTerminated(); i++ {
		result := eng.Move(Directions[(i*3)%4])
		sum := 0
		for _, m := range result.Merges {
			sum += m
		}
		if result.Moved {
			assert.Equal(t, sum, result.ScoreGained)
			assert.Equal(t, prev+sum, eng.GetScore())
		}
		assert.GreaterOrEqual(t, eng.GetScore(), prev)
		prev = eng.GetScore()
	}
}

func TestEngine_TerminatedIsNoOp(t *testing.T) {
	eng := newTestEngine(t, [][]int{
		{1024, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	eng.Move(Left)
	require.True(t, eng.GetState().Won)
	assert.True(t, eng.IsTerminated())

	turns := eng.GetState().TurnCount
	result := eng.Move(Right)
	assert.False(t, result.Moved)
	assert.Equal(t, turns, eng.GetState().TurnCount)

	eng.KeepGoing()
	assert.False(t, eng.IsTerminated())
	assert.True(t, eng.Move(Right).Moved)
}

func TestEngine_Instrumentation(t *testing.T) {
	eng := newTestEngine(t, [][]int{
		{2, 2, 4, 4},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	eng.SetClock(func() time.Time { return base })

	eng.Move(Left)
	state := eng.GetState()

	assert.Equal(t, []int{4, 8}, state.ScoreStamps)
	assert.Len(t, state.Grids, 1)
	assert.Len(t, state.TimeStamps, 2)
	assert.Equal(t, base, state.TimeStamps[1])
}

func TestEngine_CanMove(t *testing.T) {
	eng := newTestEngine(t, [][]int{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	assert.False(t, eng.CanMove(Left))
	assert.False(t, eng.CanMove(Up))
	assert.True(t, eng.CanMove(Right))
	assert.True(t, eng.CanMove(Down))
	assert.ElementsMatch(t, []Direction{Right, Down}, eng.GetPossibleMoves())

	// probing must not touch the board
	assert.Equal(t, 2, eng.GetState().Grid.Value(Position{X: 0, Y: 0}))
}

func TestEngine_Slide(t *testing.T) {
	eng := newTestEngine(t, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	moved, gained := eng.Slide(Left)
	assert.True(t, moved)
	assert.Equal(t, 4, gained)
	assert.Equal(t, 0, eng.GetState().TurnCount, "slide does not count turns")
	assert.Len(t, eng.GetState().Grid.Tiles(), 1, "slide does not spawn")
}

func TestEngine_SnapshotRestore(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig(), NewSeededSource(21))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		eng.Move(Directions[i%4])
	}

	snap := eng.Snapshot()
	want := eng.GetState().Grid.Clone()
	score, turns := eng.GetScore(), eng.GetState().TurnCount
	stamps := len(eng.GetState().ScoreStamps)

	for i := 0; i < 30; i++ {
		eng.Move(Directions[(i+1)%4])
	}

	eng.Restore(snap)
	state := eng.GetState()
	assert.True(t, want.Equal(state.Grid))
	assert.Equal(t, score, state.Score)
	assert.Equal(t, turns, state.TurnCount)
	assert.Equal(t, snap.Over, state.Over)
	assert.Equal(t, snap.Won, state.Won)
	assert.Len(t, state.ScoreStamps, stamps)

	// restoring twice from the same snapshot is stable
	eng.Move(Left)
	eng.Restore(snap)
	assert.True(t, want.Equal(eng.GetState().Grid))
}

func TestEngine_SimulationIsIndependent(t *testing.T) {
	eng := newTestEngine(t, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	sim := eng.Simulation()
	sim.Move(Left)

	assert.Equal(t, 0, eng.GetScore())
	assert.Equal(t, 2, eng.GetState().Grid.Value(Position{X: 1, Y: 0}))
	assert.True(t, sim.GetState().KeepPlaying)
	assert.Empty(t, sim.GetState().Grids)
}

func TestEngine_SetState(t *testing.T) {
	eng := NewEngineWithDefaults()

	err := eng.SetState(nil)
	assert.True(t, errors.Is(err, ErrInvalidState))

	err = eng.SetState(&GameState{Grid: NewGrid(5)})
	assert.True(t, errors.Is(err, ErrInvalidState))

	state := &GameState{Grid: NewGrid(4), Score: 40}
	require.NoError(t, eng.SetState(state))
	assert.Equal(t, 40, eng.GetScore())
}

func TestEngine_Restart(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig(), NewSeededSource(8))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		eng.Move(Directions[i%4])
	}

	state := eng.Restart()
	assert.Equal(t, 0, state.Score)
	assert.Equal(t, 0, state.TurnCount)
	assert.Len(t, state.Grid.Tiles(), 2)
	assert.Same(t, state, eng.GetState())
}

func TestEngine_BulkMove(t *testing.T) {
	eng := newTestEngine(t, [][]int{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	results := eng.BulkMove([]Direction{Right, Left, Down})
	assert.Len(t, results, 3)
	assert.True(t, results[0].Moved)
}

func TestEngine_PlaceTile(t *testing.T) {
	eng := newTestEngine(t, [][]int{
		{0, 0},
		{0, 0},
	})
	eng.PlaceTile(Position{X: 1, Y: 1}, 4)
	assert.Equal(t, 4, eng.GetState().Grid.Value(Position{X: 1, Y: 1}))

	assert.Panics(t, func() { eng.PlaceTile(Position{X: 1, Y: 1}, 2) })
}
