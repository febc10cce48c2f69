package autoplay

import (
	"testing"

	"github.com/matryer/is"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

func TestCheckpoint_Fidelity(t *testing.T) {
	is := is.New(t)
	eng, err := engine.NewEngine(engine.DefaultGameConfig(), engine.NewSeededSource(31))
	is.NoErr(err)
	for i := 0; i < 25; i++ {
		eng.Move(engine.Directions[i%4])
	}

	cp := NewCheckpoint(eng, 25)
	state := eng.GetState()
	grid := state.Grid.Clone()
	score, turns, over, won := state.Score, state.TurnCount, state.Over, state.Won

	for i := 0; i < 40; i++ {
		eng.Move(engine.Directions[(i*3)%4])
	}

	cp.RestoreInto(eng)
	restored := eng.GetState()
	is.True(restored.Grid.Equal(grid))
	is.Equal(restored.Score, score)
	is.Equal(restored.TurnCount, turns)
	is.Equal(restored.Over, over)
	is.Equal(restored.Won, won)
	is.Equal(cp.Score(), score)
	is.Equal(cp.TurnCount(), turns)
	is.Equal(cp.Moves, 25)

	// the checkpoint survives mutation after a restore
	eng.Move(engine.Left)
	eng.Move(engine.Up)
	is.True(cp.Grid().Equal(grid))
}

func TestRing_DropsOldest(t *testing.T) {
	is := is.New(t)
	eng := engine.NewEngineWithDefaults()
	r := NewRing(3)

	for i := 0; i < 5; i++ {
		r.Push(NewCheckpoint(eng, i))
	}
	is.Equal(r.Len(), 3)

	latest, ok := r.Latest()
	is.True(ok)
	is.Equal(latest.Moves, 4)

	oldest, ok := r.Back(10) // clamped to the oldest
	is.True(ok)
	is.Equal(oldest.Moves, 2)
	is.Equal(r.Len(), 1) // newer checkpoints are dropped
}

func TestRing_Back(t *testing.T) {
	is := is.New(t)
	eng := engine.NewEngineWithDefaults()
	r := NewRing(10)
	for i := 0; i < 6; i++ {
		r.Push(NewCheckpoint(eng, i*50))
	}

	cp, ok := r.Back(2)
	is.True(ok)
	is.Equal(cp.Moves, 150)
	is.Equal(r.Len(), 4)

	cp, ok = r.Back(0)
	is.True(ok)
	is.Equal(cp.Moves, 150)
	is.Equal(r.Len(), 4)
}

func TestRing_Empty(t *testing.T) {
	is := is.New(t)
	r := NewRing(0)
	_, ok := r.Latest()
	is.True(!ok)
	_, ok = r.Back(1)
	is.True(!ok)

	r.Push(NewCheckpoint(engine.NewEngineWithDefaults(), 0))
	r.Clear()
	is.Equal(r.Len(), 0)
}
