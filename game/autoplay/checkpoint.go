package autoplay

import (
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// Checkpoint is an immutable copy of a game taken during a run
type Checkpoint struct {
	snapshot engine.Snapshot
	// Moves is the runner's move counter when the checkpoint was taken
	Moves int
}

// NewCheckpoint captures eng's current state
func NewCheckpoint(eng *engine.GameEngine, moves int) Checkpoint {
	return Checkpoint{snapshot: eng.Snapshot(), Moves: moves}
}

// Score returns the score at capture time
func (c Checkpoint) Score() int {
	return c.snapshot.Score
}

// TurnCount returns the engine turn counter at capture time
func (c Checkpoint) TurnCount() int {
	return c.snapshot.TurnCount
}

// Grid returns a copy of the grid at capture time
func (c Checkpoint) Grid() *engine.Grid {
	return c.snapshot.Grid.Clone()
}

// RestoreInto resets eng to the captured state. The checkpoint can be
// restored again afterwards.
func (c Checkpoint) RestoreInto(eng *engine.GameEngine) {
	eng.Restore(c.snapshot)
}

// Ring holds the most recent checkpoints, oldest first
type Ring struct {
	capacity int
	items    []Checkpoint
}

// NewRing creates a ring keeping at most capacity checkpoints
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{capacity: capacity, items: make([]Checkpoint, 0, capacity)}
}

// Push appends c, dropping the oldest checkpoint when full
func (r *Ring) Push(c Checkpoint) {
	if len(r.items) == r.capacity {
		copy(r.items, r.items[1:])
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append(r.items, c)
}

// Len returns the number of stored checkpoints
func (r *Ring) Len() int {
	return len(r.items)
}

// Latest returns the newest checkpoint
func (r *Ring) Latest() (Checkpoint, bool) {
	if len(r.items) == 0 {
		return Checkpoint{}, false
	}
	return r.items[len(r.items)-1], true
}

// Back returns the checkpoint offset entries before the newest, clamped to
// the oldest, and drops everything newer than it
func (r *Ring) Back(offset int) (Checkpoint, bool) {
	if len(r.items) == 0 {
		return Checkpoint{}, false
	}
	idx := len(r.items) - 1 - offset
	if idx < 0 {
		idx = 0
	}
	c := r.items[idx]
	r.items = r.items[:idx+1]
	return c, true
}

// Clear removes every checkpoint
func (r *Ring) Clear() {
	r.items = r.items[:0]
}
