package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// TileSnapshot is the serialized form of a tile
type TileSnapshot struct {
	Position Position `json:"position"`
	Value    int      `json:"value"`
}

// GridSnapshot is the serialized form of a grid. Cells are indexed [x][y];
// empty cells are nil.
type GridSnapshot struct {
	Size  int               `json:"size"`
	Cells [][]*TileSnapshot `json:"cells"`
}

// Serialize captures the grid's tiles without provenance
func (g *Grid) Serialize() GridSnapshot {
	snap := GridSnapshot{
		Size:  g.size,
		Cells: make([][]*TileSnapshot, g.size),
	}
	for x := 0; x < g.size; x++ {
		snap.Cells[x] = make([]*TileSnapshot, g.size)
		for y := 0; y < g.size; y++ {
			if t := g.cells[g.index(Position{X: x, Y: y})]; t != nil {
				snap.Cells[x][y] = &TileSnapshot{Position: t.Position, Value: t.Value}
			}
		}
	}
	return snap
}

// DeserializeGrid rebuilds a grid, rejecting structurally invalid snapshots
func DeserializeGrid(snap GridSnapshot) (*Grid, error) {
	if snap.Size < MinGridSize || snap.Size > MaxGridSize {
		return nil, fmt.Errorf("%w: grid size %d", ErrInvalidState, snap.Size)
	}
	if len(snap.Cells) != snap.Size {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidState, snap.Size, len(snap.Cells))
	}

	g := NewGrid(snap.Size)
	for x, column := range snap.Cells {
		if len(column) != snap.Size {
			return nil, fmt.Errorf("%w: column %d has %d cells", ErrInvalidState, x, len(column))
		}
		for y, ts := range column {
			if ts == nil {
				continue
			}
			if ts.Position.X != x || ts.Position.Y != y {
				return nil, fmt.Errorf("%w: tile at (%d,%d) claims position (%d,%d)",
					ErrInvalidState, x, y, ts.Position.X, ts.Position.Y)
			}
			if ts.Value <= 0 {
				return nil, fmt.Errorf("%w: tile at (%d,%d) has value %d", ErrInvalidState, x, y, ts.Value)
			}
			g.InsertTile(NewTile(ts.Position, ts.Value))
		}
	}
	return g, nil
}

// stateJSON is the persisted layout of a game state
type stateJSON struct {
	Grid        GridSnapshot   `json:"grid"`
	Score       int            `json:"score"`
	TurnCount   int            `json:"turnCount"`
	Over        bool           `json:"over"`
	Won         bool           `json:"won"`
	KeepPlaying bool           `json:"keepPlaying"`
	GameStart   time.Time      `json:"gameStart"`
	Grids       []GridSnapshot `json:"grids,omitempty"`
	TimeStamps  []time.Time    `json:"timeStamps,omitempty"`
	ScoreStamps []int          `json:"scoreStamps,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (gs *GameState) MarshalJSON() ([]byte, error) {
	if gs.Grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidState)
	}
	return json.Marshal(stateJSON{
		Grid:        gs.Grid.Serialize(),
		Score:       gs.Score,
		TurnCount:   gs.TurnCount,
		Over:        gs.Over,
		Won:         gs.Won,
		KeepPlaying: gs.KeepPlaying,
		GameStart:   gs.GameStart,
		Grids:       gs.Grids,
		TimeStamps:  gs.TimeStamps,
		ScoreStamps: gs.ScoreStamps,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (gs *GameState) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Score < 0 || raw.TurnCount < 0 {
		return fmt.Errorf("%w: negative score or turn count", ErrInvalidState)
	}
	grid, err := DeserializeGrid(raw.Grid)
	if err != nil {
		return err
	}

	*gs = GameState{
		Grid:        grid,
		Score:       raw.Score,
		TurnCount:   raw.TurnCount,
		Over:        raw.Over,
		Won:         raw.Won,
		KeepPlaying: raw.KeepPlaying,
		GameStart:   raw.GameStart,
		Grids:       raw.Grids,
		TimeStamps:  raw.TimeStamps,
		ScoreStamps: raw.ScoreStamps,
	}
	return nil
}

// ParseState decodes a persisted game state. Any error means there is no
// usable saved game.
func ParseState(data []byte) (*GameState, error) {
	var gs GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &gs, nil
}

// Snapshot is a value copy of everything a move can change
type Snapshot struct {
	Grid        *Grid
	Score       int
	TurnCount   int
	Over        bool
	Won         bool
	KeepPlaying bool

	grids       []GridSnapshot
	timeStamps  []time.Time
	scoreStamps []int
}

// Snapshot captures the current state. Later moves never alter it.
func (e *GameEngine) Snapshot() Snapshot {
	s := e.state
	// Instrumentation is append-only, so capping capacity is enough to keep
	// later appends from writing into the snapshot's view.
	return Snapshot{
		Grid:        s.Grid.Clone(),
		Score:       s.Score,
		TurnCount:   s.TurnCount,
		Over:        s.Over,
		Won:         s.Won,
		KeepPlaying: s.KeepPlaying,
		grids:       s.Grids[:len(s.Grids):len(s.Grids)],
		timeStamps:  s.TimeStamps[:len(s.TimeStamps):len(s.TimeStamps)],
		scoreStamps: s.ScoreStamps[:len(s.ScoreStamps):len(s.ScoreStamps)],
	}
}

// Restore returns the engine to a previously captured snapshot. The snapshot
// stays valid and can be restored again.
func (e *GameEngine) Restore(snap Snapshot) {
	e.state = &GameState{
		Grid:        snap.Grid.Clone(),
		Score:       snap.Score,
		TurnCount:   snap.TurnCount,
		Over:        snap.Over,
		Won:         snap.Won,
		KeepPlaying: snap.KeepPlaying,
		GameStart:   e.state.GameStart,
		Grids:       snap.grids,
		TimeStamps:  snap.timeStamps,
		ScoreStamps: snap.scoreStamps,
	}
}

// Clone returns a copy of the state that later moves never alter
func (gs *GameState) Clone() *GameState {
	c := *gs
	c.Grid = gs.Grid.Clone()
	c.Grids = gs.Grids[:len(gs.Grids):len(gs.Grids)]
	c.TimeStamps = gs.TimeStamps[:len(gs.TimeStamps):len(gs.TimeStamps)]
	c.ScoreStamps = gs.ScoreStamps[:len(gs.ScoreStamps):len(gs.ScoreStamps)]
	return &c
}
