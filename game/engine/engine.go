package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Restart() *GameState
	IsTerminated() bool
	GetScore() int

	// Movement operations
	Move(dir Direction) MoveResult
	CanMove(dir Direction) bool
	GetPossibleMoves() []Direction
	MovesAvailable() bool
	KeepGoing()

	// Configuration
	GetConfig() *GameConfig
}

// GameEngine applies moves to a single game state. It is not safe for
// concurrent use; callers serialize access.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    RandomSource
	now    func() time.Time
}

// NewEngine validates config and starts a new game with its starting tiles
func NewEngine(config *GameConfig, rng RandomSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewCryptoSource()
	}

	e := &GameEngine{
		config: config,
		rng:    rng,
		now:    time.Now,
	}
	e.state = e.newState()
	return e, nil
}

// NewEngineFromState resumes a previously serialized game
func NewEngineFromState(config *GameConfig, rng RandomSource, state *GameState) (*GameEngine, error) {
	e, err := NewEngine(config, rng)
	if err != nil {
		return nil, err
	}
	if err := e.SetState(state); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates an engine with the classic rules and an unseeded source
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), nil)
	if err != nil {
		panic(err)
	}
	return e
}

// SetClock replaces the time source used for instrumentation timestamps
func (e *GameEngine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *GameEngine) newState() *GameState {
	start := e.now()
	state := &GameState{
		Grid:      NewGrid(e.config.Size),
		GameStart: start,
	}
	if e.config.RecordHistory {
		state.Grids = []GridSnapshot{}
		state.TimeStamps = []time.Time{start}
		state.ScoreStamps = []int{}
	}
	e.state = state
	for i := 0; i < e.config.StartTiles; i++ {
		e.addRandomTile()
	}
	return state
}

// addRandomTile spawns the low value with the configured probability, the high value otherwise
func (e *GameEngine) addRandomTile() *Tile {
	if !e.state.Grid.CellsAvailable() {
		return nil
	}
	value := e.config.SpawnHighValue
	if e.rng.Float64() < e.config.SpawnLowProbability {
		value = e.config.SpawnLowValue
	}
	tile := NewTile(e.state.Grid.RandomAvailableCell(e.rng), value)
	e.state.Grid.InsertTile(tile)
	return tile
}

// GetState returns the live game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil || state.Grid == nil {
		return fmt.Errorf("%w: state cannot be nil", ErrInvalidState)
	}
	if state.Grid.Size() != e.config.Size {
		return fmt.Errorf("%w: grid size %d does not match config size %d", ErrInvalidState, state.Grid.Size(), e.config.Size)
	}
	e.state = state
	return nil
}

// Restart discards the current game and starts a fresh one
func (e *GameEngine) Restart() *GameState {
	return e.newState()
}

// IsTerminated reports whether moves are currently ignored
func (e *GameEngine) IsTerminated() bool {
	return e.state.Terminated()
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetConfig returns the rules configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// KeepGoing lets play continue after the win tile has been reached
func (e *GameEngine) KeepGoing() {
	e.state.KeepPlaying = true
}

// MovesAvailable reports whether any direction can still change the board
func (e *GameEngine) MovesAvailable() bool {
	return movesAvailable(e.state.Grid)
}

// TileMatchesAvailable reports whether two adjacent tiles share a value
func (e *GameEngine) TileMatchesAvailable() bool {
	return tileMatchesAvailable(e.state.Grid)
}

// Move slides the board in dir. On a change it spawns a tile, advances the
// turn counter, records instrumentation and detects game over.
func (e *GameEngine) Move(dir Direction) MoveResult {
	result := MoveResult{Direction: dir}
	if e.state.Terminated() || !dir.Valid() {
		return result
	}

	res := slide(e.state.Grid, dir, e.config.WinValue)
	result.ScoreGained = res.gained
	result.Merges = res.merges

	if !res.moved {
		// A dead board ends the game even though nothing moved
		if !e.MovesAvailable() {
			e.state.Over = true
		}
		return result
	}

	e.state.Score += res.gained
	if res.won {
		e.state.Won = true
	}

	result.Moved = true
	e.state.TurnCount++
	result.Spawned = e.addRandomTile()

	if e.config.RecordHistory {
		e.state.ScoreStamps = append(e.state.ScoreStamps, res.merges...)
		e.state.Grids = append(e.state.Grids, e.state.Grid.Serialize())
		e.state.TimeStamps = append(e.state.TimeStamps, e.now())
	}

	if !e.MovesAvailable() {
		e.state.Over = true
	}

	return result
}

// Slide performs only the slide and merge phase of a move: no spawn, no turn
// counter, no instrumentation and no termination check. Search uses it to
// expand player nodes before enumerating spawns itself.
func (e *GameEngine) Slide(dir Direction) (moved bool, gained int) {
	if !dir.Valid() {
		return false, 0
	}
	res := slide(e.state.Grid, dir, e.config.WinValue)
	if res.moved {
		e.state.Score += res.gained
		if res.won {
			e.state.Won = true
		}
	}
	return res.moved, res.gained
}

// CanMove reports whether moving in dir would change the board
func (e *GameEngine) CanMove(dir Direction) bool {
	if e.state.Terminated() || !dir.Valid() {
		return false
	}
	trial := e.state.Grid.Clone()
	return slide(trial, dir, e.config.WinValue).moved
}

// GetPossibleMoves returns all directions that change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// PlaceTile inserts a tile of value at pos. pos must be empty.
func (e *GameEngine) PlaceTile(pos Position, value int) {
	e.state.Grid.InsertTile(NewTile(pos, value))
}

// Simulation returns an independent copy for look-ahead: instrumentation is
// off and keepPlaying is forced so a win does not freeze the board.
func (e *GameEngine) Simulation() *GameEngine {
	cfg := *e.config
	cfg.RecordHistory = false

	snap := e.Snapshot()
	sim := &GameEngine{
		config: &cfg,
		rng:    e.rng,
		now:    e.now,
		state: &GameState{
			Grid:        snap.Grid,
			Score:       snap.Score,
			TurnCount:   snap.TurnCount,
			Over:        snap.Over,
			Won:         snap.Won,
			KeepPlaying: true,
		},
	}
	return sim
}

// BulkMove applies moves in order, stopping once the game terminates
func (e *GameEngine) BulkMove(moves []Direction) []MoveResult {
	results := make([]MoveResult, 0, len(moves))

	for _, dir := range moves {
		if e.IsTerminated() {
			break
		}
		results = append(results, e.Move(dir))
	}

	return results
}
