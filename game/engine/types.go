package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Direction is one of the four move directions
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left

	// NoDirection is returned by move pickers when no direction changes the board
	NoDirection Direction = -1
)

const (
	// Validation constants
	MinGridSize       = 2
	MaxGridSize       = 16
	DefaultGridSize   = 4
	DefaultWinValue   = 2048
	DefaultStartTiles = 2
	DefaultLowValue   = 2
	DefaultHighValue  = 4
	DefaultLowChance  = 0.9
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidState     = errors.New("invalid game state")
)

// Directions lists every direction in enumeration order
var Directions = [4]Direction{Up, Right, Down, Left}

var directionNames = map[Direction]string{
	Up:    "up",
	Right: "right",
	Down:  "down",
	Left:  "left",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	if d == NoDirection {
		return "none"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Valid reports whether d is one of the four move directions
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

// Vector returns the unit step for the direction
func (d Direction) Vector() Position {
	switch d {
	case Up:
		return Position{X: 0, Y: -1}
	case Right:
		return Position{X: 1, Y: 0}
	case Down:
		return Position{X: 0, Y: 1}
	case Left:
		return Position{X: -1, Y: 0}
	}
	return Position{}
}

// ParseDirection converts user input ("up", "Left", "2") into a Direction
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range directionNames {
		if s == name {
			return d, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Direction(n).Valid() {
		return Direction(n), nil
	}
	return NoDirection, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Position represents x,y coordinates (column, row)
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position one step along v
func (p Position) Add(v Position) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y}
}

// Tile is a numbered piece on the grid
type Tile struct {
	Value int `json:"value"`
	Position

	previous   *Position
	mergedFrom [2]*Tile
}

// NewTile creates a tile at pos with the given value
func NewTile(pos Position, value int) *Tile {
	return &Tile{Value: value, Position: pos}
}

// MergedFrom returns the two tiles this tile was created from during the
// current move, or nils if it was not created by a merge
func (t *Tile) MergedFrom() (*Tile, *Tile) {
	return t.mergedFrom[0], t.mergedFrom[1]
}

// Merged reports whether the tile was created by a merge during the current move
func (t *Tile) Merged() bool {
	return t.mergedFrom[0] != nil
}

func (t *Tile) savePosition() {
	p := t.Position
	t.previous = &p
	t.mergedFrom = [2]*Tile{}
}

func (t *Tile) updatePosition(pos Position) {
	t.Position = pos
}

// GameState is the full state of one game
type GameState struct {
	Grid        *Grid
	Score       int
	TurnCount   int
	Over        bool
	Won         bool
	KeepPlaying bool

	// Instrumentation for validation and analytics; the engine never reads it
	GameStart   time.Time
	Grids       []GridSnapshot
	TimeStamps  []time.Time
	ScoreStamps []int
}

// Terminated reports whether the game is lost, or won without electing to keep playing
func (gs *GameState) Terminated() bool {
	return gs.Over || (gs.Won && !gs.KeepPlaying)
}

// MoveResult describes the outcome of a single move
type MoveResult struct {
	Moved       bool      `json:"moved"`
	Direction   Direction `json:"direction"`
	ScoreGained int       `json:"score_gained"`
	Merges      []int     `json:"merges,omitempty"`
	Spawned     *Tile     `json:"spawned,omitempty"`
}
