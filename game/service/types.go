package service

import (
	"time"

	"github.com/wricardo/mcp-training/tilemerge/game/ai"
	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	BestScore      int               `json:"best_score"`
	Simulating     bool              `json:"simulating"`
	GameState      *engine.GameState `json:"game_state"`
	Profile        *config.Profile   `json:"profile"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Moved       bool              `json:"moved"`
	Direction   string            `json:"direction"`
	ScoreGained int               `json:"score_gained"`
	Merges      []int             `json:"merges,omitempty"`
	BestScore   int               `json:"best_score"`
	Terminated  bool              `json:"terminated"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "move", "merge", "won", "game_over", "restart", "keep_playing"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value,omitempty"`
}

// BestMoveOptions configures a move suggestion. Depth 0 lets the adaptive
// policy choose.
type BestMoveOptions struct {
	Depth int `json:"depth"`
}

// BestMoveResult is a suggested move
type BestMoveResult struct {
	Direction string  `json:"direction"`
	Score     float64 `json:"score"`
	Depth     int     `json:"depth"`
	Mode      string  `json:"mode"`
}

// EvaluateResult is the heuristic view of a board
type EvaluateResult struct {
	Breakdown     ai.Breakdown `json:"breakdown"`
	EmptyCells    int          `json:"empty_cells"`
	MaxTile       int          `json:"max_tile"`
	PossibleMoves []string     `json:"possible_moves"`
	Risk          string       `json:"risk"`
}

// SimulateOptions bounds an automated run. Zero values fall back to the
// session profile; a zero TargetScore means the current score plus 2048.
// MaxRetries is a pointer so an explicit 0 disables recovery while nil keeps
// the profile value.
type SimulateOptions struct {
	TargetScore        int  `json:"target_score"`
	MaxMoves           int  `json:"max_moves"`
	CheckpointInterval int  `json:"checkpoint_interval"`
	MaxRetries         *int `json:"max_retries,omitempty"`
}

// SimulationStatus reports a running or finished automated run
type SimulationStatus struct {
	SessionID   string            `json:"session_id"`
	Running     bool              `json:"running"`
	TargetScore int               `json:"target_score"`
	Moves       int               `json:"moves"`
	Retries     int               `json:"retries"`
	Score       int               `json:"score"`
	MaxTile     int               `json:"max_tile"`
	Succeeded   bool              `json:"succeeded"`
	Reason      string            `json:"reason,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
	GameState   *engine.GameState `json:"game_state,omitempty"`
}

// Update is what the presentation layer receives after an accepted move
type Update struct {
	SessionID  string              `json:"session_id"`
	Event      string              `json:"event"`
	Grid       engine.GridSnapshot `json:"grid"`
	Score      int                 `json:"score"`
	BestScore  int                 `json:"best_score"`
	Over       bool                `json:"over"`
	Won        bool                `json:"won"`
	Terminated bool                `json:"terminated"`
}
