package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/scores"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameState, error)
	KeepPlaying(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Automated Play
	BestMove(ctx context.Context, sessionID string, opts BestMoveOptions) (*BestMoveResult, error)
	Evaluate(ctx context.Context, sessionID string) (*EvaluateResult, error)
	Simulate(ctx context.Context, sessionID string, opts SimulateOptions) (*SimulationStatus, error)
	SimulateSync(ctx context.Context, sessionID string, opts SimulateOptions) (*SimulationStatus, error)
	SimulationStatus(ctx context.Context, sessionID string) (*SimulationStatus, error)
	StopSimulation(ctx context.Context, sessionID string) (*SimulationStatus, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Configuration and Scores
	ListConfigs(ctx context.Context) ([]*config.ConfigInfo, error)
	TopScores(ctx context.Context, limit int) ([]scores.Entry, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, profile *config.Profile) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	// Save persists the session; the caller holds the session lock
	Save(id string) error
}

// ConfigManager handles profile loading
type ConfigManager interface {
	LoadConfig(name string) (*config.Profile, error)
	ListConfigs() ([]*config.ConfigInfo, error)
	GetDefault() *config.Profile
}

// ScoreStore records finished games
type ScoreStore interface {
	Record(ctx context.Context, e scores.Entry) (scores.Entry, error)
	Best(ctx context.Context, configID string) (int, error)
	Top(ctx context.Context, limit int) ([]scores.Entry, error)
}

// Notifier receives a presentation update after every accepted move.
// Implementations must not block.
type Notifier interface {
	Notify(update Update)
}

// Session represents an active game session. Engine is not safe for
// concurrent use; hold the session lock while touching it.
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Profile        *config.Profile
	BestScore      int
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu sync.Mutex
}

// Lock serializes access to the session's engine
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock
func (s *Session) Unlock() { s.mu.Unlock() }

// ObserveScore raises BestScore to the current score if it is higher
func (s *Session) ObserveScore() {
	if score := s.Engine.GetScore(); score > s.BestScore {
		s.BestScore = score
	}
}
