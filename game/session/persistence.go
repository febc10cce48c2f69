package session

import (
	"encoding/json"
	"time"

	"github.com/wricardo/mcp-training/tilemerge/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage. A finished game is stored without
	// its state so the next load starts fresh.
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID. A missing or malformed
	// game state yields a fresh game, not an error.
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions
type PersistedSessionData struct {
	ID             string          `json:"id"`
	ConfigName     string          `json:"config_name"`
	BestScore      int             `json:"best_score"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	GameState      json.RawMessage `json:"game_state,omitempty"`
}
