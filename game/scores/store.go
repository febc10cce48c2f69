package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Entry is one finished game
type Entry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	ConfigID  string    `json:"config_id"`
	Score     int       `json:"score"`
	MaxTile   int       `json:"max_tile"`
	Turns     int       `json:"turns"`
	Valid     bool      `json:"valid"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SQLiteStore keeps finished games in a SQLite database
type SQLiteStore struct {
	db       *sql.DB
	attempts uint
}

// Open opens (and creates if needed) the database at path and runs migrations.
// Use ":memory:" for a throwaway store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, attempts: 5}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates the schema
func (s *SQLiteStore) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			config_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			max_tile INTEGER NOT NULL,
			turns INTEGER NOT NULL,
			valid INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_score ON scores(valid, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_config ON scores(config_id, valid, score DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// isBusy reports whether err is SQLite lock contention worth retrying
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// withRetry runs fn, retrying with backoff while the database is busy
func (s *SQLiteStore) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Uint("n", n).Msg("score store busy, retrying")
		}),
	)
}

// Record stores a finished game, assigning ID and CreatedAt when unset
func (s *SQLiteStore) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO scores (
		id, session_id, config_id, score, max_tile, turns, valid, reason, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err := s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			e.ID, e.SessionID, e.ConfigID, e.Score, e.MaxTile, e.Turns,
			e.Valid, e.Reason, e.CreatedAt)
		return err
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record score: %w", err)
	}
	return e, nil
}

// Best returns the highest valid score for configID, or across all
// profiles when configID is empty. No games yields 0.
func (s *SQLiteStore) Best(ctx context.Context, configID string) (int, error) {
	query := `SELECT COALESCE(MAX(score), 0) FROM scores WHERE valid = 1`
	args := []any{}
	if configID != "" {
		query += ` AND config_id = ?`
		args = append(args, configID)
	}

	var best int
	err := s.withRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx, query, args...).Scan(&best)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read best score: %w", err)
	}
	return best, nil
}

// Top returns up to limit valid entries, highest score first
func (s *SQLiteStore) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, session_id, config_id, score, max_tile, turns, valid, reason, created_at
		FROM scores WHERE valid = 1 ORDER BY score DESC, created_at ASC LIMIT ?`

	var entries []Entry
	err := s.withRetry(ctx, func() error {
		entries = entries[:0]
		rows, err := s.db.QueryContext(ctx, query, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e Entry
			if err := rows.Scan(&e.ID, &e.SessionID, &e.ConfigID, &e.Score, &e.MaxTile,
				&e.Turns, &e.Valid, &e.Reason, &e.CreatedAt); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list top scores: %w", err)
	}
	return entries, nil
}

// ErrNotFound is returned by Get for unknown IDs
var ErrNotFound = errors.New("score entry not found")

// Get returns one entry, valid or not
func (s *SQLiteStore) Get(ctx context.Context, id string) (Entry, error) {
	query := `SELECT id, session_id, config_id, score, max_tile, turns, valid, reason, created_at
		FROM scores WHERE id = ?`

	var e Entry
	err := s.withRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.SessionID, &e.ConfigID,
			&e.Score, &e.MaxTile, &e.Turns, &e.Valid, &e.Reason, &e.CreatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read score: %w", err)
	}
	return e, nil
}
