package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/wricardo/mcp-training/tilemerge/game/ai"
	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/scores"
	"github.com/wricardo/mcp-training/tilemerge/validate"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSimulationRunning = errors.New("simulation already running")
	ErrNoSimulation      = errors.New("no simulation for session")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// DefaultSimulationGain is added to the current score when a simulation
// request carries no target
const DefaultSimulationGain = 2048

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	scores   ScoreStore
	notifier Notifier
	now      func() time.Time

	simMu       sync.Mutex
	simulations map[string]*simulation
}

// Option configures optional collaborators of the service
type Option func(*gameServiceImpl)

// WithScoreStore records finished games and seeds best scores from store
func WithScoreStore(store ScoreStore) Option {
	return func(s *gameServiceImpl) { s.scores = store }
}

// WithNotifier sends presentation updates to n
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) { s.notifier = n }
}

// WithClock replaces the time source used when validating finished games
func WithClock(now func() time.Time) Option {
	return func(s *gameServiceImpl) { s.now = now }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:    sessions,
		configs:     configs,
		now:         time.Now,
		simulations: make(map[string]*simulation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a profile display name
func (s *gameServiceImpl) getConfigID(profileName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == profileName {
				return cfg.ConfigID
			}
		}
	}
	if profileName == "" {
		return config.DefaultName
	}
	return profileName
}

// getSession looks a session up and marks it accessed
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sess.ID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	sess.Lock()
	defer sess.Unlock()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		BestScore:      sess.BestScore,
		Simulating:     s.simulating(sess.ID),
		GameState:      sess.Engine.GetState().Clone(),
		Profile:        sess.Profile,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var (
		profile  *config.Profile
		configID string
		err      error
	)
	if configName != "" {
		profile, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				if available, listErr := s.configs.ListConfigs(); listErr == nil && len(available) > 0 {
					ids := lo.Map(available, func(c *config.ConfigInfo, _ int) string { return c.ConfigID })
					return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, ids, err)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
		configID = strings.TrimSuffix(configName, filepath.Ext(configName))
	} else {
		profile = s.configs.GetDefault()
		configID = s.getConfigID(profile.Name)
	}

	sess, err := s.sessions.Create("", configID, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.scores != nil {
		best, err := s.scores.Best(ctx, configID)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to read best score")
		}
		sess.Lock()
		sess.BestScore = max(sess.BestScore, best)
		sess.Unlock()
	}

	zerolog.Ctx(ctx).Info().Str("session", sess.ID).Str("config", configID).Msg("session created")
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	return lo.Map(sessions, func(sess *Session, _ int) *SessionInfo {
		return s.sessionInfo(sess)
	}), nil
}

// DeleteSession stops any simulation and removes the session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if sess, err := s.sessions.Get(sessionID); err == nil {
		if sim := s.simulation(sess.ID); sim != nil {
			sim.stop()
		}
		s.simMu.Lock()
		delete(s.simulations, sess.ID)
		s.simMu.Unlock()
	}
	return s.sessions.Delete(sessionID)
}

// Move applies one player move
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if s.simulating(sess.ID) {
		return nil, ErrSimulationRunning
	}

	state := sess.Engine.GetState()
	wasWon, wasOver := state.Won, state.Over
	res := sess.Engine.Move(dir)
	state = sess.Engine.GetState()

	events := moveEvents(res, wasWon, wasOver, state, s.now())
	changed := res.Moved || state.Over != wasOver
	if changed {
		s.afterChange(ctx, sess, "move")
		if state.Over && !wasOver {
			s.recordFinished(ctx, sess)
		}
	}

	result := &MoveResult{
		Moved:       res.Moved,
		Direction:   dir.String(),
		ScoreGained: res.ScoreGained,
		Merges:      res.Merges,
		BestScore:   sess.BestScore,
		Terminated:  state.Terminated(),
		GameState:   state.Clone(),
		Events:      events,
	}
	switch {
	case res.Moved:
		result.Message = fmt.Sprintf("Moved %s", dir)
	case state.Terminated():
		result.Message = "Game is over"
	default:
		result.Message = fmt.Sprintf("Nothing moves %s", dir)
	}
	return result, nil
}

// moveEvents describes what a move did
func moveEvents(res engine.MoveResult, wasWon, wasOver bool, state *engine.GameState, now time.Time) []GameEvent {
	var events []GameEvent
	if res.Moved {
		events = append(events, GameEvent{Type: "move", Message: "Moved " + res.Direction.String(), Timestamp: now})
	}
	for _, v := range res.Merges {
		events = append(events, GameEvent{Type: "merge", Message: fmt.Sprintf("Merged into %d", v), Timestamp: now, Value: v})
	}
	if state.Won && !wasWon {
		events = append(events, GameEvent{Type: "won", Message: "You win!", Timestamp: now, Value: state.Grid.MaxValue()})
	}
	if state.Over && !wasOver {
		events = append(events, GameEvent{Type: "game_over", Message: "Game over!", Timestamp: now, Value: state.Score})
	}
	return events
}

// afterChange runs after every accepted change to a session's game: it
// tracks the best score, saves (or clears) the game and notifies the
// presentation layer. The caller holds the session lock.
func (s *gameServiceImpl) afterChange(ctx context.Context, sess *Session, event string) {
	sess.ObserveScore()

	if err := s.sessions.Save(sess.ID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session", sess.ID).Msg("failed to persist session")
	}

	s.notify(sess, event)
}

func (s *gameServiceImpl) notify(sess *Session, event string) {
	if s.notifier == nil {
		return
	}
	state := sess.Engine.GetState()
	s.notifier.Notify(Update{
		SessionID:  sess.ID,
		Event:      event,
		Grid:       state.Grid.Serialize(),
		Score:      state.Score,
		BestScore:  sess.BestScore,
		Over:       state.Over,
		Won:        state.Won,
		Terminated: state.Terminated(),
	})
}

// recordFinished stores a finished game with its validation verdict. The
// caller holds the session lock.
func (s *gameServiceImpl) recordFinished(ctx context.Context, sess *Session) {
	if s.scores == nil {
		return
	}
	state := sess.Engine.GetState()
	entry := scores.Entry{
		SessionID: sess.ID,
		ConfigID:  sess.ConfigID,
		Score:     state.Score,
		MaxTile:   state.Grid.MaxValue(),
		Turns:     state.TurnCount,
		Valid:     true,
	}
	if err := validate.ValidateGameData(state, s.now()); err != nil {
		entry.Valid = false
		entry.Reason = err.Error()
	}

	if _, err := s.scores.Record(ctx, entry); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session", sess.ID).Msg("failed to record score")
		return
	}
	zerolog.Ctx(ctx).Info().Str("session", sess.ID).Int("score", entry.Score).
		Bool("valid", entry.Valid).Msg("game recorded")
}

// Restart discards the current game and starts a new one
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if s.simulating(sess.ID) {
		return nil, ErrSimulationRunning
	}

	sess.Engine.Restart()
	s.afterChange(ctx, sess, "restart")
	return sess.Engine.GetState().Clone(), nil
}

// KeepPlaying lets a won game continue
func (s *gameServiceImpl) KeepPlaying(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if s.simulating(sess.ID) {
		return nil, ErrSimulationRunning
	}

	sess.Engine.KeepGoing()
	s.afterChange(ctx, sess, "keep_playing")
	return sess.Engine.GetState().Clone(), nil
}

// policyFor builds a move policy from the session's profile. A positive
// depth pins the search depth.
func policyFor(sess *Session, depth int) *ai.Policy {
	cfg := sess.Profile.Policy
	if depth > 0 {
		cfg.FixedDepth = depth
	}
	return ai.NewPolicy(cfg, ai.NewEvaluator(sess.Profile.Weights), engine.NewCryptoSource())
}

// BestMove suggests a direction without changing the game
func (s *gameServiceImpl) BestMove(ctx context.Context, sessionID string, opts BestMoveOptions) (*BestMoveResult, error) {
	if opts.Depth < 0 || opts.Depth > validate.MaxSearchDepth {
		return nil, fmt.Errorf("%w: depth must be between 0 and %d, got %d", ErrInvalidArgument, validate.MaxSearchDepth, opts.Depth)
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	d, err := policyFor(sess, opts.Depth).Decide(ctx, sess.Engine)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return &BestMoveResult{
		Direction: d.Direction.String(),
		Score:     d.Score,
		Depth:     d.Depth,
		Mode:      string(d.Mode),
	}, nil
}

// Evaluate scores the current board with the session's heuristics
func (s *gameServiceImpl) Evaluate(ctx context.Context, sessionID string) (*EvaluateResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	grid := sess.Engine.GetState().Grid
	return &EvaluateResult{
		Breakdown:  ai.NewEvaluator(sess.Profile.Weights).Breakdown(grid),
		EmptyCells: grid.EmptyCount(),
		MaxTile:    grid.MaxValue(),
		PossibleMoves: lo.Map(sess.Engine.GetPossibleMoves(), func(d engine.Direction, _ int) string {
			return d.String()
		}),
		Risk: engine.AnalyzeBoardRisk(grid),
	}, nil
}

// GetGameState returns a copy of the session's game
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return sess.Engine.GetState().Clone(), nil
}

// ListConfigs returns the available profiles
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*config.ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// TopScores returns the best recorded games
func (s *gameServiceImpl) TopScores(ctx context.Context, limit int) ([]scores.Entry, error) {
	if s.scores == nil {
		return []scores.Entry{}, nil
	}
	return s.scores.Top(ctx, limit)
}

// logger returns the logger carried by ctx, or the global one
func logger(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return log.Logger
}
