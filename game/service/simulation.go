package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/tilemerge/game/autoplay"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// CheckpointEvent is the update sent when a simulation saves its progress
const CheckpointEvent = "checkpoint"

// simulation tracks one background autoplay run
type simulation struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status SimulationStatus
}

func (sim *simulation) snapshot() *SimulationStatus {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	st := sim.status
	return &st
}

func (sim *simulation) running() bool {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.status.Running
}

// stop cancels the run and waits for it to wind down
func (sim *simulation) stop() {
	sim.cancel()
	<-sim.done
}

func (sim *simulation) update(c autoplay.Cycle, maxTile int) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.status.Moves = c.Moves
	sim.status.Retries = c.Retries
	sim.status.Score = c.Score
	sim.status.MaxTile = maxTile
}

func (sim *simulation) finish(res autoplay.Result, final *engine.GameState, at time.Time) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.status.Running = false
	sim.status.Moves = res.MovesTaken
	sim.status.Retries = res.Retries
	sim.status.Score = res.Score
	sim.status.MaxTile = res.MaxTile
	sim.status.Succeeded = res.Succeeded
	sim.status.Reason = string(res.Reason)
	sim.status.FinishedAt = &at
	sim.status.GameState = final
}

func (s *gameServiceImpl) simulation(sessionID string) *simulation {
	s.simMu.Lock()
	defer s.simMu.Unlock()
	return s.simulations[sessionID]
}

func (s *gameServiceImpl) simulating(sessionID string) bool {
	sim := s.simulation(sessionID)
	return sim != nil && sim.running()
}

// simulationOptions merges request bounds over the session profile
func simulationOptions(sess *Session, opts SimulateOptions) autoplay.Options {
	o := autoplay.DefaultOptions()
	if sess.Profile.Autoplay != nil {
		o = *sess.Profile.Autoplay
	}

	o.TargetScore = opts.TargetScore
	if o.TargetScore == 0 {
		o.TargetScore = sess.Engine.GetScore() + DefaultSimulationGain
	}
	if opts.MaxMoves > 0 {
		o.MaxMoves = opts.MaxMoves
	}
	if opts.CheckpointInterval > 0 {
		o.CheckpointInterval = opts.CheckpointInterval
	}
	if opts.MaxRetries != nil {
		o.MaxRetries = *opts.MaxRetries
	}
	return o
}

// Simulate starts playing the session toward a target score in the background
func (s *gameServiceImpl) Simulate(ctx context.Context, sessionID string, opts SimulateOptions) (*SimulationStatus, error) {
	sim, err := s.startSimulation(ctx, sessionID, opts)
	if err != nil {
		return nil, err
	}
	return sim.snapshot(), nil
}

// SimulateSync plays toward a target score and returns once the run ends.
// Cancelling ctx stops the run.
func (s *gameServiceImpl) SimulateSync(ctx context.Context, sessionID string, opts SimulateOptions) (*SimulationStatus, error) {
	sim, err := s.startSimulation(ctx, sessionID, opts)
	if err != nil {
		return nil, err
	}

	select {
	case <-sim.done:
	case <-ctx.Done():
		sim.stop()
	}
	return sim.snapshot(), nil
}

func (s *gameServiceImpl) startSimulation(ctx context.Context, sessionID string, opts SimulateOptions) (*simulation, error) {
	if opts.TargetScore < 0 || opts.MaxMoves < 0 || opts.CheckpointInterval < 0 ||
		(opts.MaxRetries != nil && *opts.MaxRetries < 0) {
		return nil, fmt.Errorf("%w: simulation bounds must not be negative", ErrInvalidArgument)
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	s.simMu.Lock()
	defer s.simMu.Unlock()
	if prev := s.simulations[sess.ID]; prev != nil && prev.running() {
		return nil, ErrSimulationRunning
	}

	runOpts := simulationOptions(sess, opts)
	runner := autoplay.NewRunner(sess.Engine, policyFor(sess, 0), runOpts)

	l := logger(ctx).With().Str("session", sess.ID).Logger()
	// the run outlives the request that started it
	simCtx, cancel := context.WithCancel(l.WithContext(context.Background()))

	state := sess.Engine.GetState()
	sim := &simulation{
		cancel: cancel,
		done:   make(chan struct{}),
		status: SimulationStatus{
			SessionID:   sess.ID,
			Running:     true,
			TargetScore: runOpts.TargetScore,
			Score:       state.Score,
			MaxTile:     state.Grid.MaxValue(),
			StartedAt:   s.now(),
		},
	}
	s.simulations[sess.ID] = sim

	go s.runSimulation(simCtx, sess, runner, sim)
	return sim, nil
}

// runSimulation steps the runner, holding the session lock for one cycle
// at a time so readers see consistent states in between
func (s *gameServiceImpl) runSimulation(ctx context.Context, sess *Session, runner *autoplay.Runner, sim *simulation) {
	defer close(sim.done)
	defer sim.cancel()

	l := zerolog.Ctx(ctx)
	l.Info().Int("target", runner.Options().TargetScore).Msg("simulation started")

	for more := true; more; {
		var c autoplay.Cycle
		sess.Lock()
		c, more = runner.Step(ctx)
		switch {
		case c.Checkpointed:
			s.afterChange(ctx, sess, CheckpointEvent)
		case c.Event == autoplay.EventMoved, c.Event == autoplay.EventKeepGoing:
			sess.ObserveScore()
			s.notify(sess, string(c.Event))
		case c.Event == autoplay.EventRestored:
			s.afterChange(ctx, sess, string(c.Event))
		}
		sim.update(c, sess.Engine.GetState().Grid.MaxValue())
		sess.Unlock()
	}

	// finish even when the run was cancelled
	finalCtx := context.WithoutCancel(ctx)

	sess.Lock()
	res := runner.Result()
	s.afterChange(finalCtx, sess, "simulation_finished")
	if res.FinalState.Over {
		s.recordFinished(finalCtx, sess)
	}
	final := res.FinalState.Clone()
	sess.Unlock()

	sim.finish(res, final, s.now())
	l.Info().Str("reason", string(res.Reason)).Int("score", res.Score).
		Int("moves", res.MovesTaken).Int("retries", res.Retries).Msg("simulation finished")
}

// SimulationStatus reports the latest simulation of a session
func (s *gameServiceImpl) SimulationStatus(ctx context.Context, sessionID string) (*SimulationStatus, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sim := s.simulation(sess.ID)
	if sim == nil {
		return nil, ErrNoSimulation
	}
	return sim.snapshot(), nil
}

// StopSimulation cancels a running simulation and waits for it to finish
func (s *gameServiceImpl) StopSimulation(ctx context.Context, sessionID string) (*SimulationStatus, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sim := s.simulation(sess.ID)
	if sim == nil {
		return nil, ErrNoSimulation
	}

	sim.cancel()
	select {
	case <-sim.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return sim.snapshot(), nil
}
