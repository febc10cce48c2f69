package autoplay

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/tilemerge/game/ai"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// StopReason says why a run ended
type StopReason string

const (
	ReasonNone            StopReason = ""
	ReasonTargetReached   StopReason = "target_reached"
	ReasonGameOver        StopReason = "game_over"
	ReasonWon             StopReason = "won"
	ReasonBudgetExhausted StopReason = "budget_exhausted"
	ReasonCancelled       StopReason = "cancelled"
	ReasonStopped         StopReason = "stopped"
	ReasonSearchFailed    StopReason = "search_failed"
)

// Event describes what a single cycle did
type Event string

const (
	EventMoved     Event = "moved"
	EventRestored  Event = "restored"
	EventKeepGoing Event = "keep_going"
	EventStopped   Event = "stopped"
)

// Options bound a run
type Options struct {
	// TargetScore ends the run successfully once reached; 0 plays until the game ends
	TargetScore        int  `json:"target_score" yaml:"target_score"`
	MaxMoves           int  `json:"max_moves" yaml:"max_moves"`
	CheckpointInterval int  `json:"checkpoint_interval" yaml:"checkpoint_interval"`
	MaxCheckpoints     int  `json:"max_checkpoints" yaml:"max_checkpoints"`
	MaxRetries         int  `json:"max_retries" yaml:"max_retries"`
	RestoreOffset      int  `json:"restore_offset" yaml:"restore_offset"`
	ContinueAfterWin   bool `json:"continue_after_win" yaml:"continue_after_win"`
}

// DefaultOptions returns the standard run bounds with no target
func DefaultOptions() Options {
	return Options{
		MaxMoves:           80000,
		CheckpointInterval: 50,
		MaxCheckpoints:     10,
		MaxRetries:         3,
		RestoreOffset:      2,
		ContinueAfterWin:   true,
	}
}

// ApplyDefaults fills zero bounds from DefaultOptions. MaxRetries and
// RestoreOffset are left alone since zero is meaningful for both.
func (o *Options) ApplyDefaults() {
	d := DefaultOptions()
	if o.MaxMoves <= 0 {
		o.MaxMoves = d.MaxMoves
	}
	if o.CheckpointInterval <= 0 {
		o.CheckpointInterval = d.CheckpointInterval
	}
	if o.MaxCheckpoints <= 0 {
		o.MaxCheckpoints = d.MaxCheckpoints
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RestoreOffset < 0 {
		o.RestoreOffset = 0
	}
}

// Cycle reports one decision cycle
type Cycle struct {
	Event     Event            `json:"event"`
	Direction engine.Direction `json:"direction"`
	Mode      ai.Mode          `json:"mode,omitempty"`
	Moves     int              `json:"moves"`
	Score     int              `json:"score"`
	Retries   int              `json:"retries"`

	// Checkpointed is set when a checkpoint was taken before this cycle's move
	Checkpointed bool `json:"checkpointed,omitempty"`
}

// Result summarizes a finished run
type Result struct {
	FinalState *engine.GameState `json:"final_state"`
	MovesTaken int               `json:"moves_taken"`
	Succeeded  bool              `json:"succeeded"`
	Retries    int               `json:"retries"`
	Reason     StopReason        `json:"reason"`
	Score      int               `json:"score"`
	MaxTile    int               `json:"max_tile"`
}

// Runner drives an engine toward a target score one cycle at a time. It
// owns eng for the duration of the run.
type Runner struct {
	eng    *engine.GameEngine
	policy *ai.Policy
	opts   Options

	ring                *Ring
	moves               int
	retries             int
	lastCheckpointScore int
	done                bool
	reason              StopReason
}

// NewRunner prepares a run; nothing happens until Step or Run is called
func NewRunner(eng *engine.GameEngine, policy *ai.Policy, opts Options) *Runner {
	opts.ApplyDefaults()
	return &Runner{
		eng:                 eng,
		policy:              policy,
		opts:                opts,
		ring:                NewRing(opts.MaxCheckpoints),
		lastCheckpointScore: -1,
	}
}

// Options returns the effective run bounds
func (r *Runner) Options() Options {
	return r.opts
}

// Checkpoints returns the number of checkpoints currently held
func (r *Runner) Checkpoints() int {
	return r.ring.Len()
}

// Done reports whether the run has stopped
func (r *Runner) Done() bool {
	return r.done
}

func (r *Runner) stop(reason StopReason) (Cycle, bool) {
	r.done = true
	r.reason = reason
	return r.cycle(EventStopped, engine.NoDirection, ""), false
}

func (r *Runner) cycle(ev Event, dir engine.Direction, mode ai.Mode) Cycle {
	return Cycle{
		Event:     ev,
		Direction: dir,
		Mode:      mode,
		Moves:     r.moves,
		Score:     r.eng.GetScore(),
		Retries:   r.retries,
	}
}

// Step runs exactly one decision cycle. It returns false once the run has
// stopped; the engine state is consistent between calls.
func (r *Runner) Step(ctx context.Context) (Cycle, bool) {
	logger := zerolog.Ctx(ctx)
	if r.done {
		return r.cycle(EventStopped, engine.NoDirection, ""), false
	}

	if ctx.Err() != nil {
		return r.stop(ReasonCancelled)
	}

	state := r.eng.GetState()
	if r.opts.TargetScore > 0 && state.Score >= r.opts.TargetScore {
		logger.Debug().Int("score", state.Score).Int("moves", r.moves).Msg("target-reached")
		return r.stop(ReasonTargetReached)
	}

	if state.Won && !state.KeepPlaying {
		if !r.opts.ContinueAfterWin {
			return r.stop(ReasonWon)
		}
		r.eng.KeepGoing()
		logger.Debug().Int("score", state.Score).Msg("won-keep-going")
		return r.cycle(EventKeepGoing, engine.NoDirection, ""), true
	}

	if state.Over {
		return r.recover(ctx)
	}

	if r.moves >= r.opts.MaxMoves {
		logger.Debug().Int("moves", r.moves).Int("score", state.Score).Msg("budget-exhausted")
		return r.stop(ReasonBudgetExhausted)
	}

	checkpointed := false
	if r.moves%r.opts.CheckpointInterval == 0 && state.Score > r.lastCheckpointScore {
		checkpointed = true
		r.ring.Push(NewCheckpoint(r.eng, r.moves))
		r.lastCheckpointScore = state.Score
		logger.Debug().Int("moves", r.moves).Int("score", state.Score).
			Int("held", r.ring.Len()).Msg("checkpoint")
	}

	decision, err := r.policy.Decide(ctx, r.eng)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return r.stop(ReasonCancelled)
		}
		logger.Error().Err(err).Msg("decide")
		return r.stop(ReasonSearchFailed)
	}
	if decision.Direction == engine.NoDirection {
		return r.recover(ctx)
	}

	r.eng.Move(decision.Direction)
	r.moves++
	c := r.cycle(EventMoved, decision.Direction, decision.Mode)
	c.Checkpointed = checkpointed
	return c, true
}

// recover restores an earlier checkpoint when retries remain, otherwise
// ends the run as lost
func (r *Runner) recover(ctx context.Context) (Cycle, bool) {
	logger := zerolog.Ctx(ctx)
	if r.retries >= r.opts.MaxRetries {
		logger.Debug().Int("retries", r.retries).Msg("retries-exhausted")
		return r.stop(ReasonGameOver)
	}
	cp, ok := r.ring.Back(r.opts.RestoreOffset + r.retries)
	if !ok {
		logger.Debug().Msg("no-checkpoint")
		return r.stop(ReasonGameOver)
	}

	lost := r.eng.GetScore()
	cp.RestoreInto(r.eng)
	r.retries++
	r.lastCheckpointScore = cp.Score()
	logger.Info().Int("lost-score", lost).Int("restored-score", cp.Score()).
		Int("checkpoint-moves", cp.Moves).Int("retry", r.retries).Msg("restored-checkpoint")
	return r.cycle(EventRestored, engine.NoDirection, ""), true
}

// Result summarizes the run so far
func (r *Runner) Result() Result {
	state := r.eng.GetState()
	return Result{
		FinalState: state,
		MovesTaken: r.moves,
		Succeeded:  r.reason == ReasonTargetReached,
		Retries:    r.retries,
		Reason:     r.reason,
		Score:      state.Score,
		MaxTile:    state.Grid.MaxValue(),
	}
}

// Run steps until the run stops. onCycle, when non-nil, sees every cycle
// and can end the run early by returning false.
func (r *Runner) Run(ctx context.Context, onCycle func(Cycle) bool) Result {
	for {
		c, more := r.Step(ctx)
		if onCycle != nil && !onCycle(c) && more {
			r.stop(ReasonStopped)
			break
		}
		if !more {
			break
		}
	}
	return r.Result()
}
