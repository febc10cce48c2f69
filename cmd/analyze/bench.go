package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wricardo/mcp-training/tilemerge/game/ai"
	"github.com/wricardo/mcp-training/tilemerge/game/autoplay"
	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// searchSeedMask separates the search RNG stream from the tile spawn stream
const searchSeedMask = 0x9e3779b97f4a7c15

type gameOptions struct {
	Seed     uint64
	Depth    int
	Target   int
	MaxMoves int
}

type gameResult struct {
	Seed    uint64
	Score   int
	MaxTile int
	Moves   int
	Retries int
	Reason  autoplay.StopReason
	Final   *engine.GameState
}

// playGame runs one seeded game with the automated player. The same seed
// always produces the same game.
func playGame(ctx context.Context, profile *config.Profile, opts gameOptions) (gameResult, error) {
	eng, err := engine.NewEngine(&profile.Game, engine.NewSeededSource(opts.Seed))
	if err != nil {
		return gameResult{}, err
	}

	policyCfg := profile.Policy
	if opts.Depth > 0 {
		policyCfg.FixedDepth = opts.Depth
	}
	policy := ai.NewPolicy(policyCfg, ai.NewEvaluator(profile.Weights),
		engine.NewSeededSource(opts.Seed^searchSeedMask))

	runOpts := autoplay.DefaultOptions()
	if profile.Autoplay != nil {
		runOpts = *profile.Autoplay
	}
	runOpts.TargetScore = opts.Target
	if opts.MaxMoves > 0 {
		runOpts.MaxMoves = opts.MaxMoves
	}

	logger := zerolog.Ctx(ctx).With().Uint64("seed", opts.Seed).Logger()
	res := autoplay.NewRunner(eng, policy, runOpts).Run(logger.WithContext(ctx), nil)

	switch res.Reason {
	case autoplay.ReasonCancelled:
		return gameResult{}, ctx.Err()
	case autoplay.ReasonSearchFailed:
		return gameResult{}, fmt.Errorf("game %d: search failed after %d moves", opts.Seed, res.MovesTaken)
	}

	return gameResult{
		Seed:    opts.Seed,
		Score:   res.Score,
		MaxTile: res.MaxTile,
		Moves:   res.MovesTaken,
		Retries: res.Retries,
		Reason:  res.Reason,
		Final:   res.FinalState,
	}, nil
}

type benchOptions struct {
	Games      int
	Seed       uint64
	Depth      int
	Target     int
	MaxMoves   int
	Parallel   int
	Confidence float64
}

type benchReport struct {
	Profile    string
	WinValue   int
	Confidence float64
	Games      []gameResult
}

// runBench plays opts.Games games, game i seeded with opts.Seed+i
func runBench(ctx context.Context, profile *config.Profile, opts benchOptions) (*benchReport, error) {
	if opts.Games <= 0 {
		return nil, errors.New("games must be positive")
	}
	if opts.Confidence <= 0 || opts.Confidence >= 100 {
		return nil, fmt.Errorf("confidence must be between 0 and 100, got %g", opts.Confidence)
	}

	results := make([]gameResult, opts.Games)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Parallel, 1))
	for i := range opts.Games {
		g.Go(func() error {
			res, err := playGame(gctx, profile, gameOptions{
				Seed:     opts.Seed + uint64(i),
				Depth:    opts.Depth,
				Target:   opts.Target,
				MaxMoves: opts.MaxMoves,
			})
			if err != nil {
				return err
			}
			results[i] = res
			zerolog.Ctx(ctx).Info().Uint64("seed", res.Seed).Int("score", res.Score).
				Int("max_tile", res.MaxTile).Str("reason", string(res.Reason)).Msg("game finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &benchReport{
		Profile:    profile.Name,
		WinValue:   profile.Game.WinValue,
		Confidence: opts.Confidence,
		Games:      results,
	}, nil
}

func (r *benchReport) scores() []float64 {
	return lo.Map(r.Games, func(g gameResult, _ int) float64 { return float64(g.Score) })
}

// zVal returns the two-tailed z value for a confidence level in percent
func zVal(confidence float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	return dist.Quantile((1 + confidence/100) / 2)
}

// MeanScore returns the mean score and the half width of its confidence
// interval
func (r *benchReport) MeanScore() (mean, halfWidth float64) {
	scores := r.scores()
	mean, std := stat.MeanStdDev(scores, nil)
	if len(scores) < 2 {
		return mean, 0
	}
	return mean, zVal(r.Confidence) * std / math.Sqrt(float64(len(scores)))
}

// MedianScore returns the empirical median
func (r *benchReport) MedianScore() float64 {
	scores := r.scores()
	slices.Sort(scores)
	return stat.Quantile(0.5, stat.Empirical, scores, nil)
}

// WinRate is the share of games whose largest tile reached the win value
func (r *benchReport) WinRate() float64 {
	wins := lo.CountBy(r.Games, func(g gameResult) bool { return g.MaxTile >= r.WinValue })
	return float64(wins) / float64(len(r.Games))
}

// MaxTileCounts counts games by their largest tile
func (r *benchReport) MaxTileCounts() map[int]int {
	return lo.CountValuesBy(r.Games, func(g gameResult) int { return g.MaxTile })
}

// Print writes the summary followed by a score histogram
func (r *benchReport) Print(w io.Writer, bins int) error {
	mean, half := r.MeanScore()
	_, std := stat.MeanStdDev(r.scores(), nil)
	if len(r.Games) < 2 {
		std = 0
	}

	fmt.Fprintf(w, "profile %s, %d games\n", r.Profile, len(r.Games))
	fmt.Fprintf(w, "mean score   %.1f ± %.1f (%g%% confidence)\n", mean, half, r.Confidence)
	fmt.Fprintf(w, "median score %.1f\n", r.MedianScore())
	fmt.Fprintf(w, "stddev       %.1f\n", std)
	fmt.Fprintf(w, "win rate     %.1f%% (tile %d)\n", 100*r.WinRate(), r.WinValue)

	counts := r.MaxTileCounts()
	tiles := lo.Keys(counts)
	slices.Sort(tiles)
	fmt.Fprintln(w, "max tiles:")
	for _, tile := range tiles {
		fmt.Fprintf(w, "  %6d  %d\n", tile, counts[tile])
	}

	scores := r.scores()
	if lo.Min(scores) == lo.Max(scores) {
		return nil
	}
	fmt.Fprintln(w, "scores:")
	return histogram.Fprint(w, histogram.Hist(max(bins, 1), scores), histogram.Linear(40))
}
