// Command analyze plays headless games with the automated player and prints
// score statistics for a game profile.
//
//	analyze bench -games 50 -profile classic
//	analyze play -seed 7 -target 20000
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/tilemerge/game/config"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "benchmark the automated player on a game profile",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game profiles",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:  "profile",
				Value: config.DefaultName,
				Usage: "profile to play",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log every autoplay cycle",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := zerolog.WarnLevel
			if cmd.Bool("debug") {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
			log.Logger = logger
			return logger.WithContext(ctx), nil
		},
		Commands: []*cli.Command{
			benchCommand(),
			playCommand(),
		},
	}
}

// loadProfile resolves the -profile flag against -config-dir
func loadProfile(cmd *cli.Command) (*config.Profile, error) {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, err
	}
	return manager.LoadConfig(cmd.String("profile"))
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "play many seeded games and report score statistics",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Value: 20, Usage: "number of games"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "seed of the first game; game i uses seed+i"},
			&cli.IntFlag{Name: "depth", Usage: "fixed search depth (0 = adaptive)"},
			&cli.IntFlag{Name: "target", Usage: "stop each game at this score (0 = play until it ends)"},
			&cli.IntFlag{Name: "max-moves", Usage: "move budget per game (0 = profile default)"},
			&cli.IntFlag{Name: "parallel", Value: 4, Usage: "games played at once"},
			&cli.IntFlag{Name: "confidence", Value: 95, Usage: "confidence interval for the mean score, in percent"},
			&cli.IntFlag{Name: "bins", Value: 10, Usage: "histogram bins"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}

			opts := benchOptions{
				Games:      cmd.Int("games"),
				Seed:       uint64(cmd.Int("seed")),
				Depth:      cmd.Int("depth"),
				Target:     cmd.Int("target"),
				MaxMoves:   cmd.Int("max-moves"),
				Parallel:   cmd.Int("parallel"),
				Confidence: float64(cmd.Int("confidence")),
			}
			report, err := runBench(ctx, profile, opts)
			if err != nil {
				return err
			}
			return report.Print(cmd.Root().Writer, cmd.Int("bins"))
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play one seeded game and print the final board",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "game seed"},
			&cli.IntFlag{Name: "depth", Usage: "fixed search depth (0 = adaptive)"},
			&cli.IntFlag{Name: "target", Usage: "stop at this score (0 = play until the game ends)"},
			&cli.IntFlag{Name: "max-moves", Usage: "move budget (0 = profile default)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}

			res, err := playGame(ctx, profile, gameOptions{
				Seed:     uint64(cmd.Int("seed")),
				Depth:    cmd.Int("depth"),
				Target:   cmd.Int("target"),
				MaxMoves: cmd.Int("max-moves"),
			})
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			fmt.Fprintf(w, "%s\n", res.Final.Grid)
			fmt.Fprintf(w, "score %d, max tile %d, %d moves, %d retries (%s)\n",
				res.Score, res.MaxTile, res.Moves, res.Retries, res.Reason)
			return nil
		},
	}
}
