// Command validate checks the game profiles in a configs directory and exits
// non-zero when any of them cannot be played.
//
//	validate --dir configs
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/tilemerge/validate"
)

var errInvalidProfiles = errors.New("some configurations have errors")

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check that every game profile in a directory can be played",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "configs",
				Usage:   "directory containing profile files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return report(cmd.Root().Writer, cmd.String("dir"))
		},
	}
}

// report prints the result for every profile in dir
func report(w io.Writer, dir string) error {
	results, err := validate.ValidateProfileDir(dir)
	if err != nil {
		return fmt.Errorf("finding config files: %w", err)
	}

	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		fmt.Fprintln(w, "❌ INVALID")
		allValid = false
		for _, e := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+e)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return errInvalidProfiles
	}
	fmt.Fprintln(w, "✅ All configurations are valid!")
	return nil
}
