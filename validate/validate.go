// Package validate checks finished games and score submissions for
// integrity, and profile files for playability. The game checks replay the
// instrumentation a GameEngine records:
//   - Start time is not in the future and not older than a day
//   - The first move came within an hour of the start
//   - Every merge value is a power of two and they sum to the score
//   - No more than 50 identical merges in a row
//   - One recorded grid per turn and one timestamp per turn plus the start
//   - The biggest merged tile appears on the board as often as it was made
//   - Short games cannot carry very high scores
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrInvalidGame       = errors.New("invalid game data")
)

const (
	MaxNameLength        = 20
	MaxScore             = 4000000
	MaxGameAge           = 24 * time.Hour
	MaxFirstMoveDelay    = 60 * time.Minute
	MaxConsecutiveMerges = 50
	MinDurationForHigh   = 10 * time.Minute
	HighScoreThreshold   = 50000
)

var nameFilter = regexp.MustCompile(`[^\w\s-]`)

// ValidateSubmission checks a leaderboard name and score and returns the
// sanitized name
func ValidateSubmission(name string, score int) (string, error) {
	if len(name) < 1 {
		return "", fmt.Errorf("%w: name is required", ErrInvalidSubmission)
	}
	if len(name) > MaxNameLength {
		return "", fmt.Errorf("%w: name too long (max %d characters)", ErrInvalidSubmission, MaxNameLength)
	}

	sanitized := strings.TrimSpace(nameFilter.ReplaceAllString(name, ""))
	if sanitized == "" {
		return "", fmt.Errorf("%w: invalid name characters", ErrInvalidSubmission)
	}

	if score <= 0 {
		return "", fmt.Errorf("%w: invalid score", ErrInvalidSubmission)
	}
	if score%4 != 0 {
		return "", fmt.Errorf("%w: score %d is not reachable by merging", ErrInvalidSubmission, score)
	}
	if score > MaxScore {
		return "", fmt.Errorf("%w: score too high", ErrInvalidSubmission)
	}

	return sanitized, nil
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// longestRun returns the length of the longest run of equal adjacent values
func longestRun(values []int) int {
	if len(values) == 0 {
		return 0
	}
	longest, current := 1, 1
	for i := 1; i < len(values); i++ {
		if values[i] == values[i-1] {
			current++
			longest = max(longest, current)
		} else {
			current = 1
		}
	}
	return longest
}

// biggestMerge returns the largest merged value and how many times it was made
func biggestMerge(stamps []int) (value, count int) {
	value, count = 2, 1
	for _, s := range stamps {
		switch {
		case s > value:
			value, count = s, 1
		case s == value:
			count++
		}
	}
	return value, count
}

// ValidateGameData checks a game's recorded instrumentation against its
// final state as of now
func ValidateGameData(state *engine.GameState, now time.Time) error {
	if state == nil || state.Grid == nil {
		return fmt.Errorf("%w: missing game state", ErrInvalidGame)
	}

	start := state.GameStart
	if start.After(now) || now.Sub(start) > MaxGameAge {
		return fmt.Errorf("%w: invalid game start time", ErrInvalidGame)
	}

	if len(state.TimeStamps) > 1 && state.TimeStamps[1].Sub(start) > MaxFirstMoveDelay {
		return fmt.Errorf("%w: suspicious delay before first move", ErrInvalidGame)
	}

	stamps := state.ScoreStamps
	if len(stamps) == 0 {
		return fmt.Errorf("%w: missing score data", ErrInvalidGame)
	}
	if !lo.EveryBy(stamps, isPowerOfTwo) {
		return fmt.Errorf("%w: invalid merge detected", ErrInvalidGame)
	}
	if sum := lo.Sum(stamps); sum != state.Score {
		return fmt.Errorf("%w: merges sum to %d but score is %d", ErrInvalidGame, sum, state.Score)
	}
	if longestRun(stamps) > MaxConsecutiveMerges {
		return fmt.Errorf("%w: impossible merge pattern", ErrInvalidGame)
	}

	if len(state.Grids) != state.TurnCount {
		return fmt.Errorf("%w: %d grids recorded for %d turns", ErrInvalidGame, len(state.Grids), state.TurnCount)
	}

	biggest, expected := biggestMerge(stamps)
	if actual := engine.CountValue(state.Grid, biggest); actual != expected {
		return fmt.Errorf("%w: board holds %d tiles of %d, merges made %d", ErrInvalidGame, actual, biggest, expected)
	}

	if len(state.TimeStamps)-1 != state.TurnCount {
		return fmt.Errorf("%w: timestamp mismatch", ErrInvalidGame)
	}

	if now.Sub(start) < MinDurationForHigh && state.Score > HighScoreThreshold {
		return fmt.Errorf("%w: score too high for game duration", ErrInvalidGame)
	}

	return nil
}
