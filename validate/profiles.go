package validate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// deepest search a profile may ask for before it is considered unplayable
const MaxSearchDepth = 6

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ValidateProfileFile loads a profile file and checks that its rules can be
// played and its search settings are bounded. Decoding already enforces the
// structural rules of the game section.
func ValidateProfileFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	p, err := config.Decode(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("%v", err)
		return result
	}

	g := p.Game
	// the largest tile a board can hold is 2^(cells+1)
	if cells := g.Size * g.Size; engine.Log2(g.WinValue) > cells+1 {
		result.fail("win_value %d cannot be reached on a %dx%d board", g.WinValue, g.Size, g.Size)
	}

	w := p.Weights
	for name, v := range map[string]float64{
		"empty_cells":     w.EmptyCells,
		"smoothness":      w.Smoothness,
		"monotonicity":    w.Monotonicity,
		"max_tile":        w.MaxTile,
		"corner":          w.Corner,
		"edge":            w.Edge,
		"merge_potential": w.MergePotential,
	} {
		if v < 0 {
			result.fail("weight %s must not be negative, got %g", name, v)
		}
	}

	depth := max(p.Policy.Depth, p.Policy.CriticalDepth, p.Policy.FixedDepth)
	if depth > MaxSearchDepth {
		result.fail("search depth %d exceeds %d", depth, MaxSearchDepth)
	}

	if result.Valid {
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Name: %s", p.Name),
			fmt.Sprintf("✓ Grid: %dx%d", g.Size, g.Size),
			fmt.Sprintf("✓ Win value: %d", g.WinValue),
			fmt.Sprintf("✓ Spawns: %d (%.0f%%) / %d", g.SpawnLowValue, g.SpawnLowProbability*100, g.SpawnHighValue),
			fmt.Sprintf("✓ Search depth: %d", depth),
		)
	}

	return result
}

// ValidateProfileDir validates every profile file in dir
func ValidateProfileDir(dir string) ([]ValidationResult, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("error finding config files: %w", err)
		}
		files = append(files, matches...)
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, ValidateProfileFile(file))
	}
	return results, nil
}
