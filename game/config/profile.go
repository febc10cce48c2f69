package config

import (
	"fmt"

	"github.com/wricardo/mcp-training/tilemerge/game/ai"
	"github.com/wricardo/mcp-training/tilemerge/game/autoplay"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// Profile bundles everything needed to play a game: the rules, the
// evaluator weights, the move policy and the autoplay bounds
type Profile struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Game        engine.GameConfig `json:"game" yaml:"game"`
	Weights     ai.Weights        `json:"weights" yaml:"weights"`
	Policy      ai.PolicyConfig   `json:"policy" yaml:"policy"`
	Autoplay    *autoplay.Options `json:"autoplay,omitempty" yaml:"autoplay,omitempty"`
}

// ConfigInfo describes a profile for listings
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	GridSize    int    `json:"grid_size"`
	WinValue    int    `json:"win_value"`
}

// ApplyDefaults fills every unset field with the classic values
func (p *Profile) ApplyDefaults() {
	p.Game.ApplyDefaults()
	if p.Weights.IsZero() {
		p.Weights = ai.DefaultWeights()
	}
	p.Policy.ApplyDefaults()
	if p.Autoplay == nil {
		opts := autoplay.DefaultOptions()
		p.Autoplay = &opts
	}
	p.Autoplay.ApplyDefaults()
}

// Validate checks a defaulted profile for playability
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if err := engine.ValidateGameConfig(&p.Game); err != nil {
		return err
	}
	if p.Policy.Depth < 1 || p.Policy.CriticalDepth < 1 {
		return fmt.Errorf("config validation: policy depths must be positive, got %d and %d",
			p.Policy.Depth, p.Policy.CriticalDepth)
	}
	if p.Policy.FixedDepth < 0 {
		return fmt.Errorf("config validation: fixed_depth must not be negative, got %d", p.Policy.FixedDepth)
	}
	return nil
}

// Info summarizes the profile for listings
func (p *Profile) Info(filename, id string) *ConfigInfo {
	return &ConfigInfo{
		Filename:    filename,
		ConfigID:    id,
		Name:        p.Name,
		Description: p.Description,
		GridSize:    p.Game.Size,
		WinValue:    p.Game.WinValue,
	}
}

// Classic returns the built-in 4x4 profile used when no files are available
func Classic() *Profile {
	p := &Profile{
		Name:        "classic",
		Description: "Classic 4x4 board, 2048 to win",
		Game:        *engine.DefaultGameConfig(),
	}
	p.ApplyDefaults()
	return p
}
