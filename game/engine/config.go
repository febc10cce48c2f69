package engine

import (
	"fmt"
)

// GameConfig holds the rules parameters for a game
type GameConfig struct {
	Size                int     `json:"size" yaml:"size"`
	WinValue            int     `json:"win_value" yaml:"win_value"`
	StartTiles          int     `json:"start_tiles" yaml:"start_tiles"`
	SpawnLowValue       int     `json:"spawn_low_value" yaml:"spawn_low_value"`
	SpawnHighValue      int     `json:"spawn_high_value" yaml:"spawn_high_value"`
	SpawnLowProbability float64 `json:"spawn_low_probability" yaml:"spawn_low_probability"`
	RecordHistory       bool    `json:"record_history" yaml:"record_history"`
}

// DefaultGameConfig returns the classic 4x4 rules
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Size:                DefaultGridSize,
		WinValue:            DefaultWinValue,
		StartTiles:          DefaultStartTiles,
		SpawnLowValue:       DefaultLowValue,
		SpawnHighValue:      DefaultHighValue,
		SpawnLowProbability: DefaultLowChance,
		RecordHistory:       true,
	}
}

// ApplyDefaults fills zero-valued fields with the classic rules
func (c *GameConfig) ApplyDefaults() {
	d := DefaultGameConfig()
	if c.Size == 0 {
		c.Size = d.Size
	}
	if c.WinValue == 0 {
		c.WinValue = d.WinValue
	}
	if c.StartTiles == 0 {
		c.StartTiles = d.StartTiles
	}
	if c.SpawnLowValue == 0 {
		c.SpawnLowValue = d.SpawnLowValue
	}
	if c.SpawnHighValue == 0 {
		c.SpawnHighValue = d.SpawnHighValue
	}
	if c.SpawnLowProbability == 0 {
		c.SpawnLowProbability = d.SpawnLowProbability
	}
}

// ValidateGameConfig validates a rules configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	if config.Size < MinGridSize || config.Size > MaxGridSize {
		return fmt.Errorf("config validation: size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Size)
	}

	if config.StartTiles < 0 || config.StartTiles > config.Size*config.Size {
		return fmt.Errorf("config validation: start_tiles must be between 0 and %d, got %d", config.Size*config.Size, config.StartTiles)
	}

	if !isPowerOfTwo(config.SpawnLowValue) || !isPowerOfTwo(config.SpawnHighValue) {
		return fmt.Errorf("config validation: spawn values must be powers of two, got %d and %d",
			config.SpawnLowValue, config.SpawnHighValue)
	}
	if config.SpawnLowValue >= config.SpawnHighValue {
		return fmt.Errorf("config validation: spawn_low_value (%d) must be below spawn_high_value (%d)",
			config.SpawnLowValue, config.SpawnHighValue)
	}

	if config.SpawnLowProbability < 0 || config.SpawnLowProbability > 1 {
		return fmt.Errorf("config validation: spawn_low_probability must be within [0,1], got %v", config.SpawnLowProbability)
	}

	if !isPowerOfTwo(config.WinValue) || config.WinValue <= config.SpawnHighValue {
		return fmt.Errorf("config validation: win_value must be a power of two above %d, got %d",
			config.SpawnHighValue, config.WinValue)
	}

	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
