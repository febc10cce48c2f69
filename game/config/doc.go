// Package config provides profile management for the tile merge game.
//
// The config package handles:
//   - Loading profiles from JSON or YAML files
//   - Profile validation and defaulting
//   - Default profile management
//   - Profile discovery and listing
//
// Profile Format:
//
// Profiles are stored as <name>.json, <name>.yaml or <name>.yml in the
// configs directory. Each profile defines:
//   - game: board size, win value and spawn distribution
//   - weights: evaluator heuristic weights
//   - policy: when and how deep the automated player searches
//   - autoplay: move budget, checkpoint cadence and retries
//
// Omitted keys keep their classic values. A built-in "classic" profile is
// always available, even with an empty configs directory.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := manager.LoadConfig("large")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	configs, err := manager.ListConfigs()
package config
