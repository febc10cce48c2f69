// Package engine provides the core rules of the tile merge game.
//
// The engine package implements the game mechanics including:
//   - A bounds-checked square grid of optional tiles
//   - Directional slides with at-most-one merge per tile per move
//   - Scoring, win detection and game-over detection
//   - Random tile spawning from an injectable random source
//   - Snapshots for search and checkpointing, and JSON persistence
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState holds the grid, score and flags for a
// single game, while GameConfig defines the rules (grid size, win value and
// spawn distribution).
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultGameConfig(), engine.NewSeededSource(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result := eng.Move(engine.Left)
//	state := eng.GetState()
//
// Game Rules:
//
// Every move slides all tiles as far as possible in one direction. Two tiles
// of equal value that meet merge into one tile of double value, adding it to
// the score. A move that changes the board spawns one new tile in a random
// empty cell. The game is won when a merge produces the win value and lost
// when the board is full with no equal neighbours.
package engine
