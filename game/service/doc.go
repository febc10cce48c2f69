// Package service provides the business logic layer for the tile merge game.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing with best score tracking
//   - Move suggestions and board evaluation
//   - Background simulations toward a target score
//   - Recording finished games in a score store
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and persistence.
// ConfigManager loads game profiles. ScoreStore keeps finished games and
// Notifier receives an update after every accepted change.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithScoreStore(store), service.WithNotifier(hub))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left")
//
// Concurrency:
//
// Each session carries a lock that serializes access to its engine. A
// running simulation takes the lock for one decision cycle at a time, and
// manual moves are refused with ErrSimulationRunning until it ends.
package service
