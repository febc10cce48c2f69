// Package session provides session management for the tile merge game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Short random session IDs
//   - Session lifecycle management
//   - JSON file persistence of game state
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns its own engine, the profile it was created from
// and the best score seen in it.
//
// Persistence:
//
// FilePersistence stores one JSON file per session. A game that is over is
// saved without its state, and a saved state that cannot be decoded is
// discarded, so in both cases the next load starts a fresh game.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configMgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//
//	sess, err := manager.Create("", "classic", profile)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
package session
