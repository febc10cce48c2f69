// Package api provides HTTP REST API handlers for the tile merge game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (sort=accessed|created|best, order, limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session and stop its simulation
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - Move ({"direction": "left"})
//   - POST /api/sessions/{id}/restart - Start a new game in the session
//   - POST /api/sessions/{id}/keep-playing - Continue after a win
//
// Automated Play:
//   - GET /api/sessions/{id}/best-move?depth=N - Suggested direction
//   - GET /api/sessions/{id}/evaluate - Heuristic breakdown of the board
//   - POST /api/sessions/{id}/simulation - Play toward a target score
//     ({"target_score": 4096, "max_moves": 1000, "wait": true})
//   - GET /api/sessions/{id}/simulation - Simulation status
//   - DELETE /api/sessions/{id}/simulation - Stop the simulation
//
// Configuration and Scores:
//   - GET /api/configs - List available profiles
//   - GET /api/scores?limit=N - Best recorded games
//
// WebSocket:
//   - GET /ws?session={id} - Stream of updates for one session
//
// Error Handling:
//
// Errors are returned as JSON with a status code derived from the service
// error: 404 for unknown sessions, configs and simulations, 400 for bad
// input, 409 when a simulation is already driving the session.
//
//	{"error": "session ab12: session not found"}
package api
