// Package mcp exposes the tile merge game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, so agents see exactly what HTTP and WebSocket clients see.
//
// Tools:
//   - create_session, get_session, list_sessions
//   - game_state, move (with an intent note), restart_game, keep_playing
//   - best_move, evaluate_board
//   - simulate, simulation_status, stop_simulation
//   - list_configs, top_scores
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// The same server can be mounted on an HTTP endpoint through
// MCPServer.HandleMessage.
package mcp
