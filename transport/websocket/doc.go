// Package websocket streams game updates to browser clients.
//
// Clients connect to /ws?session={id} and receive JSON messages:
//
//	{"session_id": "...", "event": "move", "update": {...}}
//
// The first message is the session's current state ("state" event).
// Later messages follow every accepted move, restart, simulation checkpoint
// and other state change. Hub implements service.Notifier so the game
// service can publish without knowing about connections.
//
// Notify and BroadcastEvent never block the caller. When the hub falls
// behind, updates are dropped; clients that cannot keep up are
// disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	svc := service.NewGameService(sessions, configs, service.WithNotifier(hub))
package websocket
