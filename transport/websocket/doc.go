// Package websocket provides WebSocket transport for the Minesweeper server.
//
// The websocket package implements:
//   - Session-scoped board broadcasting
//   - Per-second timer ticks
//   - Board commands sent by clients
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection has a read goroutine and a
// write goroutine; only the hub goroutine touches the client send channels.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"session_id": "ab12", "event": "board_update", "board": {...}, "events": [...]}
//	{"session_id": "ab12", "event": "timer_tick", "data": {"elapsed_seconds": 12}}
//	{"session_id": "ab12", "event": "command_error", "data": {"error": "..."}}
//
// Incoming messages are board commands:
//
//	{"action": "reveal", "row": 3, "col": 4}
//	{"action": "flag", "row": 0, "col": 0}
//	{"action": "new_game"}
//
// Commands are passed to the CommandHandler set with SetCommandHandler.
// Failures are reported to the sending client only; successful commands are
// expected to be broadcast by the handler.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetCommandHandler(apiServer)
//	go hub.Run()
//	defer hub.Shutdown()
//
// Clients connect to /ws?session=<id>.
package websocket
