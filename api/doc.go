// Package api provides the HTTP REST API for the Minesweeper server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "expert"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Board Operations:
//   - GET /api/sessions/{id}/board - Player-visible board
//   - POST /api/sessions/{id}/reveal - Reveal a cell ({"row": 3, "col": 4})
//   - POST /api/sessions/{id}/flag - Toggle a flag ({"row": 3, "col": 4})
//   - POST /api/sessions/{id}/new-game - Start a new board with the same preset
//   - GET /api/sessions/{id}/history - Command history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List presets
//   - GET /api/configs/{name} - Get a preset
//   - POST /api/configs - Save a preset
//
// Other:
//   - GET /api/health - Liveness probe
//   - GET /ws?session={id} - WebSocket updates for a session
//
// Successful board commands are broadcast to the session's WebSocket clients.
// The Server also implements websocket.CommandHandler so clients can send
// the same commands over their connection.
//
// Errors are returned as JSON:
//
//	{"error": "reveal (12,3): position out of bounds"}
//
// with 404 for unknown sessions and presets, 400 for malformed requests and
// out-of-bounds cells, and 409 for commands sent to a finished game.
package api
