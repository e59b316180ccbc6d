// Package mcp provides a Model Context Protocol server for the Minesweeper game.
//
// The server is a thin client: every tool calls the REST API and renders the
// response as text, so agents see the same board a WebSocket client does.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - board_state: the board with column and row labels
//   - reveal, toggle_flag: board commands taking row and col (0-based)
//   - new_game: fresh board with the session's preset
//   - command_history: paginated command history
//   - list_configs: available presets
//   - game_instructions: rules and board legend
//   - describe_cell: what is visible at one cell
//
// Transport Modes:
//   - Stdio: main's stdio-mcp command serves GetMCPServer over stdin/stdout
//   - HTTP: the server command mounts the same server at /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
