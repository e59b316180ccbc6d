// Package service provides the business logic layer for the Minesweeper server.
//
// The service package implements:
//   - Multi-session board management
//   - Board preset lookup
//   - Reveal, flag and new-game commands
//   - Per-session play timers
//   - Command history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level board operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board preset loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the board engine. Each session owns its own engine and Timer. Commands
// return a CommandResult carrying the engine events together with the
// player-visible board, so transports never see hidden mine positions.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "beginner")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Reveal(ctx, sessionInfo.ID, 4, 4)
//
// Timers:
//
// A session timer starts on the first command of a game, including a command
// that changes nothing, and stops on a win or a loss. NewGame resets it.
package service
