package service

import (
	"time"

	"github.com/wricardo/minesweeper/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Board          *engine.BoardView  `json:"board"`
	GameConfig     *engine.GameConfig `json:"game_config"`
	Timer          TimerInfo          `json:"timer"`
	TotalCommands  int                `json:"total_commands"`
}

// CommandResult contains the outcome of a board command.
// Accepted is false when the command was a no-op. SessionID is the canonical
// session ID, whatever case the caller used.
type CommandResult struct {
	SessionID string            `json:"session_id"`
	Accepted  bool              `json:"accepted"`
	Action    string            `json:"action"`
	Position  *engine.Position  `json:"position,omitempty"`
	Status    engine.GameStatus `json:"status"`
	Message   string            `json:"message"`
	Events    []engine.Event    `json:"events"`
	Board     *engine.BoardView `json:"board"`
	Timer     TimerInfo         `json:"timer"`
}

// TimerInfo is a snapshot of a session timer
type TimerInfo struct {
	Running        bool `json:"running"`
	ElapsedSeconds int  `json:"elapsed_seconds"`
}

// SessionTimer pairs a session with its timer snapshot
type SessionTimer struct {
	SessionID string    `json:"session_id"`
	Timer     TimerInfo `json:"timer"`
}

// HistoryOptions configures command history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated command history
type HistoryResponse struct {
	Commands      []engine.CommandHistoryEntry `json:"commands"`
	TotalCommands int                          `json:"total_commands"`
	Page          int                          `json:"page"`
	PageSize      int                          `json:"page_size"`
	TotalPages    int                          `json:"total_pages"`
	HasNext       bool                         `json:"has_next"`
	HasPrevious   bool                         `json:"has_previous"`
}

// ConfigInfo provides information about a board preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Mines       int    `json:"mines"`
}
