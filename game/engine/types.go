package engine

// GameStatus represents the lifecycle status of a board
type GameStatus string

const (
	StatusSetup      GameStatus = "setup"
	StatusInProgress GameStatus = "in_progress"
	StatusWon        GameStatus = "won"
	StatusLost       GameStatus = "lost"

	// Validation constants
	MinDimension = 1
	MaxDimension = 100
	MinMines     = 0
)

// IsTerminal reports whether no further board mutation is accepted
func (s GameStatus) IsTerminal() bool {
	return s == StatusWon || s == StatusLost
}

// Cell represents a single grid cell
type Cell struct {
	IsMine        bool `json:"is_mine"`
	IsRevealed    bool `json:"is_revealed"`
	IsFlagged     bool `json:"is_flagged"`
	AdjacentMines int  `json:"adjacent_mines"`
}

// Position represents row,col coordinates
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// GameConfig represents a board preset
type GameConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Rows        int    `json:"rows" yaml:"rows"`
	Cols        int    `json:"cols" yaml:"cols"`
	Mines       int    `json:"mines" yaml:"mines"`
}

// SafeCells returns the number of non-mine cells on the board
func (c *GameConfig) SafeCells() int {
	return c.Rows*c.Cols - c.Mines
}

// GameState represents the complete board state, including hidden mine positions
type GameState struct {
	GameID         string     `json:"game_id"`
	ConfigName     string     `json:"config_name"`
	Rows           int        `json:"rows"`
	Cols           int        `json:"cols"`
	Mines          int        `json:"mines"`
	Grid           [][]Cell   `json:"grid"`
	RevealedCells  int        `json:"revealed_cells"`
	RemainingFlags int        `json:"remaining_flags"`
	Status         GameStatus `json:"status"`
	Message        string     `json:"message"`
	DetonatedAt    *Position  `json:"detonated_at,omitempty"`

	// TimerStarted is set by the first command of a game; elapsed time is measured outside the engine.
	TimerStarted bool `json:"timer_started"`

	// CommandHistory is cumulative across new games; CurrentCommandsCount covers only this game.
	CommandHistory       []CommandHistoryEntry `json:"command_history"`
	TotalCommands        int                   `json:"total_commands"`
	CurrentCommandsCount int                   `json:"current_commands_count"`
}

// CommandHistoryEntry represents a single command in the game history
type CommandHistoryEntry struct {
	Action        string     `json:"action"`
	Position      Position   `json:"position"`
	Accepted      bool       `json:"accepted"`
	Status        GameStatus `json:"status"`
	GameID        string     `json:"game_id"`
	Timestamp     int64      `json:"timestamp"`
	CommandNumber int        `json:"command_number"`
}

// Command actions recorded in history
const (
	ActionReveal  = "reveal"
	ActionFlag    = "flag"
	ActionNewGame = "new_game"
)

// EventType identifies a signal emitted by the board
type EventType string

const (
	EventCellRevealed      EventType = "cell_revealed"
	EventMineRevealed      EventType = "mine_revealed"
	EventFlagChanged       EventType = "flag_changed"
	EventFlagBudgetChanged EventType = "flag_budget_changed"
	EventGameWon           EventType = "game_won"
	EventGameLost          EventType = "game_lost"
	EventTimerStarted      EventType = "timer_started"
	EventTimerStopped      EventType = "timer_stopped"
)

// Event is a state-change signal consumed by presentation layers.
// Row and Col are meaningful for cell events only.
type Event struct {
	Type           EventType `json:"type"`
	Row            int       `json:"row"`
	Col            int       `json:"col"`
	AdjacentMines  int       `json:"adjacent_mines"`
	Flagged        bool      `json:"flagged"`
	RemainingFlags int       `json:"remaining_flags"`
}
