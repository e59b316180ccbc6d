package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

var (
	ErrOutOfBounds       = errors.New("coordinates out of bounds")
	ErrGameNotInProgress = errors.New("game is not in progress")
)

// RandomSource yields uniform integers in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// globalSource uses the auto-seeded math/rand/v2 top-level generator
type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// Engine provides the main interface for board operations
type Engine interface {
	// Game lifecycle
	NewGame() (*GameState, error)
	GetState() *GameState
	Status() GameStatus
	IsGameOver() bool
	IsVictory() bool

	// Commands
	Reveal(row, col int) ([]Event, error)
	ToggleFlag(row, col int) ([]Event, error)

	// Queries
	RemainingFlags() int
	RevealedCells() int
	GetCell(row, col int) (Cell, error)
	View() *BoardView

	// Configuration
	GetConfig() *GameConfig

	// History
	GetCommandHistory() []CommandHistoryEntry
	GetLastCommand() *CommandHistoryEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state      *GameState
	config     *GameConfig
	rng        RandomSource
	fixedMines []Position
}

// NewEngine creates a board engine with randomly placed mines.
// A nil rng uses the global generator.
func NewEngine(config *GameConfig, rng RandomSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = globalSource{}
	}

	engine := &GameEngine{
		config: config,
		rng:    rng,
	}
	if _, err := engine.NewGame(); err != nil {
		return nil, err
	}

	return engine, nil
}

// NewEngineWithMines creates a board engine with a fixed mine layout.
// NewGame on this engine repeats the same layout.
func NewEngineWithMines(config *GameConfig, mines []Position) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config:     config,
		rng:        globalSource{},
		fixedMines: append([]Position{}, mines...),
	}
	if _, err := engine.NewGame(); err != nil {
		return nil, err
	}

	return engine, nil
}

// NewEngineWithDefaults creates a board engine for the classic 10x10 board
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultConfig(), nil)
	if err != nil {
		// DefaultConfig is always valid
		panic(err)
	}
	return engine
}

// NewGame discards the current board and sets up a fresh one.
// Command history is carried over and, when a board is replaced, gains a
// new_game entry tagged with the new GameID. The per-game counter is cleared.
func (e *GameEngine) NewGame() (*GameState, error) {
	state := newGameState(e.config)
	state.GameID = uuid.NewString()

	if e.fixedMines != nil {
		if err := state.placeFixedMines(e.fixedMines); err != nil {
			return nil, err
		}
	} else {
		state.placeMines(e.rng)
	}
	state.calculateAdjacency()

	state.Status = StatusInProgress
	state.Message = fmt.Sprintf("New game: %dx%d board with %d mines", state.Rows, state.Cols, state.Mines)

	previous := e.state
	e.state = state
	if previous != nil {
		state.CommandHistory = previous.CommandHistory
		state.TotalCommands = previous.TotalCommands
		state.AddCommandToHistory(ActionNewGame, Position{}, true)
		state.CurrentCommandsCount = 0
	}

	return e.state, nil
}

// GetState returns the current board state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Status returns the board lifecycle status
func (e *GameEngine) Status() GameStatus {
	return e.state.Status
}

// IsGameOver returns whether the game reached a terminal status
func (e *GameEngine) IsGameOver() bool {
	return e.state.Status.IsTerminal()
}

// IsVictory returns whether the board was cleared
func (e *GameEngine) IsVictory() bool {
	return e.state.Status == StatusWon
}

// Reveal opens the cell at row,col and records the command
func (e *GameEngine) Reveal(row, col int) ([]Event, error) {
	events, accepted, err := e.state.RevealCell(row, col)
	if err != nil {
		return nil, err
	}
	e.state.AddCommandToHistory(ActionReveal, Position{Row: row, Col: col}, accepted)
	return events, nil
}

// ToggleFlag flips the flag on row,col and records the command
func (e *GameEngine) ToggleFlag(row, col int) ([]Event, error) {
	events, accepted, err := e.state.ToggleFlagCell(row, col)
	if err != nil {
		return nil, err
	}
	e.state.AddCommandToHistory(ActionFlag, Position{Row: row, Col: col}, accepted)
	return events, nil
}

// RemainingFlags returns the current flag budget
func (e *GameEngine) RemainingFlags() int {
	return e.state.RemainingFlags
}

// RevealedCells returns the number of revealed non-mine cells
func (e *GameEngine) RevealedCells() int {
	return e.state.RevealedCells
}

// GetCell returns a copy of the cell at row,col
func (e *GameEngine) GetCell(row, col int) (Cell, error) {
	if !e.state.InBounds(row, col) {
		return Cell{}, fmt.Errorf("(%d,%d): %w", row, col, ErrOutOfBounds)
	}
	return e.state.Grid[row][col], nil
}

// View returns the player-visible projection of the board
func (e *GameEngine) View() *BoardView {
	return NewBoardView(e.state)
}

// GetConfig returns the board configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetCommandHistory returns a copy of the complete command history
func (e *GameEngine) GetCommandHistory() []CommandHistoryEntry {
	return append([]CommandHistoryEntry{}, e.state.CommandHistory...)
}

// GetLastCommand returns a copy of the last command, or nil if there is none
func (e *GameEngine) GetLastCommand() *CommandHistoryEntry {
	if len(e.state.CommandHistory) == 0 {
		return nil
	}
	last := e.state.CommandHistory[len(e.state.CommandHistory)-1]
	return &last
}
