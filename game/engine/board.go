package engine

import (
	"fmt"
	"time"

	"github.com/gammazero/deque"
)

// placeMines marks Mines distinct cells by rejection sampling
func (gs *GameState) placeMines(rng RandomSource) {
	placed := 0
	for placed < gs.Mines {
		row := rng.IntN(gs.Rows)
		col := rng.IntN(gs.Cols)

		if !gs.Grid[row][col].IsMine {
			gs.Grid[row][col].IsMine = true
			placed++
		}
	}
}

// placeFixedMines marks the given coordinates as mines
func (gs *GameState) placeFixedMines(mines []Position) error {
	if len(mines) != gs.Mines {
		return fmt.Errorf("mine layout: expected %d positions, got %d", gs.Mines, len(mines))
	}
	for _, p := range mines {
		if !gs.InBounds(p.Row, p.Col) {
			return fmt.Errorf("mine layout: (%d,%d): %w", p.Row, p.Col, ErrOutOfBounds)
		}
		if gs.Grid[p.Row][p.Col].IsMine {
			return fmt.Errorf("mine layout: duplicate mine at (%d,%d)", p.Row, p.Col)
		}
		gs.Grid[p.Row][p.Col].IsMine = true
	}
	return nil
}

// calculateAdjacency sets AdjacentMines for every non-mine cell
func (gs *GameState) calculateAdjacency() {
	for r := 0; r < gs.Rows; r++ {
		for c := 0; c < gs.Cols; c++ {
			if gs.Grid[r][c].IsMine {
				continue
			}
			count := 0
			for _, n := range gs.Neighbors(r, c) {
				if gs.Grid[n.Row][n.Col].IsMine {
					count++
				}
			}
			gs.Grid[r][c].AdjacentMines = count
		}
	}
}

// checkCommand validates the preconditions shared by reveal and flag
func (gs *GameState) checkCommand(row, col int) error {
	if !gs.InBounds(row, col) {
		return fmt.Errorf("(%d,%d) on %dx%d board: %w", row, col, gs.Rows, gs.Cols, ErrOutOfBounds)
	}
	if gs.Status != StatusInProgress {
		return fmt.Errorf("status is %s: %w", gs.Status, ErrGameNotInProgress)
	}
	return nil
}

// startTimer emits timer_started for the first command of a game
func (gs *GameState) startTimer(events []Event) []Event {
	if gs.TimerStarted {
		return events
	}
	gs.TimerStarted = true
	return append(events, Event{Type: EventTimerStarted})
}

// RevealCell opens row,col. The boolean result reports whether the board changed.
func (gs *GameState) RevealCell(row, col int) ([]Event, bool, error) {
	if err := gs.checkCommand(row, col); err != nil {
		return nil, false, err
	}

	events := gs.startTimer(nil)
	cell := &gs.Grid[row][col]

	if cell.IsRevealed {
		gs.Message = fmt.Sprintf("Cell (%d,%d) is already revealed", row, col)
		return events, false, nil
	}
	if cell.IsFlagged {
		gs.Message = fmt.Sprintf("Cell (%d,%d) is flagged; remove the flag to reveal it", row, col)
		return events, false, nil
	}

	if cell.IsMine {
		cell.IsRevealed = true
		gs.DetonatedAt = &Position{Row: row, Col: col}
		gs.Message = fmt.Sprintf("Boom! Mine at (%d,%d). Game over!", row, col)
		return gs.finish(StatusLost, events), true, nil
	}

	before := gs.RevealedCells
	events = gs.openSafeCell(row, col, events)
	if cell.AdjacentMines == 0 {
		events = gs.floodReveal(row, col, events)
	}

	if gs.RevealedCells == gs.Rows*gs.Cols-gs.Mines {
		gs.Message = fmt.Sprintf("Board cleared! All %d safe cells revealed!", gs.RevealedCells)
		return gs.finish(StatusWon, events), true, nil
	}

	gs.Message = fmt.Sprintf("Revealed %d cell(s), %d safe cell(s) left",
		gs.RevealedCells-before, gs.Rows*gs.Cols-gs.Mines-gs.RevealedCells)
	return events, true, nil
}

// openSafeCell reveals a non-mine cell, clearing any flag it carries
func (gs *GameState) openSafeCell(row, col int, events []Event) []Event {
	cell := &gs.Grid[row][col]

	if cell.IsFlagged {
		cell.IsFlagged = false
		gs.RemainingFlags++
		events = append(events,
			Event{Type: EventFlagChanged, Row: row, Col: col, Flagged: false, RemainingFlags: gs.RemainingFlags},
			Event{Type: EventFlagBudgetChanged, RemainingFlags: gs.RemainingFlags},
		)
	}

	cell.IsRevealed = true
	gs.RevealedCells++

	return append(events, Event{
		Type:           EventCellRevealed,
		Row:            row,
		Col:            col,
		AdjacentMines:  cell.AdjacentMines,
		RemainingFlags: gs.RemainingFlags,
	})
}

// floodFrame is one level of the depth-first walk: the cell being expanded
// and the index of the next neighbour offset to visit.
type floodFrame struct {
	row, col int
	next     int
}

// floodReveal opens the zero-adjacency region around an already revealed seed
// plus its numbered border. Visiting order matches a recursive depth-first
// expansion over neighborOffsets.
func (gs *GameState) floodReveal(row, col int, events []Event) []Event {
	var stack deque.Deque[floodFrame]
	stack.PushBack(floodFrame{row: row, col: col})

	for stack.Len() > 0 {
		frame := stack.PopBack()
		if frame.next == len(neighborOffsets) {
			continue
		}

		off := neighborOffsets[frame.next]
		frame.next++
		stack.PushBack(frame)

		r, c := frame.row+off.Row, frame.col+off.Col
		if !gs.InBounds(r, c) {
			continue
		}
		neighbor := &gs.Grid[r][c]
		if neighbor.IsRevealed || neighbor.IsMine {
			continue
		}

		events = gs.openSafeCell(r, c, events)
		if neighbor.AdjacentMines == 0 {
			stack.PushBack(floodFrame{row: r, col: c})
		}
	}

	return events
}

// ToggleFlagCell flips the flag on row,col within the flag budget.
// The boolean result reports whether the board changed.
func (gs *GameState) ToggleFlagCell(row, col int) ([]Event, bool, error) {
	if err := gs.checkCommand(row, col); err != nil {
		return nil, false, err
	}

	events := gs.startTimer(nil)
	cell := &gs.Grid[row][col]

	switch {
	case cell.IsRevealed:
		gs.Message = fmt.Sprintf("Cell (%d,%d) is already revealed", row, col)
		return events, false, nil

	case cell.IsFlagged:
		cell.IsFlagged = false
		gs.RemainingFlags++
		gs.Message = fmt.Sprintf("Flag removed from (%d,%d). Flags: %d", row, col, gs.RemainingFlags)

	case gs.RemainingFlags > 0:
		cell.IsFlagged = true
		gs.RemainingFlags--
		gs.Message = fmt.Sprintf("Flag placed on (%d,%d). Flags: %d", row, col, gs.RemainingFlags)

	default:
		gs.Message = "No flags remaining"
		return events, false, nil
	}

	events = append(events,
		Event{Type: EventFlagChanged, Row: row, Col: col, Flagged: cell.IsFlagged, RemainingFlags: gs.RemainingFlags},
		Event{Type: EventFlagBudgetChanged, RemainingFlags: gs.RemainingFlags},
	)
	return events, true, nil
}

// finish moves the board to a terminal status and exposes every mine
func (gs *GameState) finish(status GameStatus, events []Event) []Event {
	gs.Status = status

	if status == StatusWon {
		events = append(events, Event{Type: EventGameWon, RemainingFlags: gs.RemainingFlags})
	} else {
		events = append(events, Event{Type: EventGameLost, RemainingFlags: gs.RemainingFlags})
	}
	if gs.TimerStarted {
		events = append(events, Event{Type: EventTimerStopped})
	}

	return gs.revealAllMines(events)
}

// revealAllMines emits mine_revealed for every mine without touching IsRevealed
func (gs *GameState) revealAllMines(events []Event) []Event {
	for _, p := range MinePositions(gs.Grid) {
		events = append(events, Event{
			Type:           EventMineRevealed,
			Row:            p.Row,
			Col:            p.Col,
			Flagged:        gs.Grid[p.Row][p.Col].IsFlagged,
			RemainingFlags: gs.RemainingFlags,
		})
	}
	return events
}

// AddCommandToHistory records a command in the cumulative and per-game history
func (gs *GameState) AddCommandToHistory(action string, pos Position, accepted bool) {
	entry := CommandHistoryEntry{
		Action:        action,
		Position:      pos,
		Accepted:      accepted,
		Status:        gs.Status,
		GameID:        gs.GameID,
		Timestamp:     time.Now().Unix(),
		CommandNumber: gs.TotalCommands + 1,
	}
	gs.CommandHistory = append(gs.CommandHistory, entry)
	gs.TotalCommands++
	gs.CurrentCommandsCount++
}
