package engine

import (
	"strconv"
	"strings"
)

// CellState is what a player can see of a cell
type CellState string

const (
	CellHidden    CellState = "hidden"
	CellFlagged   CellState = "flagged"
	CellRevealed  CellState = "revealed"
	CellMine      CellState = "mine"
	CellDetonated CellState = "detonated"
)

// CellView is the player-visible projection of a cell.
// AdjacentMines is only set for revealed cells.
type CellView struct {
	State         CellState `json:"state"`
	AdjacentMines int       `json:"adjacent_mines,omitempty"`
}

// BoardView is the player-visible projection of a board. Mine positions are
// only present once the game is over.
type BoardView struct {
	GameID         string       `json:"game_id"`
	ConfigName     string       `json:"config_name"`
	Rows           int          `json:"rows"`
	Cols           int          `json:"cols"`
	Mines          int          `json:"mines"`
	RevealedCells  int          `json:"revealed_cells"`
	SafeCellsLeft  int          `json:"safe_cells_left"`
	RemainingFlags int          `json:"remaining_flags"`
	Status         GameStatus   `json:"status"`
	Message        string       `json:"message"`
	Cells          [][]CellView `json:"cells"`
	Display        []string     `json:"display"`
}

// NewBoardView projects a game state
func NewBoardView(gs *GameState) *BoardView {
	view := &BoardView{
		GameID:         gs.GameID,
		ConfigName:     gs.ConfigName,
		Rows:           gs.Rows,
		Cols:           gs.Cols,
		Mines:          gs.Mines,
		RevealedCells:  gs.RevealedCells,
		SafeCellsLeft:  gs.Rows*gs.Cols - gs.Mines - gs.RevealedCells,
		RemainingFlags: gs.RemainingFlags,
		Status:         gs.Status,
		Message:        gs.Message,
		Cells:          make([][]CellView, gs.Rows),
	}

	terminal := gs.Status.IsTerminal()
	for r := 0; r < gs.Rows; r++ {
		view.Cells[r] = make([]CellView, gs.Cols)
		for c := 0; c < gs.Cols; c++ {
			view.Cells[r][c] = projectCell(gs, r, c, terminal)
		}
	}
	view.Display = view.renderRows()

	return view
}

func projectCell(gs *GameState, row, col int, terminal bool) CellView {
	cell := gs.Grid[row][col]

	switch {
	case cell.IsMine && gs.DetonatedAt != nil && gs.DetonatedAt.Row == row && gs.DetonatedAt.Col == col:
		return CellView{State: CellDetonated}
	case cell.IsMine && terminal:
		return CellView{State: CellMine}
	case cell.IsRevealed:
		return CellView{State: CellRevealed, AdjacentMines: cell.AdjacentMines}
	case cell.IsFlagged:
		return CellView{State: CellFlagged}
	default:
		return CellView{State: CellHidden}
	}
}

// Symbol returns the single-character display of a cell
func (v CellView) Symbol() string {
	switch v.State {
	case CellFlagged:
		return "F"
	case CellMine:
		return "*"
	case CellDetonated:
		return "X"
	case CellRevealed:
		if v.AdjacentMines == 0 {
			return "."
		}
		return strconv.Itoa(v.AdjacentMines)
	default:
		return "#"
	}
}

func (v *BoardView) renderRows() []string {
	rows := make([]string, len(v.Cells))
	for r, cells := range v.Cells {
		var b strings.Builder
		for _, cell := range cells {
			b.WriteString(cell.Symbol())
		}
		rows[r] = b.String()
	}
	return rows
}

// String renders the board as text with a column header and row labels
func (v *BoardView) String() string {
	var b strings.Builder

	b.WriteString("    ")
	for c := 0; c < v.Cols; c++ {
		b.WriteString(strconv.Itoa(c % 10))
	}
	b.WriteString("\n")

	for r, line := range v.Display {
		b.WriteString(padLeft(strconv.Itoa(r), 3))
		b.WriteString(" ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
