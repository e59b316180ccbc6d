package engine

// neighborOffsets lists the 8 surrounding coordinates in row-major order
var neighborOffsets = [8]Position{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// InBounds reports whether row,col lies on the board
func (gs *GameState) InBounds(row, col int) bool {
	return row >= 0 && row < gs.Rows && col >= 0 && col < gs.Cols
}

// Neighbors returns the in-bounds 8-neighbours of row,col
func (gs *GameState) Neighbors(row, col int) []Position {
	neighbors := make([]Position, 0, len(neighborOffsets))
	for _, off := range neighborOffsets {
		r, c := row+off.Row, col+off.Col
		if gs.InBounds(r, c) {
			neighbors = append(neighbors, Position{Row: r, Col: c})
		}
	}
	return neighbors
}

// CountMines counts the mine cells in the grid
func CountMines(grid [][]Cell) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.IsMine {
				count++
			}
		}
	}
	return count
}

// CountFlagged counts the flagged cells in the grid
func CountFlagged(grid [][]Cell) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.IsFlagged {
				count++
			}
		}
	}
	return count
}

// CountRevealedSafe counts revealed non-mine cells in the grid
func CountRevealedSafe(grid [][]Cell) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.IsRevealed && !cell.IsMine {
				count++
			}
		}
	}
	return count
}

// MinePositions returns every mine coordinate in row-major order
func MinePositions(grid [][]Cell) []Position {
	var mines []Position
	for r, row := range grid {
		for c, cell := range row {
			if cell.IsMine {
				mines = append(mines, Position{Row: r, Col: c})
			}
		}
	}
	return mines
}
