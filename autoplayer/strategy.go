package main

import (
	"math/rand/v2"

	"github.com/gammazero/deque"
	"github.com/wricardo/minesweeper/game/engine"
)

// Move is a single board command chosen by the strategy
type Move struct {
	Action string
	Row    int
	Col    int
	Guess  bool
}

// DeductionStrategy plays with single-point deduction: a revealed number whose
// flags already account for all its mines clears its hidden neighbours, and a
// number with exactly as many hidden neighbours as missing mines flags them.
// When nothing is certain it guesses, starting from the board centre.
type DeductionStrategy struct {
	rng     *rand.Rand
	pending deque.Deque[Move]

	// Stats for the current attempt
	deduced int
	guesses int
}

func NewDeductionStrategy(seed uint64) *DeductionStrategy {
	return &DeductionStrategy{
		rng: rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// Reset clears queued moves between attempts
func (s *DeductionStrategy) Reset() {
	s.pending.Clear()
	s.deduced = 0
	s.guesses = 0
}

// NextMove returns the next command for board, or false when the game is over
// or no hidden cell is left to play.
func (s *DeductionStrategy) NextMove(board *engine.BoardView) (Move, bool) {
	if board.Status.IsTerminal() {
		return Move{}, false
	}

	// Queued moves can go stale when a flood reveal opens their cell
	for s.pending.Len() > 0 {
		move := s.pending.PopFront()
		if playable(board, move) {
			return move, true
		}
	}

	s.deduce(board)
	for s.pending.Len() > 0 {
		move := s.pending.PopFront()
		if playable(board, move) {
			s.deduced++
			return move, true
		}
	}

	move, ok := s.guess(board)
	if ok {
		s.guesses++
	}
	return move, ok
}

func playable(board *engine.BoardView, move Move) bool {
	if board.Cells[move.Row][move.Col].State != engine.CellHidden {
		return false
	}
	return move.Action != engine.ActionFlag || board.RemainingFlags > 0
}

// deduce queues every certain move visible on board
func (s *DeductionStrategy) deduce(board *engine.BoardView) {
	queued := make(map[engine.Position]bool)

	for r := 0; r < board.Rows; r++ {
		for c := 0; c < board.Cols; c++ {
			cell := board.Cells[r][c]
			if cell.State != engine.CellRevealed || cell.AdjacentMines == 0 {
				continue
			}

			hidden, flagged := neighbours(board, r, c)
			if len(hidden) == 0 {
				continue
			}

			var action string
			switch missing := cell.AdjacentMines - flagged; {
			case missing == 0:
				action = engine.ActionReveal
			case missing == len(hidden):
				action = engine.ActionFlag
			default:
				continue
			}

			for _, pos := range hidden {
				if queued[pos] {
					continue
				}
				queued[pos] = true
				s.pending.PushBack(Move{Action: action, Row: pos.Row, Col: pos.Col})
			}
		}
	}
}

// neighbours returns the hidden neighbours of row,col and the number of flagged ones
func neighbours(board *engine.BoardView, row, col int) (hidden []engine.Position, flagged int) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			r, c := row+dr, col+dc
			if (dr == 0 && dc == 0) || r < 0 || r >= board.Rows || c < 0 || c >= board.Cols {
				continue
			}
			switch board.Cells[r][c].State {
			case engine.CellHidden:
				hidden = append(hidden, engine.Position{Row: r, Col: c})
			case engine.CellFlagged:
				flagged++
			}
		}
	}
	return
}

// guess reveals the centre on a fresh board, otherwise a random hidden cell
func (s *DeductionStrategy) guess(board *engine.BoardView) (Move, bool) {
	if board.RevealedCells == 0 {
		r, c := board.Rows/2, board.Cols/2
		if board.Cells[r][c].State == engine.CellHidden {
			return Move{Action: engine.ActionReveal, Row: r, Col: c, Guess: true}, true
		}
	}

	var candidates []engine.Position
	for r := 0; r < board.Rows; r++ {
		for c := 0; c < board.Cols; c++ {
			if board.Cells[r][c].State == engine.CellHidden {
				candidates = append(candidates, engine.Position{Row: r, Col: c})
			}
		}
	}
	if len(candidates) == 0 {
		return Move{}, false
	}

	pos := candidates[s.rng.IntN(len(candidates))]
	return Move{Action: engine.ActionReveal, Row: pos.Row, Col: pos.Col, Guess: true}, true
}
