package engine

import (
	"strings"
	"testing"
)

func TestBoardViewHidesMinesInProgress(t *testing.T) {
	engine := newFixedEngine(t, 3, 3, Position{0, 0}, Position{2, 2})

	view := engine.View()
	for r, line := range view.Display {
		if line != "###" {
			t.Errorf("Row %d: expected ###, got %q", r, line)
		}
	}

	if _, err := engine.Reveal(1, 1); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if _, err := engine.ToggleFlag(2, 2); err != nil {
		t.Fatalf("ToggleFlag failed: %v", err)
	}

	view = engine.View()
	want := []string{"###", "#2#", "##F"}
	for r := range want {
		if view.Display[r] != want[r] {
			t.Errorf("Row %d: expected %q, got %q", r, want[r], view.Display[r])
		}
	}
	if view.Cells[1][1].State != CellRevealed || view.Cells[1][1].AdjacentMines != 2 {
		t.Errorf("Unexpected cell view %+v", view.Cells[1][1])
	}
	if view.Cells[0][0].State != CellHidden {
		t.Errorf("Mine leaked in progress: %+v", view.Cells[0][0])
	}
	if view.SafeCellsLeft != 6 || view.RemainingFlags != 1 {
		t.Errorf("Unexpected counters: safe=%d flags=%d", view.SafeCellsLeft, view.RemainingFlags)
	}
}

func TestBoardViewAfterLoss(t *testing.T) {
	engine := newFixedEngine(t, 3, 3, Position{0, 0}, Position{2, 2})

	if _, err := engine.Reveal(0, 2); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if _, err := engine.Reveal(2, 2); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}

	view := engine.View()
	want := []string{"*1.", "#21", "##X"}
	for r := range want {
		if view.Display[r] != want[r] {
			t.Errorf("Row %d: expected %q, got %q", r, want[r], view.Display[r])
		}
	}
	if view.Status != StatusLost {
		t.Errorf("Expected lost, got %s", view.Status)
	}
}

func TestBoardViewString(t *testing.T) {
	engine := newFixedEngine(t, 2, 3, Position{0, 0})

	out := engine.View().String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 rows, got %q", out)
	}
	if lines[0] != "    012" {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if lines[1] != "  0 ###" || lines[2] != "  1 ###" {
		t.Errorf("Unexpected rows %q", lines[1:])
	}
}

func TestCellViewSymbol(t *testing.T) {
	tests := []struct {
		cell CellView
		want string
	}{
		{CellView{State: CellHidden}, "#"},
		{CellView{State: CellFlagged}, "F"},
		{CellView{State: CellRevealed}, "."},
		{CellView{State: CellRevealed, AdjacentMines: 3}, "3"},
		{CellView{State: CellMine}, "*"},
		{CellView{State: CellDetonated}, "X"},
	}

	for _, tt := range tests {
		if got := tt.cell.Symbol(); got != tt.want {
			t.Errorf("%+v: expected %q, got %q", tt.cell, tt.want, got)
		}
	}
}
