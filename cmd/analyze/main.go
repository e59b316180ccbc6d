// Command analyze prints quick, human-readable statistics about the board
// presets in the configs directory: dimensions, mine density, the expected
// cost of placing mines by rejection sampling, and a seeded Monte-Carlo
// estimate of how a first reveal plays out.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/wricardo/minesweeper/game/config"
	"github.com/wricardo/minesweeper/game/engine"
)

// Analysis holds the statistics for one preset
type Analysis struct {
	ConfigID  string
	Name      string
	Rows      int
	Cols      int
	Mines     int
	SafeCells int
	Density   float64

	// ExpectedAttempts is the expected number of draws to place every mine
	ExpectedAttempts float64

	Trials int
	// AvgFirstReveal is the mean number of cells opened by a reveal at the board centre
	AvgFirstReveal float64
	// FirstRevealLoss is the fraction of trials where the first reveal hit a mine
	FirstRevealLoss float64
	// FirstRevealWins counts trials won by the first reveal
	FirstRevealWins int
}

// expectedAttempts returns sum over i of cells/(cells-i) for i in [0, mines)
func expectedAttempts(cells, mines int) float64 {
	total := 0.0
	for i := 0; i < mines; i++ {
		total += float64(cells) / float64(cells-i)
	}
	return total
}

// analyzeConfig computes statistics for cfg, playing trials seeded boards
func analyzeConfig(configID string, cfg *engine.GameConfig, trials int, seed uint64) (*Analysis, error) {
	if err := engine.ValidateGameConfig(cfg); err != nil {
		return nil, err
	}

	cells := cfg.Rows * cfg.Cols
	a := &Analysis{
		ConfigID:         configID,
		Name:             cfg.Name,
		Rows:             cfg.Rows,
		Cols:             cfg.Cols,
		Mines:            cfg.Mines,
		SafeCells:        cfg.SafeCells(),
		Density:          float64(cfg.Mines) / float64(cells),
		ExpectedAttempts: expectedAttempts(cells, cfg.Mines),
		Trials:           trials,
	}
	if trials <= 0 {
		return a, nil
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	eng, err := engine.NewEngine(cfg, rng)
	if err != nil {
		return nil, err
	}

	row, col := cfg.Rows/2, cfg.Cols/2
	opened, losses := 0, 0
	for i := 0; i < trials; i++ {
		if i > 0 {
			if _, err := eng.NewGame(); err != nil {
				return nil, err
			}
		}
		if _, err := eng.Reveal(row, col); err != nil {
			return nil, err
		}

		switch eng.Status() {
		case engine.StatusLost:
			losses++
		case engine.StatusWon:
			a.FirstRevealWins++
		}
		opened += eng.RevealedCells()
	}

	a.AvgFirstReveal = float64(opened) / float64(trials)
	a.FirstRevealLoss = float64(losses) / float64(trials)
	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Board: %d x %d\n", a.Rows, a.Cols)
	fmt.Fprintf(w, "Mines: %d (%.1f%% density)\n", a.Mines, a.Density*100)
	fmt.Fprintf(w, "Safe cells: %d\n", a.SafeCells)
	fmt.Fprintf(w, "Expected placement draws: %.2f (%.2f per mine)\n", a.ExpectedAttempts, perMine(a))

	if a.Trials == 0 {
		return
	}
	fmt.Fprintf(w, "First reveal at centre over %d boards:\n", a.Trials)
	fmt.Fprintf(w, "  Avg cells opened: %.2f (%.1f%% of safe cells)\n", a.AvgFirstReveal, 100*a.AvgFirstReveal/float64(max(a.SafeCells, 1)))
	fmt.Fprintf(w, "  Mine hit rate: %.1f%%\n", a.FirstRevealLoss*100)
	if a.FirstRevealWins > 0 {
		fmt.Fprintf(w, "  Won outright: %d\n", a.FirstRevealWins)
	}
	if a.Density > 0.5 {
		fmt.Fprintf(w, "⚠️  WARNING: mine density above 50%%\n")
	}
}

func perMine(a *Analysis) float64 {
	if a.Mines == 0 {
		return 0
	}
	return a.ExpectedAttempts / float64(a.Mines)
}

// analyzeDir analyzes every valid preset in dir
func analyzeDir(w io.Writer, dir string, trials int, seed uint64) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	presets, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	for _, info := range presets {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)

		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "Error loading preset: %v\n", err)
			continue
		}

		a, err := analyzeConfig(info.ConfigID, cfg, trials, seed)
		if err != nil {
			fmt.Fprintf(w, "Error analyzing preset: %v\n", err)
			continue
		}
		printAnalysis(w, a)
	}
	return nil
}

func main() {
	dir := flag.String("dir", "configs", "Directory containing board presets")
	trials := flag.Int("trials", 1000, "Boards to simulate per preset (0 to skip)")
	seed := flag.Uint64("seed", 1, "Random seed for the simulation")
	flag.Parse()

	if err := analyzeDir(os.Stdout, *dir, *trials, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
