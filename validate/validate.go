// Command validate checks the board preset files in a directory
// (../configs by default, or the first argument). It checks:
//   - JSON / YAML structure
//   - Required name
//   - Rows and columns within the engine limits
//   - Mine count between 0 and rows*cols-1
//
// Dense boards, mine-free boards and duplicate preset names are reported as
// warnings. The exit status is 1 when any file is invalid.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/minesweeper/game/config"
	"github.com/wricardo/minesweeper/game/engine"
)

// maxRecommendedDensity is the mine density above which a preset is reported as a warning
const maxRecommendedDensity = 0.5

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File     string
	Name     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	cfg, err := engine.ParseGameConfig(data, filePath)
	if err != nil {
		result.fail("Invalid preset: %v", err)
		return result
	}
	result.Name = cfg.Name

	if strings.TrimSpace(cfg.Name) == "" {
		result.fail("name is required")
	}

	if cfg.Rows < engine.MinDimension || cfg.Rows > engine.MaxDimension {
		result.fail("rows must be between %d and %d, got %d", engine.MinDimension, engine.MaxDimension, cfg.Rows)
	}
	if cfg.Cols < engine.MinDimension || cfg.Cols > engine.MaxDimension {
		result.fail("cols must be between %d and %d, got %d", engine.MinDimension, engine.MaxDimension, cfg.Cols)
	}

	cells := cfg.Rows * cfg.Cols
	if cfg.Mines < engine.MinMines {
		result.fail("mines must not be negative, got %d", cfg.Mines)
	} else if cells > 0 && cfg.Mines >= cells {
		result.fail("mines must be less than rows*cols (%d), got %d", cells, cfg.Mines)
	}

	if !result.Valid {
		return result
	}

	density := float64(cfg.Mines) / float64(cells)
	if density > maxRecommendedDensity {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Mine density %.0f%% is above %.0f%%; boards will rarely be solvable without guessing", density*100, maxRecommendedDensity*100))
	}
	if cfg.Mines == 0 {
		result.Warnings = append(result.Warnings, "Board has no mines; the first reveal wins")
	}
	if id := strings.TrimSuffix(result.File, filepath.Ext(result.File)); id != cfg.Name {
		result.Info = append(result.Info, fmt.Sprintf("✓ Config ID: %s", id))
	}

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", cfg.Name),
		fmt.Sprintf("✓ Board: %dx%d", cfg.Rows, cfg.Cols),
		fmt.Sprintf("✓ Mines: %d (%.1f%% density)", cfg.Mines, density*100),
		fmt.Sprintf("✓ Safe cells: %d", cfg.SafeCells()),
	)

	return result
}

// presetFiles lists the preset files of dir in name order
func presetFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !config.IsPresetFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// validateDir validates every preset in dir and flags duplicate names
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := presetFiles(dir)
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(files))
	seen := make(map[string]string)
	for _, file := range files {
		result := validateConfig(file)
		if result.Valid {
			if first, ok := seen[result.Name]; ok {
				result.Warnings = append(result.Warnings, fmt.Sprintf("Name %q is also used by %s", result.Name, first))
			} else {
				seen[result.Name] = result.File
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// main validates the preset directory, printing a concise report and exiting
// with non-zero status if any file is invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDir(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Println("  ⚠️  " + warning)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Printf("✅ All %d configurations are valid!\n", len(results))
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
