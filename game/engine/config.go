package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the reference 10x10 board with 10 mines
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Classic 10x10 board with 10 mines",
		Rows:        10,
		Cols:        10,
		Mines:       10,
	}
}

// ValidateGameConfig validates a board configuration
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.Rows < MinDimension || config.Rows > MaxDimension {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinDimension, MaxDimension, config.Rows)
	}
	if config.Cols < MinDimension || config.Cols > MaxDimension {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", MinDimension, MaxDimension, config.Cols)
	}

	cells := config.Rows * config.Cols
	if config.Mines < MinMines {
		return fmt.Errorf("config validation: mines must not be negative, got %d", config.Mines)
	}
	if config.Mines >= cells {
		return fmt.Errorf("config validation: mines must be less than rows*cols (%d), got %d", cells, config.Mines)
	}

	return nil
}

// ParseGameConfig decodes a preset. The format is chosen from the file extension:
// ".yaml" and ".yml" are YAML, anything else is JSON.
func ParseGameConfig(data []byte, filename string) (*GameConfig, error) {
	var config GameConfig

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config '%s': %w", filename, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json config '%s': %w", filename, err)
		}
	}

	return &config, nil
}

// LoadGameConfig loads and validates a preset file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(data, filename)
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// newGameState allocates an empty board for the configuration in setup status
func newGameState(config *GameConfig) *GameState {
	grid := make([][]Cell, config.Rows)
	for r := range grid {
		grid[r] = make([]Cell, config.Cols)
	}

	return &GameState{
		ConfigName:     config.Name,
		Rows:           config.Rows,
		Cols:           config.Cols,
		Mines:          config.Mines,
		Grid:           grid,
		RevealedCells:  0,
		RemainingFlags: config.Mines,
		Status:         StatusSetup,
		CommandHistory: []CommandHistoryEntry{},
	}
}
