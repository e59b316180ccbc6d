// Package config provides board preset management for the Minesweeper server.
//
// The config package handles:
//   - Loading presets from JSON or YAML files
//   - Preset validation through the engine rules
//   - Default preset selection
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets live in a single directory. Each file defines a name, a
// description, the board dimensions and the mine count:
//
//	{"name": "beginner", "description": "9x9 with 10 mines", "rows": 9, "cols": 9, "mines": 10}
//
// Files ending in .yaml or .yml are read as YAML with the same keys.
// The preset identifier is the filename without its extension.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("expert")
//	defaultConfig := manager.GetDefault()
//	presets, err := manager.ListConfigs()
//
// The default preset is "classic" when present, otherwise the first valid
// preset in the directory, otherwise a built-in 10x10 board with 10 mines.
package config
