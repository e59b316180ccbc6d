// Package engine provides the core board logic for Minesweeper.
//
// The engine package implements the game mechanics including:
//   - Mine placement, either random or from a fixed layout
//   - Adjacency counting and flood reveal of empty regions
//   - Flag toggling within a budget equal to the mine count
//   - Win and loss detection
//   - Configuration parsing and validation
//
// Core Types:
//
// The Engine interface defines the main contract for board operations,
// implemented by GameEngine. GameState holds the full board including mine
// positions, while BoardView is the projection a player is allowed to see.
// Commands return a slice of Event values describing every change in the
// order it happened.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	events, err := gameEngine.Reveal(4, 4)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Print(gameEngine.View())
//
// Game Rules:
//
// Revealing a mine loses the game. Revealing a cell with no adjacent mines
// opens its whole empty region plus the numbered border around it. The game
// is won once every non-mine cell is revealed; flags are not required.
package engine
