// Package session keeps the live Minesweeper sessions of a server process.
//
// A Session owns one board engine, its play timer, and creation / last access
// timestamps. Sessions live in memory only; restarting the server discards
// them.
//
// Identifiers are 4-character hex strings drawn from crypto/rand and retried
// on collision. Callers may also supply their own ID. Lookups and duplicate
// checks ignore case.
//
// Manager is safe for concurrent use. Engines are created through an
// EngineFactory, which tests replace to get fixed mine layouts:
//
//	manager := session.NewManagerWithEngineFactory(func(cfg *engine.GameConfig) (*engine.GameEngine, error) {
//		return engine.NewEngineWithMines(cfg, []engine.Position{{Row: 0, Col: 0}})
//	})
//
//	sess, err := manager.Create("", cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess, err = manager.Get(sess.ID)
//
// Idle sessions are removed by CleanupExpiredSessions, which the server runs
// periodically.
package session
