package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/wricardo/minesweeper/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Board:          sess.Engine.View(),
		GameConfig:     sess.Config,
		Timer:          sess.Timer.Snapshot(),
		TotalCommands:  sess.Engine.GetState().TotalCommands,
	}
}

// getSession looks up a session and marks it as accessed. Callers hold the
// write lock: LastAccessedAt is read by sessionInfo under the read lock.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("config '%s' (available: %v): %w", configName, configIDs, err)
			}
			return nil, fmt.Errorf("config '%s': %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return s.sessionInfo(session, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// Reveal opens a cell on the session board
func (s *gameServiceImpl) Reveal(ctx context.Context, sessionID string, row, col int) (*CommandResult, error) {
	return s.runCommand(sessionID, engine.ActionReveal, row, col, func(e *engine.GameEngine) ([]engine.Event, error) {
		return e.Reveal(row, col)
	})
}

// ToggleFlag places or removes a flag on the session board
func (s *gameServiceImpl) ToggleFlag(ctx context.Context, sessionID string, row, col int) (*CommandResult, error) {
	return s.runCommand(sessionID, engine.ActionFlag, row, col, func(e *engine.GameEngine) ([]engine.Event, error) {
		return e.ToggleFlag(row, col)
	})
}

func (s *gameServiceImpl) runCommand(sessionID, action string, row, col int, run func(*engine.GameEngine) ([]engine.Event, error)) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events, err := run(sess.Engine)
	if err != nil {
		return nil, fmt.Errorf("%s (%d,%d): %w", action, row, col, err)
	}
	sess.Timer.Apply(events)

	if events == nil {
		events = []engine.Event{}
	}

	state := sess.Engine.GetState()
	accepted := false
	if last := sess.Engine.GetLastCommand(); last != nil {
		accepted = last.Accepted
	}

	return &CommandResult{
		SessionID: sess.ID,
		Accepted:  accepted,
		Action:    action,
		Position:  &engine.Position{Row: row, Col: col},
		Status:    state.Status,
		Message:   state.Message,
		Events:    events,
		Board:     sess.Engine.View(),
		Timer:     sess.Timer.Snapshot(),
	}, nil
}

// NewGame replaces the session board with a fresh one of the same preset
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state, err := sess.Engine.NewGame()
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	sess.Timer.Reset()

	return &CommandResult{
		SessionID: sess.ID,
		Accepted:  true,
		Action:    engine.ActionNewGame,
		Status:    state.Status,
		Message:   state.Message,
		Events:    []engine.Event{},
		Board:     sess.Engine.View(),
		Timer:     sess.Timer.Snapshot(),
	}, nil
}

// GetBoard returns the player-visible board of a session
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string) (*engine.BoardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.View(), nil
}

// GetCommandHistory returns paginated command history
func (s *gameServiceImpl) GetCommandHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetCommandHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	commands := []engine.CommandHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				commands = append(commands, history[i])
			}
		} else {
			commands = append(commands, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Commands:      commands,
		TotalCommands: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}, nil
}

// ActiveTimers returns the running timers, sorted by session ID
func (s *gameServiceImpl) ActiveTimers(ctx context.Context) ([]SessionTimer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var timers []SessionTimer
	for _, sess := range s.sessions.List() {
		if sess.Timer == nil || !sess.Timer.Running() {
			continue
		}
		timers = append(timers, SessionTimer{SessionID: sess.ID, Timer: sess.Timer.Snapshot()})
	}

	sort.Slice(timers, func(i, j int) bool {
		return timers[i].SessionID < timers[j].SessionID
	})

	return timers, nil
}

// ListConfigs returns available board presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a board preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if config == nil {
		return errors.New("config is required")
	}
	return s.configs.SaveConfig(configName, config)
}
