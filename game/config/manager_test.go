package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/minesweeper/game/engine"
)

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Rows:        5,
		Cols:        6,
		Mines:       4,
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func writeRawFile(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "classic", engine.DefaultConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "classic" {
			t.Errorf("Expected classic default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory uses built-in default", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without presets, got %v", err)
		}
		def := manager.GetDefault()
		if def.Rows != 10 || def.Cols != 10 || def.Mines != 10 {
			t.Errorf("Expected built-in 10x10/10, got %+v", def)
		}
	})

	t.Run("first preset when classic missing", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "beta", createValidConfig())
		cfg := createValidConfig()
		cfg.Name = "Alpha"
		writeConfigFile(t, dir, "alpha", cfg)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Alpha" {
			t.Errorf("Expected Alpha default, got %s", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "valid", createValidConfig())
	writeRawFile(t, dir, "expert.yaml", "name: Expert\ndescription: Expert board\nrows: 16\ncols: 30\nmines: 99\n")
	writeRawFile(t, dir, "short.yml", "name: Short\nrows: 2\ncols: 2\nmines: 1\n")
	writeRawFile(t, dir, "broken.json", "{not json")
	writeRawFile(t, dir, "full.json", `{"name":"full","rows":3,"cols":3,"mines":9}`)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name      string
		preset    string
		wantName  string
		wantErrIs error
	}{
		{"json without extension", "valid", "Test Config", nil},
		{"json with extension", "valid.json", "Test Config", nil},
		{"yaml", "expert", "Expert", nil},
		{"yml", "short", "Short", nil},
		{"missing", "nope", "", ErrConfigNotFound},
		{"path traversal", "../valid", "", ErrConfigNotFound},
		{"empty name", "", "", ErrConfigNotFound},
		{"malformed", "broken", "", ErrInvalidConfig},
		{"too many mines", "full", "", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := manager.LoadConfig(tt.preset)
			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("Expected %v, got %v", tt.wantErrIs, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if config.Name != tt.wantName {
				t.Errorf("Expected %s, got %s", tt.wantName, config.Name)
			}
		})
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", engine.DefaultConfig())
	writeRawFile(t, dir, "expert.yaml", "name: Expert\nrows: 16\ncols: 30\nmines: 99\n")
	writeRawFile(t, dir, "broken.json", "{")
	writeRawFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 valid presets, got %d", len(configs))
	}

	if configs[0].ConfigID != "classic" || configs[0].Rows != 10 || configs[0].Mines != 10 {
		t.Errorf("Unexpected first preset %+v", configs[0])
	}
	if configs[1].ConfigID != "expert" || configs[1].Filename != "expert.yaml" || configs[1].Cols != 30 {
		t.Errorf("Unexpected second preset %+v", configs[1])
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", engine.DefaultConfig())
	writeConfigFile(t, dir, "small", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("small"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Test Config" {
		t.Errorf("Expected Test Config default, got %s", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	if err := manager.SaveConfig("custom", config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "custom.json")); err != nil {
		t.Errorf("Expected custom.json on disk: %v", err)
	}

	loaded, err := manager.LoadConfig("custom")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Rows != 5 || loaded.Cols != 6 || loaded.Mines != 4 {
		t.Errorf("Unexpected loaded config %+v", loaded)
	}

	invalid := createValidConfig()
	invalid.Mines = 30
	if err := manager.SaveConfig("bad", invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := manager.SaveConfig("../escape", config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for bad name, got %v", err)
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", engine.DefaultConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	updated := engine.DefaultConfig()
	updated.Mines = 20
	writeConfigFile(t, dir, "classic", updated)

	cached, _ := manager.LoadConfig("classic")
	if cached.Mines != 10 {
		t.Errorf("Expected cached value 10, got %d", cached.Mines)
	}

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if manager.GetDefault().Mines != 20 {
		t.Errorf("Expected refreshed default with 20 mines, got %d", manager.GetDefault().Mines)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", engine.DefaultConfig())
	writeConfigFile(t, dir, "small", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadConfig("small"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := manager.ListConfigs(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent access error: %v", err)
	}
}
