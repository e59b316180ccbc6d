package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/minesweeper/api"
	"github.com/wricardo/minesweeper/game/engine"
	"github.com/wricardo/minesweeper/game/session"
	"github.com/wricardo/minesweeper/transport/mcp"
	"github.com/wricardo/minesweeper/transport/websocket"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Minesweeper Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

// parseOptions runs the command tree with the root action replaced
func parseOptions(t *testing.T, args ...string) options {
	t.Helper()
	app := newApp()
	var got options
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		got = optionsFromCommand(cmd)
		return nil
	}
	if err := app.Run(context.Background(), append([]string{"minesweeper"}, args...)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return got
}

func TestFlagDefaults(t *testing.T) {
	opts := parseOptions(t)

	if opts.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", opts.Port)
	}
	if opts.Host != "localhost" {
		t.Errorf("Expected default host localhost, got %s", opts.Host)
	}
	if opts.ConfigDir != "configs" {
		t.Errorf("Expected default config dir configs, got %s", opts.ConfigDir)
	}
	if opts.Debug || opts.NgrokEnabled {
		t.Error("Debug and ngrok should be off by default")
	}
	if opts.addr() != "localhost:8080" {
		t.Errorf("Unexpected addr %s", opts.addr())
	}
}

func TestFlagsAndEnvironment(t *testing.T) {
	t.Setenv("CONFIG_DIR", "/tmp/presets")
	t.Setenv("NGROK_AUTH_TOKEN", "secret")

	opts := parseOptions(t, "--port", "9090", "--debug", "--ngrok")

	if opts.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", opts.Port)
	}
	if !opts.Debug || !opts.NgrokEnabled {
		t.Error("Expected debug and ngrok to be enabled")
	}
	if opts.ConfigDir != "/tmp/presets" {
		t.Errorf("Expected CONFIG_DIR fallback, got %s", opts.ConfigDir)
	}
	if opts.NgrokAuth != "secret" {
		t.Errorf("Expected NGROK_AUTH_TOKEN fallback, got %q", opts.NgrokAuth)
	}
}

func TestCommands(t *testing.T) {
	app := newApp()

	expected := map[string][]string{
		"server":    {"http"},
		"stdio-mcp": {"mcp-stdio", "mcp"},
	}
	if len(app.Commands) != len(expected) {
		t.Fatalf("Expected %d commands, got %d", len(expected), len(app.Commands))
	}
	for _, cmd := range app.Commands {
		aliases, ok := expected[cmd.Name]
		if !ok {
			t.Errorf("Unexpected command %s", cmd.Name)
			continue
		}
		if strings.Join(cmd.Aliases, ",") != strings.Join(aliases, ",") {
			t.Errorf("Command %s: expected aliases %v, got %v", cmd.Name, aliases, cmd.Aliases)
		}
		if cmd.Action == nil {
			t.Errorf("Command %s has no action", cmd.Name)
		}
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svc, err := initializeServices("configs")
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svc.game == nil || svc.sessions == nil || svc.configs == nil {
		t.Fatal("Expected all services to be initialized")
	}

	configs, err := svc.game.ListConfigs(context.Background())
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) == 0 {
		t.Error("Expected bundled presets to be listed")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	if _, err := initializeServices("/non/existent/path"); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func newTestServices(t *testing.T) *services {
	t.Helper()
	svc, err := initializeServices(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	return svc
}

func TestBroadcastTimers(t *testing.T) {
	svc := newTestServices(t)
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	ctx := context.Background()
	info, err := svc.game.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if sent := broadcastTimers(ctx, svc.game, hub); sent != 0 {
		t.Errorf("Expected no ticks before the first command, got %d", sent)
	}

	if _, err := svc.game.ToggleFlag(ctx, info.ID, 0, 0); err != nil {
		t.Fatalf("ToggleFlag failed: %v", err)
	}

	// A running timer without connected clients is skipped
	if sent := broadcastTimers(ctx, svc.game, hub); sent != 0 {
		t.Errorf("Expected no ticks without clients, got %d", sent)
	}

	apiServer := api.NewServer(svc.game, hub)
	httpServer := httptest.NewServer(apiServer)
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws?session=" + info.ID
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(info.ID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if sent := broadcastTimers(ctx, svc.game, hub); sent != 1 {
		t.Fatalf("Expected one tick, got %d", sent)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var message websocket.Message
	if err := conn.ReadJSON(&message); err != nil {
		t.Fatalf("Failed to read tick: %v", err)
	}
	if message.Event != websocket.EventTimerTick || message.SessionID != info.ID {
		t.Errorf("Unexpected message %+v", message)
	}
}

func TestSessionCleanupRoutineStops(t *testing.T) {
	manager := session.NewManager()
	if _, err := manager.Create("old1", engine.DefaultConfig()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, 5*time.Millisecond, 0)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for manager.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expired session was not cleaned up")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Cleanup routine did not stop")
	}
}

func TestMCPEndpoint(t *testing.T) {
	svc := newTestServices(t)
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	apiServer := api.NewServer(svc.game, hub)
	httpServer := httptest.NewUnstartedServer(nil)
	httpServer.Config.Handler = newHandler(apiServer, mcp.NewClient("http://"+httpServer.Listener.Addr().String()))
	httpServer.Start()
	defer httpServer.Close()

	t.Run("GET is rejected", func(t *testing.T) {
		resp, err := http.Get(httpServer.URL + "/mcp")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", resp.StatusCode)
		}
	})

	t.Run("tool call reaches the API", func(t *testing.T) {
		request := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"method":  "tools/call",
			"params": map[string]interface{}{
				"name":      "create_session",
				"arguments": map[string]interface{}{},
			},
		}
		body, _ := json.Marshal(request)

		resp, err := http.Post(httpServer.URL+"/mcp", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		defer resp.Body.Close()

		var rpc map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if _, ok := rpc["result"]; !ok {
			t.Fatalf("Expected result in JSON-RPC response, got %v", rpc)
		}

		sessions, err := svc.game.ListSessions(context.Background())
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}
		if len(sessions) != 1 {
			t.Errorf("Expected the tool call to create a session, got %d", len(sessions))
		}
	})

	t.Run("REST API is mounted at root", func(t *testing.T) {
		resp, err := http.Get(httpServer.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200, got %d", resp.StatusCode)
		}
		if !externalAPIAvailable(httpServer.URL) {
			t.Error("Expected external API to be detected")
		}
	})
}

func TestExternalAPIUnavailable(t *testing.T) {
	if externalAPIAvailable("http://127.0.0.1:1") {
		t.Error("Expected unreachable server to be reported unavailable")
	}
}
