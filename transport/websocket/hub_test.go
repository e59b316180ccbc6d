package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/minesweeper/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func testBoard() *engine.BoardView {
	return &engine.BoardView{
		GameID:         "game-1",
		Rows:           2,
		Cols:           2,
		Mines:          1,
		RemainingFlags: 1,
		Status:         engine.StatusInProgress,
		Display:        []string{"1#", "##"},
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.direct == nil {
		t.Error("Hub outbound channels are nil")
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub registration channels are nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}

	// Unregistering twice must not panic on the closed channel
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
	hub.registerClient(client1)
	hub.registerClient(client2)

	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)

	if hub.ClientCount(sessionID) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount(sessionID))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessageScopedToSession(t *testing.T) {
	hub := NewHub()
	inSession := newTestClient(hub, "a")
	otherSession := newTestClient(hub, "b")
	hub.registerClient(inSession)
	hub.registerClient(otherSession)

	events := []engine.Event{{Type: engine.EventCellRevealed, Row: 0, Col: 0, AdjacentMines: 1}}
	hub.broadcastMessage(&Message{SessionID: "a", Event: EventBoardUpdate, Board: testBoard(), Events: events})

	select {
	case data := <-inSession.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventBoardUpdate || message.SessionID != "a" {
			t.Errorf("Unexpected message %+v", message)
		}
		if message.Board == nil || message.Board.Display[0] != "1#" {
			t.Errorf("Board not transmitted: %+v", message.Board)
		}
		if len(message.Events) != 1 || message.Events[0].Type != engine.EventCellRevealed {
			t.Errorf("Events not transmitted: %+v", message.Events)
		}
	default:
		t.Fatal("Expected message for session a")
	}

	select {
	case <-otherSession.send:
		t.Error("Client of another session received the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: EventTimerTick})

	if hub.ClientCount("slow") != 0 {
		t.Error("Expected slow client to be dropped")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", EventTimerTick, map[string]int{"elapsed_seconds": 7})

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" || message.Event != EventTimerTick {
			t.Errorf("Unexpected message %+v", message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message queued")
	}
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "s")
	hub.registerClient(client)

	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	hub.Shutdown()
	hub.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
	if hub.ClientCount("s") != 0 {
		t.Error("Expected clients to be disconnected")
	}

	// Broadcasting after shutdown must not block
	hub.BroadcastBoard("s", testBoard(), nil)
}

func startTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(sessionID) != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients in %s, got %d", n, sessionID, hub.ClientCount(sessionID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return message
}

func TestWebSocketConnectAndDisconnect(t *testing.T) {
	hub := NewHub()
	server := startTestServer(t, hub)

	conn := dial(t, server, "ws-test")
	waitForClients(t, hub, "ws-test", 1)

	conn.Close()
	waitForClients(t, hub, "ws-test", 0)
}

func TestWebSocketBoardUpdate(t *testing.T) {
	hub := NewHub()
	server := startTestServer(t, hub)

	conn := dial(t, server, "msg-test")
	waitForClients(t, hub, "msg-test", 1)

	hub.BroadcastBoard("msg-test", testBoard(), []engine.Event{{Type: engine.EventTimerStarted}})
	hub.BroadcastEvent("msg-test", EventTimerTick, map[string]int{"elapsed_seconds": 1})

	first := readMessage(t, conn)
	if first.Event != EventBoardUpdate || first.Board == nil || first.Board.GameID != "game-1" {
		t.Errorf("Unexpected board update %+v", first)
	}

	second := readMessage(t, conn)
	if second.Event != EventTimerTick {
		t.Errorf("Expected timer_tick, got %s", second.Event)
	}
}

func TestWebSocketClientCommands(t *testing.T) {
	hub := NewHub()

	received := make(chan ClientCommand, 1)
	hub.SetCommandHandler(CommandHandlerFunc(func(ctx context.Context, sessionID string, cmd ClientCommand) error {
		if cmd.Action == "explode" {
			return errors.New("unknown action: explode")
		}
		received <- cmd
		return nil
	}))

	server := startTestServer(t, hub)
	conn := dial(t, server, "cmd-test")
	waitForClients(t, hub, "cmd-test", 1)

	if err := conn.WriteJSON(ClientCommand{Action: "reveal", Row: 2, Col: 3}); err != nil {
		t.Fatalf("Failed to send command: %v", err)
	}
	select {
	case cmd := <-received:
		if cmd.Action != "reveal" || cmd.Row != 2 || cmd.Col != 3 {
			t.Errorf("Unexpected command %+v", cmd)
		}
	case <-time.After(time.Second):
		t.Fatal("Command not dispatched")
	}

	if err := conn.WriteJSON(ClientCommand{Action: "explode"}); err != nil {
		t.Fatalf("Failed to send command: %v", err)
	}
	message := readMessage(t, conn)
	if message.Event != EventCommandError {
		t.Fatalf("Expected command_error, got %+v", message)
	}
	data, _ := message.Data.(map[string]interface{})
	if data["error"] != "unknown action: explode" {
		t.Errorf("Unexpected error payload %v", message.Data)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{broken")); err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}
	if message := readMessage(t, conn); message.Event != EventCommandError {
		t.Errorf("Expected command_error for malformed JSON, got %s", message.Event)
	}
}
