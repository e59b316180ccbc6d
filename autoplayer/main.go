// Command autoplayer plays Minesweeper against a running server through the
// REST API, using single-point deduction and guessing when stuck. It starts a
// new game for every attempt until one is won or the attempt limit is hit.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/minesweeper/game/engine"
	"github.com/wricardo/minesweeper/game/service"
)

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// do sends a JSON request and decodes the response into result
func (c *Client) do(method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) CreateSession(configID string) (*engine.BoardView, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var info service.SessionInfo
	if err := c.do(http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = info.ID
	return info.Board, nil
}

func (c *Client) Board() (*engine.BoardView, error) {
	var board engine.BoardView
	if err := c.do(http.MethodGet, c.sessionPath("/board"), nil, &board); err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return &board, nil
}

func (c *Client) NewGame() (*engine.BoardView, error) {
	var result service.CommandResult
	if err := c.do(http.MethodPost, c.sessionPath("/new-game"), nil, &result); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	return result.Board, nil
}

// Play sends move and returns the command result
func (c *Client) Play(move Move) (*service.CommandResult, error) {
	path := "/reveal"
	if move.Action == engine.ActionFlag {
		path = "/flag"
	}

	var result service.CommandResult
	body := map[string]int{"row": move.Row, "col": move.Col}
	if err := c.do(http.MethodPost, c.sessionPath(path), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// playGame plays board until it ends or maxMoves commands were sent
func playGame(client *Client, strategy *DeductionStrategy, board *engine.BoardView, maxMoves int, delay time.Duration) (*engine.BoardView, int, error) {
	moves := 0
	for moves < maxMoves {
		move, ok := strategy.NextMove(board)
		if !ok {
			break
		}

		result, err := client.Play(move)
		if err != nil {
			return board, moves, err
		}
		moves++
		board = result.Board

		log.WithFields(log.Fields{
			"action": move.Action,
			"row":    move.Row,
			"col":    move.Col,
			"guess":  move.Guess,
			"status": board.Status,
		}).Debug("move played")

		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return board, moves, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configID := flag.String("config", "", "Board preset ID (beginner, classic, intermediate, expert)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	maxMoves := flag.Int("max-moves", 5000, "Maximum moves per attempt")
	maxAttempts := flag.Int("max-attempts", 100, "Maximum attempts before giving up")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for guesses")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between moves in milliseconds (0 = no delay)")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	log.Infof("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	var board *engine.BoardView
	var err error
	if *continueSession != "" {
		client.sessionID = *continueSession
		board, err = client.Board()
		if err != nil {
			log.WithError(err).Fatal("Failed to resume session")
		}
		log.Infof("🔄 Resuming session: %s", client.sessionID)
	} else {
		board, err = client.CreateSession(*configID)
		if err != nil {
			log.WithError(err).Fatal("Failed to create session")
		}
		log.Infof("✨ Session created: %s", client.sessionID)
	}
	log.Infof("Board: %dx%d, %d mines", board.Rows, board.Cols, board.Mines)

	strategy := NewDeductionStrategy(*seed)
	delay := time.Duration(*delayMs) * time.Millisecond

	for attempt := 1; attempt <= *maxAttempts; attempt++ {
		if attempt > 1 || board.Status.IsTerminal() {
			if board, err = client.NewGame(); err != nil {
				log.WithError(err).Fatal("Failed to start a new game")
			}
		}
		strategy.Reset()

		var moves int
		board, moves, err = playGame(client, strategy, board, *maxMoves, delay)
		if err != nil {
			log.WithError(err).Errorf("Attempt %d aborted", attempt)
			continue
		}

		log.WithFields(log.Fields{
			"attempt": attempt,
			"moves":   moves,
			"deduced": strategy.deduced,
			"guesses": strategy.guesses,
			"opened":  board.RevealedCells,
		}).Infof("Attempt finished: %s", board.Status)

		if board.Status == engine.StatusWon {
			log.Infof("🎉 VICTORY! Won in attempt %d with %d moves", attempt, moves)
			log.Infof("Session: %s", client.sessionID)
			os.Exit(0)
		}
	}

	log.Errorf("❌ Failed to win after %d attempts", *maxAttempts)
	log.Infof("Session: %s", client.sessionID)
	os.Exit(1)
}
