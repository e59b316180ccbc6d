package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/minesweeper/game/engine"
	"github.com/wricardo/minesweeper/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Minesweeper",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Minesweeper - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Reveal every cell that does not hide a mine. Revealing a mine loses the game.

AVAILABLE TOOLS:
- create_session: Create a new game session
- list_sessions: List all active sessions
- get_session: Get session details
- board_state: Show the board
- reveal: Reveal a cell (row, col)
- toggle_flag: Place or remove a flag (row, col)
- new_game: Start a fresh board in the same session
- command_history: View past commands
- list_configs: List board presets
- game_instructions: Rules and board legend
- describe_cell: Details about one cell`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func cellProperties() map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionProperty(),
		"row": map[string]interface{}{
			"type":        "integer",
			"description": "Row of the cell (0-based, top to bottom)",
		},
		"col": map[string]interface{}{
			"type":        "integer",
			"description": "Column of the cell (0-based, left to right)",
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional preset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use, e.g. beginner, intermediate, expert (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Board operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Show the current board of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reveal",
		Description: "Reveal a cell. Revealing a cell with no adjacent mines opens its whole empty region.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cellProperties(),
			Required:   []string{"session_id", "row", "col"},
		},
	}, c.handleReveal)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "toggle_flag",
		Description: "Place a flag on a hidden cell, or remove an existing flag",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cellProperties(),
			Required:   []string{"session_id", "row", "col"},
		},
	}, c.handleToggleFlag)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new board with the session's preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command_history",
		Description: "Get command history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc, newest first)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleCommandHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get game instructions and the board legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about what is visible at a cell",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cellProperties(),
			Required:   []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

// intArg reads an integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func cellArgs(request mcp.CallToolRequest) (string, int, int, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", 0, 0, fmt.Errorf("session_id is required")
	}
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return "", 0, 0, fmt.Errorf("row and col are required integers")
	}
	return sessionID, row, col, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "unknown"
		if s.Board != nil {
			status = string(s.Board.Status)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Status: %s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var board engine.BoardView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/board"), nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(&board)), nil
}

func (c *Client) handleReveal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.cellCommand(ctx, request, "/reveal")
}

func (c *Client) handleToggleFlag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.cellCommand(ctx, request, "/flag")
}

func (c *Client) cellCommand(ctx context.Context, request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	sessionID, row, col, err := cellArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]int{"row": row, "col": col}

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, suffix), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/new-game"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleCommandHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %dx%d, Mines: %d\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Rows, cfg.Cols, cfg.Mines)
	}

	return mcp.NewToolResultText(b.String()), nil
}

const instructions = `Minesweeper - Instructions

GAME OBJECTIVE:
Reveal every cell that does not hide a mine. The game is won the moment the
last safe cell is revealed, and lost the moment a mine is revealed.

BOARD LEGEND:
• # - Hidden cell
• F - Flagged cell
• . - Revealed cell with no adjacent mines
• 1-8 - Revealed cell with that many mines among its 8 neighbours
• * - Mine (shown only after the game ends)
• X - The mine that was revealed and ended the game

Coordinates are (row, col), 0-based, with (0,0) in the top-left corner.
The board display prints column digits on top and row numbers on the left.

COMMANDS:
• reveal(row, col) - Opens a cell. A cell with no adjacent mines opens its
  whole empty region and the numbered border around it. Flags inside that
  region are cleared and returned to the budget.
• toggle_flag(row, col) - Marks a hidden cell as a suspected mine, or removes
  the mark. You have one flag per mine.
• new_game - Discards the board and places new mines.

NO-OPS (accepted=false, nothing changes):
• Revealing a cell that is already revealed or flagged
• Flagging a revealed cell
• Flagging when no flags remain

ERRORS:
• Coordinates outside the board
• Any reveal or flag after the game has ended (use new_game)

The timer starts with the first command of each game and stops when the game ends.

STRATEGY:
• A number N means exactly N of the surrounding hidden cells are mines.
• If a number already touches N flags, its other hidden neighbours are safe.
• If a number has exactly N hidden neighbours, they are all mines.
• Corners and edges have fewer neighbours, which makes them easier to reason about.`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, row, col, err := cellArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var board engine.BoardView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/board"), nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if row < 0 || row >= board.Rows || col < 0 || col >= board.Cols {
		return mcp.NewToolResultError(fmt.Sprintf("Cell (%d, %d) is out of bounds. Board is %dx%d (rows 0-%d, cols 0-%d)",
			row, col, board.Rows, board.Cols, board.Rows-1, board.Cols-1)), nil
	}

	cell := board.Cells[row][col]
	result := fmt.Sprintf(`Cell (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Symbol: %s
State: %s
%s`,
		row, col, cell.Symbol(), cell.State, describeCell(cell, board.Status))

	return mcp.NewToolResultText(result), nil
}

func describeCell(cell engine.CellView, status engine.GameStatus) string {
	switch cell.State {
	case engine.CellRevealed:
		if cell.AdjacentMines == 0 {
			return "Revealed, no adjacent mines."
		}
		return fmt.Sprintf("Revealed, %d adjacent mine(s).", cell.AdjacentMines)
	case engine.CellFlagged:
		return "Flagged as a suspected mine. Toggle the flag before revealing it."
	case engine.CellMine:
		return "Mine."
	case engine.CellDetonated:
		return "The mine that ended the game."
	default:
		if status.IsTerminal() {
			return "Hidden safe cell."
		}
		return "Hidden. It may or may not be a mine."
	}
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nCommands: %d\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.TotalCommands)
	if session.Board != nil {
		result += "\n" + formatBoard(session.Board)
	}
	return result
}

func formatBoard(board *engine.BoardView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Board %dx%d, %d mines\n", board.Rows, board.Cols, board.Mines)
	fmt.Fprintf(&b, "Status: %s\n", statusLine(board.Status))
	fmt.Fprintf(&b, "Flags left: %d | Safe cells left: %d\n\n", board.RemainingFlags, board.SafeCellsLeft)
	b.WriteString(board.String())
	if board.Message != "" {
		b.WriteString("\n" + board.Message + "\n")
	}

	return b.String()
}

func statusLine(status engine.GameStatus) string {
	switch status {
	case engine.StatusWon:
		return "🎉 VICTORY!"
	case engine.StatusLost:
		return "💥 GAME OVER"
	case engine.StatusInProgress:
		return "In progress"
	default:
		return string(status)
	}
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder

	switch {
	case result.Position != nil && result.Accepted:
		fmt.Fprintf(&b, "%s (%d, %d): accepted\n", result.Action, result.Position.Row, result.Position.Col)
	case result.Position != nil:
		fmt.Fprintf(&b, "%s (%d, %d): no change\n", result.Action, result.Position.Row, result.Position.Col)
	default:
		fmt.Fprintf(&b, "%s\n", result.Action)
	}

	if summary := summarizeEvents(result.Events); summary != "" {
		b.WriteString(summary + "\n")
	}
	fmt.Fprintf(&b, "Time: %ds\n\n", result.Timer.ElapsedSeconds)

	if result.Board != nil {
		b.WriteString(formatBoard(result.Board))
	}

	return b.String()
}

func summarizeEvents(events []engine.Event) string {
	var revealed, mines int
	var parts []string
	for _, e := range events {
		switch e.Type {
		case engine.EventCellRevealed:
			revealed++
		case engine.EventMineRevealed:
			mines++
		case engine.EventFlagChanged:
			if e.Flagged {
				parts = append(parts, fmt.Sprintf("flag placed at (%d, %d)", e.Row, e.Col))
			} else {
				parts = append(parts, fmt.Sprintf("flag removed at (%d, %d)", e.Row, e.Col))
			}
		}
	}

	if revealed > 0 {
		parts = append([]string{fmt.Sprintf("%d cell(s) revealed", revealed)}, parts...)
	}
	if mines > 0 {
		parts = append(parts, fmt.Sprintf("%d mine(s) shown", mines))
	}
	return strings.Join(parts, ", ")
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Command History (Page %d/%d, Total: %d):\n\n",
		history.Page, history.TotalPages, history.TotalCommands)

	for _, cmd := range history.Commands {
		line := fmt.Sprintf("#%d: %s", cmd.CommandNumber, cmd.Action)
		if cmd.Action != engine.ActionNewGame {
			line += fmt.Sprintf(" (%d, %d)", cmd.Position.Row, cmd.Position.Col)
		}
		if !cmd.Accepted {
			line += " [no-op]"
		}
		fmt.Fprintf(&b, "%s -> %s\n", line, cmd.Status)
	}

	if history.HasNext {
		b.WriteString("\nMore commands available on the next page.\n")
	}

	return b.String()
}
