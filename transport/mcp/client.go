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
	"github.com/samber/lo"

	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/scores"
	"github.com/wricardo/mcp-training/tilemerge/game/service"
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
		baseURL: baseURL,
		httpClient: &http.Client{
			// waited simulations can run for a while
			Timeout: 5 * time.Minute,
		},
	}

	c.initMCPServer()
	return c
}

const instructions = `Tile Merge - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide the tiles on a square board. Two tiles of equal value that collide merge
into one tile of twice the value and the merged value is added to the score.
After every move that changes the board a new 2 (90%) or 4 (10%) appears.
Reach the win tile (2048 on the classic board) and keep going for a high score.
The game is over when no move changes the board.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage games
- game_state: show the board
- move: slide up/down/left/right - requires intent explanation
- restart_game / keep_playing: start over, or continue after a win
- best_move: ask the expectimax player for a suggestion
- evaluate_board: heuristic breakdown of the board
- simulate / simulation_status / stop_simulation: let the player drive toward a target score
- list_configs: board profiles
- top_scores: best recorded games

NOTE: The 'intent' parameter on move serves as rubber duck debugging - explain your reasoning!`

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tile Merge",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)

	c.registerTools()
}

var sessionIDProperty = map[string]any{
	"type":        "string",
	"description": "Session ID",
}

func sessionTool(name, description string, extra map[string]any, required ...string) mcp.Tool {
	props := map[string]any{"session_id": sessionIDProperty}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   append([]string{"session_id"}, required...),
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_name": map[string]any{
					"type":        "string",
					"description": "Name of the config to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(sessionTool("get_session", "Get details of a specific session", nil), c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(sessionTool("game_state", "Get the current game state", nil), c.handleGameState)

	c.mcpServer.AddTool(sessionTool("move", "Slide every tile in a direction", map[string]any{
		"direction": map[string]any{
			"type":        "string",
			"enum":        []string{"up", "down", "left", "right"},
			"description": "Direction to move",
		},
		"intent": map[string]any{
			"type":        "string",
			"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
		},
	}, "direction"), c.handleMove)

	c.mcpServer.AddTool(sessionTool("restart_game", "Start a new game in the session", nil), c.handleRestart)
	c.mcpServer.AddTool(sessionTool("keep_playing", "Continue a won game", nil), c.handleKeepPlaying)

	// Automated play
	c.mcpServer.AddTool(sessionTool("best_move", "Suggest the best direction without moving", map[string]any{
		"depth": map[string]any{
			"type":        "integer",
			"description": "Search depth (optional, adaptive when omitted)",
		},
	}), c.handleBestMove)

	c.mcpServer.AddTool(sessionTool("evaluate_board", "Heuristic breakdown of the current board", nil), c.handleEvaluate)

	c.mcpServer.AddTool(sessionTool("simulate", "Let the automated player drive toward a target score", map[string]any{
		"target_score": map[string]any{
			"type":        "integer",
			"description": "Score to reach (optional, defaults to current score + 2048)",
		},
		"max_moves": map[string]any{
			"type":        "integer",
			"description": "Move budget (optional)",
		},
		"wait": map[string]any{
			"type":        "boolean",
			"description": "Wait for the run to finish instead of running in the background",
		},
	}), c.handleSimulate)

	c.mcpServer.AddTool(sessionTool("simulation_status", "Progress of the session's simulation", nil), c.handleSimulationStatus)
	c.mcpServer.AddTool(sessionTool("stop_simulation", "Stop the session's simulation", nil), c.handleStopSimulation)

	// Configuration and scores
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board profiles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "top_scores",
		Description: "Best recorded games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Number of games to return (default 10)",
				},
			},
		},
	}, c.handleTopScores)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
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

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func sessionPath(args map[string]any, suffix string) string {
	sessionID, _ := args["session_id"].(string)
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configName, _ := arguments(request)["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Active sessions (%d):\n", response.Count))
	for _, session := range response.Sessions {
		result.WriteString(formatSessionInfo(session))
		result.WriteString("\n")
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(arguments(request), ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session) + "\n\n" + formatGameState(session.GameState)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(arguments(request), "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	direction, _ := args["direction"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	var result service.MoveResult
	err := c.apiCall(ctx, "POST", sessionPath(args, "/move"), map[string]string{"direction": direction}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) stateAction(ctx context.Context, request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(arguments(request), suffix), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateAction(ctx, request, "/restart")
}

func (c *Client) handleKeepPlaying(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateAction(ctx, request, "/keep-playing")
}

func (c *Client) handleBestMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path := sessionPath(args, "/best-move")
	if depth := intArg(args, "depth"); depth > 0 {
		path += fmt.Sprintf("?depth=%d", depth)
	}

	var best service.BestMoveResult
	if err := c.apiCall(ctx, "GET", path, nil, &best); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if best.Direction == engine.NoDirection.String() {
		return mcp.NewToolResultText("No move changes the board"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Best move: %s (score %.1f, %s search, depth %d)",
		best.Direction, best.Score, best.Mode, best.Depth)), nil
}

func (c *Client) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var eval service.EvaluateResult
	if err := c.apiCall(ctx, "GET", sessionPath(arguments(request), "/evaluate"), nil, &eval); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b := eval.Breakdown
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Empty cells: %d | Max tile: %d | Risk: %s\n", eval.EmptyCells, eval.MaxTile, eval.Risk))
	result.WriteString(fmt.Sprintf("Possible moves: %s\n\n", strings.Join(eval.PossibleMoves, ", ")))
	result.WriteString(fmt.Sprintf("empty_cells     %10.2f\n", b.EmptyCells))
	result.WriteString(fmt.Sprintf("smoothness      %10.2f\n", b.Smoothness))
	result.WriteString(fmt.Sprintf("monotonicity    %10.2f\n", b.Monotonicity))
	result.WriteString(fmt.Sprintf("max_tile        %10.2f\n", b.MaxTile))
	result.WriteString(fmt.Sprintf("corner          %10.2f\n", b.Corner))
	result.WriteString(fmt.Sprintf("edge            %10.2f\n", b.Edge))
	result.WriteString(fmt.Sprintf("merge_potential %10.2f\n", b.MergePotential))
	result.WriteString(fmt.Sprintf("total           %10.2f", b.Total))
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleSimulate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	wait, _ := args["wait"].(bool)
	body := map[string]any{
		"target_score": intArg(args, "target_score"),
		"max_moves":    intArg(args, "max_moves"),
		"wait":         wait,
	}

	var status service.SimulationStatus
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/simulation"), body, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSimulationStatus(&status)), nil
}

func (c *Client) handleSimulationStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status service.SimulationStatus
	if err := c.apiCall(ctx, "GET", sessionPath(arguments(request), "/simulation"), nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSimulationStatus(&status)), nil
}

func (c *Client) handleStopSimulation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status service.SimulationStatus
	if err := c.apiCall(ctx, "DELETE", sessionPath(arguments(request), "/simulation"), nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSimulationStatus(&status)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []*config.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	lines := lo.Map(configs, func(ci *config.ConfigInfo, _ int) string {
		return fmt.Sprintf("- %s: %s (%dx%d, win at %d)", ci.ConfigID, ci.Description, ci.GridSize, ci.GridSize, ci.WinValue)
	})
	return mcp.NewToolResultText("Available configs:\n" + strings.Join(lines, "\n")), nil
}

func (c *Client) handleTopScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/scores"
	if limit := intArg(arguments(request), "limit"); limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var response struct {
		Scores []scores.Entry `json:"scores"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(response.Scores) == 0 {
		return mcp.NewToolResultText("No games recorded yet"), nil
	}

	var result strings.Builder
	for i, e := range response.Scores {
		verdict := "valid"
		if !e.Valid {
			verdict = "rejected: " + e.Reason
		}
		result.WriteString(fmt.Sprintf("%2d. %7d  max %5d  %s  %d turns  (%s)\n",
			i+1, e.Score, e.MaxTile, e.ConfigID, e.Turns, verdict))
	}
	return mcp.NewToolResultText(result.String()), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	line := fmt.Sprintf("- %s (config: %s, best: %d, last accessed: %s)",
		session.ID, session.ConfigName, session.BestScore, session.LastAccessedAt.Format(time.RFC3339))
	if session.Simulating {
		line += " [simulating]"
	}
	return line
}

func formatGameState(state *engine.GameState) string {
	if state == nil || state.Grid == nil {
		return "No game state available"
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Score: %d | Turns: %d | Max tile: %d\n\n",
		state.Score, state.TurnCount, state.Grid.MaxValue()))
	result.WriteString(state.Grid.String())

	switch {
	case state.Over:
		result.WriteString("\nGAME OVER")
	case state.Won && !state.KeepPlaying:
		result.WriteString("\nYOU WIN! Use keep_playing to continue")
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var out strings.Builder
	out.WriteString(result.Message)
	if len(result.Merges) > 0 {
		out.WriteString(fmt.Sprintf(" (+%d from merges %v)", result.ScoreGained, result.Merges))
	}
	out.WriteString(fmt.Sprintf("\nBest score: %d\n\n", result.BestScore))
	out.WriteString(formatGameState(result.GameState))
	return out.String()
}

func formatSimulationStatus(status *service.SimulationStatus) string {
	var out strings.Builder
	state := "running"
	if !status.Running {
		state = "finished: " + status.Reason
		if status.Succeeded {
			state += " (target reached)"
		}
	}
	out.WriteString(fmt.Sprintf("Simulation %s\nTarget: %d | Score: %d | Max tile: %d | Moves: %d | Retries: %d",
		state, status.TargetScore, status.Score, status.MaxTile, status.Moves, status.Retries))
	if status.GameState != nil {
		out.WriteString("\n\n")
		out.WriteString(formatGameState(status.GameState))
	}
	return out.String()
}
