package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/keystroke-games/typerace/game/engine"
	"github.com/keystroke-games/typerace/game/service"
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
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"TypeRace Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`TypeRace Server - MCP Interface

This is a thin client that proxies all requests to the REST API server.

TypeRace coordinates realtime multiplayer typing races. Players connect over
WebSocket, gather in rooms identified by 5-character codes, and race to type
the same passage. These tools give an operator a read view over active rooms
plus a couple of admin levers.

AVAILABLE TOOLS:
- list_rooms: List active rooms with member counts
- get_room: Full snapshot of one room (members, progress, placements)
- start_race: Start the race in a room
- restart_race: Fetch a fresh passage and return a room to the lobby`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all active race rooms",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get the full snapshot of a room: members, progress and placements",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "5-character room code",
				},
			},
			Required: []string{"code"},
		},
	}, c.handleGetRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_race",
		Description: "Start the race in a room and push the new state to connected players",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "5-character room code",
				},
			},
			Required: []string{"code"},
		},
	}, c.handleStartRace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_race",
		Description: "Fetch a fresh passage, clear progress and placements, and return the room to the lobby",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "5-character room code",
				},
			},
			Required: []string{"code"},
		},
	}, c.handleRestartRace)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
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

// Tool handlers

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                   `json:"count"`
		Rooms []service.RoomSummary `json:"rooms"`
	}

	err := c.apiCall("GET", "/api/rooms", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Rooms (%d):\n\n", response.Count)
	for _, r := range response.Rooms {
		phase := "lobby"
		if r.Started {
			phase = "racing"
		}
		result += fmt.Sprintf("- %s (%d members, %s, last activity %s)\n",
			r.Code, r.MemberCount, phase, r.LastActivityAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	code, _ := args["code"].(string)

	var room engine.Room
	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s", code), nil, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoom(&room)), nil
}

func (c *Client) handleStartRace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	code, _ := args["code"].(string)

	var room engine.Room
	err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%s/start", code), nil, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Race started in %s\n\n%s", code, formatRoom(&room))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRestartRace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	code, _ := args["code"].(string)

	var room engine.Room
	err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%s/restart", code), nil, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Race restarted in %s with a fresh passage\n\n%s", code, formatRoom(&room))
	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

func formatRoom(room *engine.Room) string {
	var b strings.Builder

	phase := "lobby"
	if room.Started {
		phase = "racing"
	}
	b.WriteString(fmt.Sprintf("Room %s | %s | %d members\n", room.Code, phase, len(room.Players)))

	if room.Text != "" {
		b.WriteString(fmt.Sprintf("Passage: %s\n", room.Text))
	} else {
		b.WriteString("Passage: (none)\n")
	}

	b.WriteString("\nMembers:\n")
	for _, m := range room.Players {
		role := ""
		if m.IsHost {
			role = " [host]"
		}
		line := fmt.Sprintf("- %s%s: %.0f%%", m.Nick, role, m.Progress*100)
		if m.Place != "" {
			line += fmt.Sprintf(" (%s)", m.Place)
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}
