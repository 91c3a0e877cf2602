package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nakatani/tankarena/api"
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
		"Tank Arena Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tank Arena - MCP Interface

This is a thin client that proxies all requests to the REST API server.

The server relays multiplayer tank battle state: rooms hold connected
players (avatars) and in-flight projectiles. Gameplay traffic flows over
WebSocket; these tools cover room management and state inspection.

AVAILABLE TOOLS:
- list_rooms: List all rooms with member and entity counts
- get_room: Get one room's info
- create_room: Create a new room
- delete_room: Delete a room (the default room is protected)
- room_state: Full avatar/projectile snapshot of a room`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all rooms with member and entity counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get details of a specific room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to retrieve",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleGetRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_room",
		Description: "Create a new room with an optional name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Display name for the room (optional)",
				},
			},
		},
	}, c.handleCreateRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_room",
		Description: "Delete a room, disconnecting its members",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to delete",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleDeleteRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_state",
		Description: "Get the avatar and projectile snapshot of a room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to inspect",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleRoomState)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
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
		Count int            `json:"count"`
		Rooms []api.RoomInfo `json:"rooms"`
	}

	err := c.apiCall("GET", "/api/rooms", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Rooms (%d):\n\n", response.Count)
	for _, room := range response.Rooms {
		result += fmt.Sprintf("- %s", room.ID)
		if room.Name != "" {
			result += fmt.Sprintf(" (%s)", room.Name)
		}
		if room.IsDefault {
			result += " [default]"
		}
		result += fmt.Sprintf(": %d members, %d avatars, %d projectiles\n",
			room.Members, room.Avatars, room.Projectiles)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)

	var room api.RoomInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s", roomID), nil, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomInfo(&room)), nil
}

func (c *Client) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	name, _ := args["name"].(string)

	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}

	var room api.RoomInfo
	err := c.apiCall("POST", "/api/rooms", body, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created room: %s\n", room.ID)
	if room.Name != "" {
		result += fmt.Sprintf("Name: %s\n", room.Name)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDeleteRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)

	err := c.apiCall("DELETE", fmt.Sprintf("/api/rooms/%s", roomID), nil, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted room: %s", roomID)), nil
}

func (c *Client) handleRoomState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)

	var roomState api.RoomState
	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s/state", roomID), nil, &roomState)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Room %s\n\nAvatars (%d):\n", roomState.ID, len(roomState.Avatars))
	for _, avatar := range roomState.Avatars {
		result += fmt.Sprintf("- %s at (%.1f, %.1f, %.1f)\n",
			avatar.ID, avatar.Position.X, avatar.Position.Y, avatar.Position.Z)
	}
	result += fmt.Sprintf("\nProjectiles (%d):\n", len(roomState.Projectiles))
	for _, projectile := range roomState.Projectiles {
		result += fmt.Sprintf("- %s by %s at (%.1f, %.1f, %.1f), force %.1f\n",
			projectile.ID, projectile.ShooterID,
			projectile.Position.X, projectile.Position.Y, projectile.Position.Z,
			projectile.LaunchForce)
	}

	return mcp.NewToolResultText(result), nil
}

func formatRoomInfo(room *api.RoomInfo) string {
	result := fmt.Sprintf("Room: %s\n", room.ID)
	if room.Name != "" {
		result += fmt.Sprintf("Name: %s\n", room.Name)
	}
	result += fmt.Sprintf("Created: %s\n", room.CreatedAt.Format("15:04:05"))
	result += fmt.Sprintf("Members: %d\nAvatars: %d\nProjectiles: %d\n",
		room.Members, room.Avatars, room.Projectiles)
	if room.IsDefault {
		result += "Default room (never removed)\n"
	}
	return result
}
