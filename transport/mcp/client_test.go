package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nakatani/tankarena/api"
	"github.com/nakatani/tankarena/game/broadcast"
	"github.com/nakatani/tankarena/game/relay"
	"github.com/nakatani/tankarena/game/session"
	"github.com/nakatani/tankarena/game/state"
	"github.com/nakatani/tankarena/transport/websocket"
)

type nopHandle struct{}

func (nopHandle) Send(broadcast.Event) error { return nil }

// newBackend wires a real REST API server for the client to proxy to.
func newBackend(t *testing.T) (*httptest.Server, *session.Registry) {
	t.Helper()
	registry := session.NewRegistry()
	relayHandler := relay.NewHandler(registry, relay.Options{AnnounceUnjoinedLeave: true})
	apiServer := api.NewServer(registry, websocket.NewHandler(relayHandler, 64))

	server := httptest.NewServer(apiServer)
	t.Cleanup(server.Close)
	return server, registry
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) string {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content from %s", name)
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected GetMCPServer to return the server")
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.apiCall("GET", "/api/rooms", nil, nil); err == nil {
		t.Error("Expected error for HTTP 500 response")
	}
}

func TestListRoomsTool(t *testing.T) {
	backend, registry := newBackend(t)
	registry.Create("battle-1")

	client := NewClient(backend.URL)
	text := callTool(t, client.handleListRooms, "list_rooms", map[string]interface{}{})

	if !strings.Contains(text, "Rooms (2)") {
		t.Errorf("Expected 2 rooms in output, got: %s", text)
	}
	if !strings.Contains(text, "[default]") {
		t.Errorf("Expected default room marker, got: %s", text)
	}
	if !strings.Contains(text, "battle-1") {
		t.Errorf("Expected created room name, got: %s", text)
	}
}

func TestRoomLifecycleTools(t *testing.T) {
	backend, registry := newBackend(t)
	client := NewClient(backend.URL)

	created := callTool(t, client.handleCreateRoom, "create_room", map[string]interface{}{
		"name": "mcp-made",
	})
	if !strings.Contains(created, "mcp-made") {
		t.Errorf("Expected room name in create output, got: %s", created)
	}

	// Extract the created room's id from the registry rather than
	// parsing the text output.
	var roomID string
	for _, sess := range registry.List() {
		if sess.Name == "mcp-made" {
			roomID = sess.ID.String()
		}
	}
	if roomID == "" {
		t.Fatal("Expected created room to be registered")
	}

	info := callTool(t, client.handleGetRoom, "get_room", map[string]interface{}{
		"room_id": roomID,
	})
	if !strings.Contains(info, "Members: 0") {
		t.Errorf("Expected member count in room info, got: %s", info)
	}

	deleted := callTool(t, client.handleDeleteRoom, "delete_room", map[string]interface{}{
		"room_id": roomID,
	})
	if !strings.Contains(deleted, "Deleted room") {
		t.Errorf("Expected delete confirmation, got: %s", deleted)
	}
}

func TestDeleteDefaultRoomToolRefused(t *testing.T) {
	backend, _ := newBackend(t)
	client := NewClient(backend.URL)

	text := callTool(t, client.handleDeleteRoom, "delete_room", map[string]interface{}{
		"room_id": session.DefaultID.String(),
	})
	if !strings.Contains(text, "default room cannot be deleted") {
		t.Errorf("Expected refusal for default room, got: %s", text)
	}
}

func TestRoomStateTool(t *testing.T) {
	backend, registry := newBackend(t)
	client := NewClient(backend.URL)

	relayHandler := relay.NewHandler(registry, relay.Options{AnnounceUnjoinedLeave: true})
	conn, err := relayHandler.Attach(session.DefaultID, nopHandle{})
	if err != nil {
		t.Fatalf("Failed to attach: %v", err)
	}
	conn.JoinAndSpawn(state.Vector3{X: 3})

	text := callTool(t, client.handleRoomState, "room_state", map[string]interface{}{
		"room_id": session.DefaultID.String(),
	})
	if !strings.Contains(text, "Avatars (1)") {
		t.Errorf("Expected 1 avatar in state output, got: %s", text)
	}
	if !strings.Contains(text, "(3.0, 0.0, 0.0)") {
		t.Errorf("Expected avatar position in output, got: %s", text)
	}
}
