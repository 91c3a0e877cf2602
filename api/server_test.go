package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/nakatani/tankarena/game/relay"
	"github.com/nakatani/tankarena/game/session"
	"github.com/nakatani/tankarena/game/state"
	"github.com/nakatani/tankarena/transport/websocket"
)

func newTestServer() (*Server, *session.Registry) {
	registry := session.NewRegistry()
	relayHandler := relay.NewHandler(registry, relay.Options{AnnounceUnjoinedLeave: true})
	return NewServer(registry, websocket.NewHandler(relayHandler, 64)), registry
}

func doRequest(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestListRooms(t *testing.T) {
	server, _ := newTestServer()

	rec := doRequest(t, server, "GET", "/api/rooms", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Rooms []RoomInfo `json:"rooms"`
		Count int        `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("Expected only the default room, got %d", resp.Count)
	}
	if !resp.Rooms[0].IsDefault {
		t.Error("Expected the default room to be flagged")
	}
}

func TestCreateRoom(t *testing.T) {
	server, registry := newTestServer()

	rec := doRequest(t, server, "POST", "/api/rooms", `{"name":"battle-1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var room RoomInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &room); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if room.Name != "battle-1" {
		t.Errorf("Expected room name battle-1, got %q", room.Name)
	}
	if _, ok := registry.Get(room.ID); !ok {
		t.Error("Expected created room to be registered")
	}
}

func TestGetRoom(t *testing.T) {
	server, registry := newTestServer()
	room := registry.Create("battle-2")

	t.Run("existing room", func(t *testing.T) {
		rec := doRequest(t, server, "GET", "/api/rooms/"+room.ID.String(), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		rec := doRequest(t, server, "GET", "/api/rooms/"+uuid.NewString(), "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := doRequest(t, server, "GET", "/api/rooms/not-a-uuid", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})
}

func TestDeleteRoom(t *testing.T) {
	server, registry := newTestServer()

	t.Run("delete created room", func(t *testing.T) {
		room := registry.Create("doomed")
		rec := doRequest(t, server, "DELETE", "/api/rooms/"+room.ID.String(), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if _, ok := registry.Get(room.ID); ok {
			t.Error("Expected room to be gone after delete")
		}
	})

	t.Run("default room refused", func(t *testing.T) {
		rec := doRequest(t, server, "DELETE", "/api/rooms/"+session.DefaultID.String(), "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		rec := doRequest(t, server, "DELETE", "/api/rooms/"+uuid.NewString(), "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})
}

func TestRoomState(t *testing.T) {
	server, registry := newTestServer()

	sess := registry.Default()
	id := uuid.New()
	sess.AddAvatar(id, state.Vector3{X: 3}, state.IdentityQuaternion())
	sess.AddProjectile(id, state.Vector3{}, state.Vector3{Z: 10}, state.IdentityQuaternion(), 20)

	rec := doRequest(t, server, "GET", "/api/rooms/"+session.DefaultID.String()+"/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var roomState RoomState
	if err := json.Unmarshal(rec.Body.Bytes(), &roomState); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(roomState.Avatars) != 1 || roomState.Avatars[0].ID != id {
		t.Errorf("Unexpected avatars: %+v", roomState.Avatars)
	}
	if len(roomState.Projectiles) != 1 || roomState.Projectiles[0].ShooterID != id {
		t.Errorf("Unexpected projectiles: %+v", roomState.Projectiles)
	}
}
