package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nakatani/tankarena/game/config"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}
}

func TestBuildServer(t *testing.T) {
	handler := buildServer(config.Default(), "http://localhost:0")

	server := httptest.NewServer(handler)
	defer server.Close()

	t.Run("rooms endpoint is mounted", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/rooms")
		if err != nil {
			t.Fatalf("Failed to reach /api/rooms: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200 from /api/rooms, got %d", resp.StatusCode)
		}
	})

	t.Run("mcp endpoint rejects GET", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/mcp")
		if err != nil {
			t.Fatalf("Failed to reach /mcp: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405 from GET /mcp, got %d", resp.StatusCode)
		}
	})
}
