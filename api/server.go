package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nakatani/tankarena/game/session"
	"github.com/nakatani/tankarena/game/state"
	"github.com/nakatani/tankarena/transport/websocket"
)

// Server is the REST API server: room management plus the WebSocket
// upgrade endpoint.
type Server struct {
	registry *session.Registry
	ws       *websocket.Handler
	router   *mux.Router
}

// NewServer creates a new API server.
func NewServer(registry *session.Registry, ws *websocket.Handler) *Server {
	s := &Server{
		registry: registry,
		ws:       ws,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Room management
	api.HandleFunc("/rooms", s.handleCreateRoom).Methods("POST")
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{id}", s.handleGetRoom).Methods("GET")
	api.HandleFunc("/rooms/{id}", s.handleDeleteRoom).Methods("DELETE")

	// Entity state inspection
	api.HandleFunc("/rooms/{id}/state", s.handleRoomState).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.ws.ServeWS)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// RoomInfo is the wire representation of one session.
type RoomInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Members     int       `json:"members"`
	Avatars     int       `json:"avatars"`
	Projectiles int       `json:"projectiles"`
	IsDefault   bool      `json:"is_default"`
}

func roomInfo(sess *session.Session) RoomInfo {
	avatars, projectiles := sess.Snapshot()
	return RoomInfo{
		ID:          sess.ID,
		Name:        sess.Name,
		CreatedAt:   sess.CreatedAt,
		Members:     sess.Group().Len(),
		Avatars:     len(avatars),
		Projectiles: len(projectiles),
		IsDefault:   sess.ID == session.DefaultID,
	}
}

// Room Handlers

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	sess := s.registry.Create(req.Name)
	respondJSON(w, http.StatusCreated, roomInfo(sess))
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	sessions := s.registry.List()

	rooms := make([]RoomInfo, 0, len(sessions))
	for _, sess := range sessions {
		rooms = append(rooms, roomInfo(sess))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rooms": rooms,
		"count": len(rooms),
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, roomInfo(sess))
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	switch err := s.registry.Remove(id); {
	case errors.Is(err, session.ErrDefaultSession):
		respondError(w, http.StatusForbidden, "default room cannot be deleted")
	case errors.Is(err, session.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "room not found")
	default:
		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// RoomState is the full entity snapshot of one room.
type RoomState struct {
	ID          uuid.UUID               `json:"id"`
	Avatars     []state.AvatarState     `json:"avatars"`
	Projectiles []state.ProjectileState `json:"projectiles"`
}

func (s *Server) handleRoomState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}

	avatars, projectiles := sess.Snapshot()
	respondJSON(w, http.StatusOK, RoomState{
		ID:          sess.ID,
		Avatars:     avatars,
		Projectiles: projectiles,
	})
}

// lookupRoom resolves the {id} path variable, writing the error
// response itself when the id is malformed or unknown.
func (s *Server) lookupRoom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return nil, false
	}

	sess, ok := s.registry.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "room not found")
		return nil, false
	}
	return sess, true
}
