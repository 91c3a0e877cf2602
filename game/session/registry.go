package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrDefaultSession  = errors.New("default session cannot be removed")
)

// DefaultID is the well-known id of the session every connection lands
// in when no explicit room routing is requested.
var DefaultID = uuid.Nil

// Registry owns the process-wide set of sessions. It is seeded with the
// default session at construction; that session exists for the lifetime
// of the process and is never removed by normal operation.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry creates a registry holding the default session.
func NewRegistry() *Registry {
	r := &Registry{
		sessions: make(map[uuid.UUID]*Session),
	}
	r.sessions[DefaultID] = newSession(DefaultID, "default")
	return r
}

// Create allocates a new named session with a fresh id and registers it.
func (r *Registry) Create(name string) *Session {
	s := newSession(uuid.New(), name)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get looks up a session by id.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return s, ok
}

// Default returns the always-present default session.
func (r *Registry) Default() *Session {
	s, _ := r.Get(DefaultID)
	return s
}

// Remove detaches and disposes a session, tearing down its broadcast
// group. Removing an absent session is a no-op; removing the default
// session is refused.
func (r *Registry) Remove(id uuid.UUID) error {
	if id == DefaultID {
		return ErrDefaultSession
	}

	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	s.close()
	return nil
}

// List returns all sessions ordered by creation time, default first.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	result := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		result = append(result, s)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].ID == DefaultID {
			return true
		}
		if result[j].ID == DefaultID {
			return false
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}
