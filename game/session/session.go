package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nakatani/tankarena/game/broadcast"
	"github.com/nakatani/tankarena/game/state"
)

// Session is one running game instance: the avatar and projectile maps
// plus the broadcast group of every connection attached to it. The two
// entity maps are guarded independently; no operation needs atomicity
// spanning both, so there is no cross-map locking.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	group *broadcast.Group

	avatarsMu sync.RWMutex
	avatars   map[uuid.UUID]state.AvatarState

	projectilesMu sync.RWMutex
	projectiles   map[uuid.UUID]state.ProjectileState
}

func newSession(id uuid.UUID, name string) *Session {
	return &Session{
		ID:          id,
		Name:        name,
		CreatedAt:   time.Now(),
		group:       broadcast.NewGroup(),
		avatars:     make(map[uuid.UUID]state.AvatarState),
		projectiles: make(map[uuid.UUID]state.ProjectileState),
	}
}

// Group returns the session's broadcast group.
func (s *Session) Group() *broadcast.Group {
	return s.group
}

// AddAvatar inserts or overwrites the avatar for the given connection
// id and returns a snapshot of the full avatar set taken in the same
// critical section, so a joiner's view cannot miss a concurrent join.
func (s *Session) AddAvatar(id uuid.UUID, pos state.Vector3, rot state.Quaternion) []state.AvatarState {
	s.avatarsMu.Lock()
	defer s.avatarsMu.Unlock()

	s.avatars[id] = state.AvatarState{ID: id, Position: pos, Rotation: rot}

	snapshot := make([]state.AvatarState, 0, len(s.avatars))
	for _, avatar := range s.avatars {
		snapshot = append(snapshot, avatar)
	}
	return snapshot
}

// RemoveAvatar deletes the avatar for id, reporting whether one was
// present.
func (s *Session) RemoveAvatar(id uuid.UUID) bool {
	s.avatarsMu.Lock()
	defer s.avatarsMu.Unlock()

	_, ok := s.avatars[id]
	delete(s.avatars, id)
	return ok
}

// UpdateAvatar overwrites the transform for id if the avatar is still
// present. A false return means the avatar was removed concurrently
// (disconnect race) and the update was dropped; that is not an error.
func (s *Session) UpdateAvatar(id uuid.UUID, pos state.Vector3, rot state.Quaternion) bool {
	s.avatarsMu.Lock()
	defer s.avatarsMu.Unlock()

	if _, ok := s.avatars[id]; !ok {
		return false
	}
	s.avatars[id] = state.AvatarState{ID: id, Position: pos, Rotation: rot}
	return true
}

// AddProjectile stores a new projectile with a fresh random id and a
// server-assigned creation timestamp, returning the stored state.
func (s *Session) AddProjectile(shooter uuid.UUID, pos, vel state.Vector3, rot state.Quaternion, force float64) state.ProjectileState {
	projectile := state.ProjectileState{
		ID:          uuid.New(),
		ShooterID:   shooter,
		Position:    pos,
		Velocity:    vel,
		Rotation:    rot,
		LaunchForce: force,
		Timestamp:   nowSeconds(),
	}

	s.projectilesMu.Lock()
	s.projectiles[projectile.ID] = projectile
	s.projectilesMu.Unlock()

	return projectile
}

// UpdateProjectile overwrites position and velocity if the projectile
// is still in flight. A false return means it already exploded (or
// never existed); the update is dropped without error.
func (s *Session) UpdateProjectile(id uuid.UUID, pos, vel state.Vector3) bool {
	s.projectilesMu.Lock()
	defer s.projectilesMu.Unlock()

	projectile, ok := s.projectiles[id]
	if !ok {
		return false
	}
	projectile.Position = pos
	projectile.Velocity = vel
	projectile.Timestamp = nowSeconds()
	s.projectiles[id] = projectile
	return true
}

// RemoveProjectile atomically removes the projectile and returns its
// shooter id. Of two concurrent explode calls for the same id, exactly
// one observes ok=true; the other sees the projectile already gone.
func (s *Session) RemoveProjectile(id uuid.UUID) (uuid.UUID, bool) {
	s.projectilesMu.Lock()
	defer s.projectilesMu.Unlock()

	projectile, ok := s.projectiles[id]
	if !ok {
		return uuid.Nil, false
	}
	delete(s.projectiles, id)
	return projectile.ShooterID, true
}

// Snapshot returns copies of the avatar and projectile sets, for the
// REST and MCP inspection surfaces.
func (s *Session) Snapshot() ([]state.AvatarState, []state.ProjectileState) {
	s.avatarsMu.RLock()
	avatars := make([]state.AvatarState, 0, len(s.avatars))
	for _, avatar := range s.avatars {
		avatars = append(avatars, avatar)
	}
	s.avatarsMu.RUnlock()

	s.projectilesMu.RLock()
	projectiles := make([]state.ProjectileState, 0, len(s.projectiles))
	for _, projectile := range s.projectiles {
		projectiles = append(projectiles, projectile)
	}
	s.projectilesMu.RUnlock()

	return avatars, projectiles
}

// close tears down the group and discards all entity state. Called by
// the registry; sessions have no lifetime beyond the process.
func (s *Session) close() {
	s.group.Close()

	s.avatarsMu.Lock()
	s.avatars = make(map[uuid.UUID]state.AvatarState)
	s.avatarsMu.Unlock()

	s.projectilesMu.Lock()
	s.projectiles = make(map[uuid.UUID]state.ProjectileState)
	s.projectilesMu.Unlock()
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
