package relay

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/nakatani/tankarena/game/broadcast"
	"github.com/nakatani/tankarena/game/session"
	"github.com/nakatani/tankarena/game/state"
)

var ErrSessionNotFound = errors.New("relay: session not found")

// Options tunes handler behavior that the protocol leaves open.
type Options struct {
	// AnnounceUnjoinedLeave controls whether a connection that never
	// joined still emits player_left on detach. True matches the
	// behavior clients have historically seen.
	AnnounceUnjoinedLeave bool
}

// Handler attaches transport connections to sessions and hands out the
// per-connection Conn values that implement the relay protocol. It
// holds no state of its own beyond the registry reference.
type Handler struct {
	registry *session.Registry
	opts     Options
}

// NewHandler creates a relay handler bound to the given registry.
func NewHandler(registry *session.Registry, opts Options) *Handler {
	return &Handler{registry: registry, opts: opts}
}

// Attach resolves the target session, assigns the connection a fresh
// id, and adds its send handle to the session's broadcast group. The
// connection is attached but not yet joined: nothing is visible to
// other clients until JoinAndSpawn.
//
// sessionID selects the room; session.DefaultID lands in the default
// session.
func (h *Handler) Attach(sessionID uuid.UUID, send broadcast.Sendable) (*Conn, error) {
	sess, ok := h.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	c := &Conn{
		id:   uuid.New(),
		sess: sess,
		opts: h.opts,
	}
	sess.Group().Add(c.id, send)

	log.Printf("relay: connected %s (session %s)", c.id, sess.ID)
	return c, nil
}

// Conn is the per-connection protocol surface. The transport layer
// calls into it from the connection's read goroutine; all methods are
// safe to call concurrently with other connections' methods on the
// same session.
//
// Lifecycle: Attach creates the Conn (attached, not joined),
// JoinAndSpawn makes the avatar visible, Detach is terminal and runs
// exactly once no matter how the transport loses the connection.
type Conn struct {
	id     uuid.UUID
	sess   *session.Session
	opts   Options
	joined atomic.Bool
	detach sync.Once
}

// ID returns the server-assigned connection id.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// JoinAndSpawn creates this connection's avatar at spawnPos with a
// neutral rotation and returns the avatars that were already present
// (excluding self) plus the connection's own id. Other members are
// told about the new avatar; the caller gets a private is_self copy
// carrying the snapshot.
func (c *Conn) JoinAndSpawn(spawnPos state.Vector3) ([]state.AvatarState, uuid.UUID) {
	all := c.sess.AddAvatar(c.id, spawnPos, state.IdentityQuaternion())
	c.joined.Store(true)

	existing := make([]state.AvatarState, 0, len(all)-1)
	for _, avatar := range all {
		if avatar.ID != c.id {
			existing = append(existing, avatar)
		}
	}

	group := c.sess.Group()
	group.Others(c.id).Send(PlayerJoined{ID: c.id, Position: spawnPos})
	group.Only(c.id).Send(PlayerJoined{ID: c.id, Position: spawnPos, IsSelf: true, Existing: existing})

	return existing, c.id
}

// Move reports a new transform for avatarID (normally the caller's own
// avatar). If the avatar no longer exists the update is dropped and no
// broadcast is emitted.
func (c *Conn) Move(avatarID uuid.UUID, pos state.Vector3, rot state.Quaternion) {
	if !c.sess.UpdateAvatar(avatarID, pos, rot) {
		return
	}
	c.sess.Group().Others(c.id).Send(Moved{ID: avatarID, Position: pos, Rotation: rot})
}

// Attack notifies every member, including the attacker, so the caller
// can trigger its own cosmetic feedback. No state is mutated.
func (c *Conn) Attack(targetID uuid.UUID) {
	c.sess.Group().All().Send(Attacked{AttackerID: c.id, TargetID: targetID})
}

// Shoot spawns a projectile owned by this connection and announces its
// full state to every member.
func (c *Conn) Shoot(pos, vel state.Vector3, rot state.Quaternion, force float64) state.ProjectileState {
	projectile := c.sess.AddProjectile(c.id, pos, vel, rot, force)
	c.sess.Group().All().Send(ProjectileFired{Projectile: projectile})
	return projectile
}

// UpdateProjectile relays a projectile state report. The broadcast is
// emitted whether or not the mutation applied: a late report for an
// already-exploded projectile is still forwarded and clients discard
// updates for ids they no longer track.
func (c *Conn) UpdateProjectile(id uuid.UUID, pos, vel state.Vector3) {
	c.sess.UpdateProjectile(id, pos, vel)
	c.sess.Group().All().Send(ProjectileUpdated{ID: id, Position: pos, Velocity: vel})
}

// ExplodeProjectile removes the projectile and announces the explosion.
// Two clients can legitimately both observe a collision and call this
// for the same id: the first removal wins and carries the shooter id,
// the duplicate still broadcasts but with a uuid.Nil shooter. Clients
// must treat the explosion effect as idempotent.
func (c *Conn) ExplodeProjectile(id uuid.UUID, pos state.Vector3) {
	shooter, ok := c.sess.RemoveProjectile(id)
	if !ok {
		shooter = uuid.Nil
	}
	c.sess.Group().All().Send(ProjectileExploded{ID: id, Position: pos, ShooterID: shooter})
}

// Detach removes the connection from the session: group membership
// first, then the avatar if one was ever created. Remaining members are
// notified with player_left; for connections that never joined the
// notification is gated by Options.AnnounceUnjoinedLeave. Safe to call
// from any teardown path; only the first call has any effect.
func (c *Conn) Detach() {
	c.detach.Do(func() {
		group := c.sess.Group()
		group.Remove(c.id)

		hadAvatar := c.sess.RemoveAvatar(c.id)
		if hadAvatar || c.opts.AnnounceUnjoinedLeave {
			group.All().Send(PlayerLeft{ID: c.id})
		}

		log.Printf("relay: disconnected %s (session %s)", c.id, c.sess.ID)
	})
}

// Joined reports whether the connection completed JoinAndSpawn.
func (c *Conn) Joined() bool {
	return c.joined.Load()
}
