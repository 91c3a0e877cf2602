package relay

import (
	"github.com/google/uuid"

	"github.com/nakatani/tankarena/game/state"
)

// Wire names of the push notifications. Together with the payload
// structs below they form the closed set of outbound message variants;
// every client receives them through the one Sendable capability its
// transport registered with the broadcast group.
const (
	EventPlayerJoined       = "player_joined"
	EventPlayerLeft         = "player_left"
	EventMoved              = "moved"
	EventAttacked           = "attacked"
	EventProjectileFired    = "projectile_fired"
	EventProjectileUpdated  = "projectile_updated"
	EventProjectileExploded = "projectile_exploded"
)

// PlayerJoined announces a new avatar. The copy delivered privately to
// the joiner has IsSelf=true and carries the snapshot of avatars that
// were already present, so the joiner can instantiate everyone in one
// message.
type PlayerJoined struct {
	ID       uuid.UUID           `json:"id"`
	Position state.Vector3       `json:"position"`
	IsSelf   bool                `json:"is_self"`
	Existing []state.AvatarState `json:"existing,omitempty"`
}

func (PlayerJoined) EventName() string { return EventPlayerJoined }

// PlayerLeft announces that a connection left the session.
type PlayerLeft struct {
	ID uuid.UUID `json:"id"`
}

func (PlayerLeft) EventName() string { return EventPlayerLeft }

// Moved carries an avatar's new transform to every other member.
type Moved struct {
	ID       uuid.UUID        `json:"id"`
	Position state.Vector3    `json:"position"`
	Rotation state.Quaternion `json:"rotation"`
}

func (Moved) EventName() string { return EventMoved }

// Attacked is a pure notification: no server-side state changes.
type Attacked struct {
	AttackerID uuid.UUID `json:"attacker_id"`
	TargetID   uuid.UUID `json:"target_id"`
}

func (Attacked) EventName() string { return EventAttacked }

// ProjectileFired carries the full server-assigned projectile state.
type ProjectileFired struct {
	Projectile state.ProjectileState `json:"projectile"`
}

func (ProjectileFired) EventName() string { return EventProjectileFired }

// ProjectileUpdated relays a position/velocity report. It is emitted
// even when the projectile has already exploded; clients ignore updates
// for ids they have destroyed locally.
type ProjectileUpdated struct {
	ID       uuid.UUID     `json:"id"`
	Position state.Vector3 `json:"position"`
	Velocity state.Vector3 `json:"velocity"`
}

func (ProjectileUpdated) EventName() string { return EventProjectileUpdated }

// ProjectileExploded announces a projectile's removal. ShooterID is
// uuid.Nil when the explode call lost the race against an earlier one
// and the shooter is no longer known.
type ProjectileExploded struct {
	ID        uuid.UUID     `json:"id"`
	Position  state.Vector3 `json:"position"`
	ShooterID uuid.UUID     `json:"shooter_id"`
}

func (ProjectileExploded) EventName() string { return EventProjectileExploded }
