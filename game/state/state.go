package state

import "github.com/google/uuid"

// Vector3 is a 3D position or velocity in world units.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a 4-parameter rotation.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// IdentityQuaternion returns the neutral rotation.
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// AvatarState is the last reported transform of one connected player's
// tank. There is at most one per connection id per session: created on
// join, mutated only by that connection's own move reports, deleted on
// disconnect.
type AvatarState struct {
	ID       uuid.UUID  `json:"id"`
	Position Vector3    `json:"position"`
	Rotation Quaternion `json:"rotation"`
}

// ProjectileState is the last reported physical state of one in-flight
// shell. Created on shoot, removed exactly once on explode. The id is a
// random v4 UUID assigned server-side; Timestamp (Unix seconds) records
// the last state report and is informational only.
type ProjectileState struct {
	ID          uuid.UUID  `json:"id"`
	ShooterID   uuid.UUID  `json:"shooter_id"`
	Position    Vector3    `json:"position"`
	Velocity    Vector3    `json:"velocity"`
	Rotation    Quaternion `json:"rotation"`
	LaunchForce float64    `json:"launch_force"`
	Timestamp   float64    `json:"timestamp"`
}
