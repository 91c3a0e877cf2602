// Package state defines the value records shared between the relay core
// and its transports: avatar and projectile transforms plus the small
// math types they are built from.
//
// The package is intentionally behavior-free. All mutation and locking
// lives in game/session; all fan-out lives in game/broadcast. Keeping
// the records plain makes them safe to copy into snapshots and to
// marshal directly onto the wire.
package state
