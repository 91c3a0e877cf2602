// Package session provides the session registry and per-session entity
// state for the arena relay.
//
// The session package implements:
//   - Thread-safe avatar and projectile storage per session
//   - Atomic per-key operations (the unit of atomicity is one map slot)
//   - A process-wide registry with a well-known default session
//   - Session lifecycle management and broadcast-group teardown
//
// Core Types:
//
// Session owns one broadcast group, one avatar map keyed by connection
// id, and one projectile map keyed by projectile id. Registry owns the
// set of sessions and is seeded with the default session (uuid.Nil) at
// startup; that session is never removed by normal operation.
//
// Concurrency:
//
// Each map is guarded independently. Mutations never block on network
// I/O: handlers mutate under the lock and broadcast after releasing it.
// RemoveProjectile is the idempotence anchor for the explode protocol:
// of two concurrent removals of the same id, exactly one observes the
// projectile present.
//
// Sessions hold no state beyond the process: there is no persistence
// and no serialization of session contents.
package session
