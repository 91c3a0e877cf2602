// Package relay implements the join/move/fire/explode protocol that
// keeps every connected client's local view of a session eventually
// consistent with every other client's.
//
// The relay is deliberately stateless per request: it validates
// nothing about reported physics, runs no simulation tick, and
// arbitrates no outcomes. Each RPC is a per-key state mutation on the
// session followed by a targeted broadcast (all members,
// all-but-sender, or sender-only).
//
// Connection Lifecycle:
//
//	Attach       -> connection in group, invisible to peers
//	JoinAndSpawn -> avatar created, peers notified
//	Detach       -> group removal, avatar purge, peers notified (once)
//
// Failure semantics: operations on absent entities degrade to silent
// no-ops or pass-through broadcasts; no relay method returns an error
// for a missing avatar or projectile. The only fatal condition is the
// loss of the connection itself, which the transport layer detects and
// translates into Detach.
package relay
