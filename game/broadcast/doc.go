// Package broadcast implements the fan-out primitive of the relay: a
// thread-safe group of connection handles with three delivery selectors
// (all members, all-but-one, exactly-one).
//
// Design notes:
//
// Senders resolve membership at Send time, so a sender held across a
// join or disconnect always targets the group's current members.
//
// The group snapshots its membership under a read lock and invokes the
// handles with the lock released. A handle invocation is a network
// write and may block or fail; failures are isolated per member and
// logged, never surfaced to the handler that triggered the broadcast.
//
// Usage:
//
//	group := broadcast.NewGroup()
//	group.Add(connID, client)
//	group.Others(connID).Send(ev)
package broadcast
