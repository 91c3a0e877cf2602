package broadcast

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event is one outbound push notification. The relay defines the closed
// set of variants; the group only needs the wire name for logging.
type Event interface {
	EventName() string
}

// Sendable is the capability to push one event to a connected client.
// Send may block on a network write and may fail if the connection has
// already been torn down; the group never lets such a failure escape to
// the handler that triggered the broadcast.
type Sendable interface {
	Send(event Event) error
}

// Group is a named set of connections with three delivery selectors:
// everyone, everyone-but-one, and exactly-one. Membership is keyed by
// connection id so handlers never hold a reference to another
// connection's transport object.
type Group struct {
	mu      sync.RWMutex
	members map[uuid.UUID]Sendable
	closed  bool
}

// NewGroup creates an empty broadcast group.
func NewGroup() *Group {
	return &Group{
		members: make(map[uuid.UUID]Sendable),
	}
}

// Add registers a sendable handle for a connection. Re-adding the same
// id replaces the previous handle.
func (g *Group) Add(id uuid.UUID, handle Sendable) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	g.members[id] = handle
}

// Remove deregisters a connection. No-op if the id is not a member.
func (g *Group) Remove(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.members, id)
}

// Len returns the current member count.
func (g *Group) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.members)
}

// Close tears the group down, releasing all member handles. Senders
// obtained earlier still work but resolve to an empty membership.
func (g *Group) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.closed = true
	g.members = make(map[uuid.UUID]Sendable)
}

// selector picks the targets for one sender.
type selector int

const (
	toAll selector = iota
	toOthers
	toOnly
)

// Sender delivers events to a subset of the group. Membership is
// resolved at Send time, not when the Sender is constructed, so fan-out
// always targets current members.
type Sender struct {
	group *Group
	mode  selector
	pivot uuid.UUID
}

// All returns a sender that delivers to every current member.
func (g *Group) All() Sender {
	return Sender{group: g, mode: toAll}
}

// Others returns a sender that delivers to every member except id.
func (g *Group) Others(id uuid.UUID) Sender {
	return Sender{group: g, mode: toOthers, pivot: id}
}

// Only returns a sender that delivers to exactly the member id.
func (g *Group) Only(id uuid.UUID) Sender {
	return Sender{group: g, mode: toOnly, pivot: id}
}

// Send delivers the event to every selected member. The membership map
// is snapshotted under the read lock and the handles are invoked after
// it is released, so a slow client write never blocks membership
// changes or other senders. Per-member failures are logged and do not
// abort delivery to the remaining members.
func (s Sender) Send(event Event) {
	s.group.mu.RLock()
	targets := make(map[uuid.UUID]Sendable, len(s.group.members))
	for id, handle := range s.group.members {
		switch s.mode {
		case toOthers:
			if id == s.pivot {
				continue
			}
		case toOnly:
			if id != s.pivot {
				continue
			}
		}
		targets[id] = handle
	}
	s.group.mu.RUnlock()

	for id, handle := range targets {
		if err := handle.Send(event); err != nil {
			log.Printf("broadcast: dropping %s for %s: %v", event.EventName(), id, err)
		}
	}
}
