package broadcast

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// testEvent is a minimal Event for exercising the group.
type testEvent struct {
	Name string
}

func (e testEvent) EventName() string { return e.Name }

// recorder is a Sendable that captures everything sent to it.
type recorder struct {
	mu     sync.Mutex
	events []Event
	fail   error
}

func (r *recorder) Send(event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestGroupAdd(t *testing.T) {
	group := NewGroup()
	id := uuid.New()

	t.Run("add registers member", func(t *testing.T) {
		group.Add(id, &recorder{})
		if group.Len() != 1 {
			t.Errorf("Expected 1 member, got %d", group.Len())
		}
	})

	t.Run("re-add replaces handle", func(t *testing.T) {
		replacement := &recorder{}
		group.Add(id, replacement)
		if group.Len() != 1 {
			t.Errorf("Expected 1 member after re-add, got %d", group.Len())
		}

		group.All().Send(testEvent{Name: "ping"})
		if replacement.count() != 1 {
			t.Errorf("Expected replacement handle to receive the event, got %d", replacement.count())
		}
	})
}

func TestGroupRemove(t *testing.T) {
	group := NewGroup()
	id := uuid.New()
	group.Add(id, &recorder{})

	group.Remove(id)
	if group.Len() != 0 {
		t.Errorf("Expected 0 members after remove, got %d", group.Len())
	}

	// Removing an absent id is a no-op.
	group.Remove(uuid.New())
	if group.Len() != 0 {
		t.Errorf("Expected remove of absent id to be a no-op, got %d members", group.Len())
	}
}

func TestGroupSelectors(t *testing.T) {
	group := NewGroup()

	idA, idB, idC := uuid.New(), uuid.New(), uuid.New()
	recA, recB, recC := &recorder{}, &recorder{}, &recorder{}
	group.Add(idA, recA)
	group.Add(idB, recB)
	group.Add(idC, recC)

	t.Run("all targets every member", func(t *testing.T) {
		group.All().Send(testEvent{Name: "all"})
		for name, rec := range map[string]*recorder{"A": recA, "B": recB, "C": recC} {
			if rec.count() != 1 {
				t.Errorf("Expected %s to receive 1 event, got %d", name, rec.count())
			}
		}
	})

	t.Run("others excludes the pivot", func(t *testing.T) {
		group.Others(idA).Send(testEvent{Name: "others"})
		if recA.count() != 1 {
			t.Errorf("Expected A to be skipped, got %d events", recA.count())
		}
		if recB.count() != 2 || recC.count() != 2 {
			t.Errorf("Expected B and C to receive the event, got %d and %d", recB.count(), recC.count())
		}
	})

	t.Run("only targets exactly the pivot", func(t *testing.T) {
		group.Only(idB).Send(testEvent{Name: "only"})
		if recB.count() != 3 {
			t.Errorf("Expected B to receive the targeted event, got %d", recB.count())
		}
		if recA.count() != 1 || recC.count() != 2 {
			t.Errorf("Expected A and C to be skipped, got %d and %d", recA.count(), recC.count())
		}
	})
}

func TestGroupSendTimeMembership(t *testing.T) {
	group := NewGroup()
	sender := group.All()

	// Member added after the sender was constructed must still be hit.
	id := uuid.New()
	rec := &recorder{}
	group.Add(id, rec)

	sender.Send(testEvent{Name: "late"})
	if rec.count() != 1 {
		t.Errorf("Expected membership to be resolved at send time, got %d events", rec.count())
	}

	group.Remove(id)
	sender.Send(testEvent{Name: "after-remove"})
	if rec.count() != 1 {
		t.Errorf("Expected removed member to be skipped, got %d events", rec.count())
	}
}

func TestGroupDeliveryFailureIsolated(t *testing.T) {
	group := NewGroup()

	broken := &recorder{fail: errors.New("connection reset")}
	healthy := &recorder{}
	group.Add(uuid.New(), broken)
	group.Add(uuid.New(), healthy)

	group.All().Send(testEvent{Name: "mixed"})

	if healthy.count() != 1 {
		t.Errorf("Expected healthy member to receive the event despite peer failure, got %d", healthy.count())
	}
}

func TestGroupClose(t *testing.T) {
	group := NewGroup()
	rec := &recorder{}
	group.Add(uuid.New(), rec)

	group.Close()
	if group.Len() != 0 {
		t.Errorf("Expected 0 members after close, got %d", group.Len())
	}

	// Closed groups refuse new members.
	group.Add(uuid.New(), &recorder{})
	if group.Len() != 0 {
		t.Errorf("Expected add after close to be rejected, got %d members", group.Len())
	}

	group.All().Send(testEvent{Name: "closed"})
	if rec.count() != 0 {
		t.Errorf("Expected no delivery after close, got %d", rec.count())
	}
}

func TestGroupConcurrentAccess(t *testing.T) {
	group := NewGroup()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := uuid.New()
			group.Add(id, &recorder{})
			group.All().Send(testEvent{Name: "stress"})
			group.Remove(id)
		}()
	}
	wg.Wait()

	if group.Len() != 0 {
		t.Errorf("Expected empty group after concurrent churn, got %d members", group.Len())
	}
}
