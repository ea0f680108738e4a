package identity

import (
	"context"
	"slices"
	"sync"

	"animalrescue/pkg/types"
)

type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
	Expired   EventKind = "expired"
	Refreshed EventKind = "refreshed"
)

// SessionEvent is pushed by a Provider whenever the session changes. Session
// is nil for SignedOut and Expired.
type SessionEvent struct {
	Kind    EventKind
	Session *types.Session
}

// Provider is the source of reviewer sessions.
type Provider interface {
	CurrentSession(ctx context.Context) (*types.Session, error)
	Subscribe(fn func(SessionEvent)) (unsubscribe func())
	SignOut(ctx context.Context) error
}

// observers is a set of callbacks notified synchronously, outside the lock.
type observers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(SessionEvent)
}

func (o *observers) add(fn func(SessionEvent)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fns == nil {
		o.fns = make(map[int]func(SessionEvent))
	}
	id := o.next
	o.next++
	o.fns[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.fns, id)
	}
}

func (o *observers) publish(ev SessionEvent) {
	o.mu.Lock()
	ids := make([]int, 0, len(o.fns))
	for id := range o.fns {
		ids = append(ids, id)
	}
	o.mu.Unlock()

	// registration order
	slices.Sort(ids)
	for _, id := range ids {
		o.mu.Lock()
		fn, ok := o.fns[id]
		o.mu.Unlock()
		if ok {
			fn(ev)
		}
	}
}

func (o *observers) clear() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.fns = nil
}

func (o *observers) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.fns)
}

func copySession(s *types.Session) *types.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
