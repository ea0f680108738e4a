package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus"
)

// Gate tracks the current reviewer session for its consumers. The session
// only changes through events pushed by the provider.
type Gate struct {
	provider Provider
	logger   logrus.FieldLogger
	now      func() time.Time

	// startMu serializes Start so only one subscription is ever taken.
	startMu sync.Mutex

	mu      sync.Mutex
	session *types.Session
	release func()

	subscribers observers
}

func NewGate(provider Provider, logger logrus.FieldLogger) *Gate {
	return &Gate{
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// Start reads the provider's current session once and subscribes to its
// changes. Calling Start again is a no-op.
func (g *Gate) Start(ctx context.Context) error {
	g.startMu.Lock()
	defer g.startMu.Unlock()

	g.mu.Lock()
	started := g.release != nil
	g.mu.Unlock()
	if started {
		return nil
	}

	release := g.provider.Subscribe(g.handle)

	session, err := g.provider.CurrentSession(ctx)
	if err != nil {
		release()
		return fmt.Errorf("read current session: %w", err)
	}

	g.mu.Lock()
	g.session = copySession(session)
	g.release = release
	g.mu.Unlock()

	return nil
}

// Session returns the current session, or nil when signed out or expired.
func (g *Gate) Session() *types.Session {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session.Expired(g.now()) {
		return nil
	}
	return copySession(g.session)
}

// Subscribe registers fn for session changes until the returned
// subscription is released.
func (g *Gate) Subscribe(fn func(SessionEvent)) *Subscription {
	return &Subscription{release: g.subscribers.add(fn)}
}

func (g *Gate) SignOut(ctx context.Context) error {
	return g.provider.SignOut(ctx)
}

// Close detaches from the provider and drops every subscriber.
func (g *Gate) Close() {
	g.mu.Lock()
	release := g.release
	g.release = nil
	g.mu.Unlock()

	if release != nil {
		release()
	}
	g.subscribers.clear()
}

func (g *Gate) handle(ev SessionEvent) {
	g.mu.Lock()
	switch ev.Kind {
	case SignedIn, Refreshed:
		g.session = copySession(ev.Session)
	case SignedOut, Expired:
		g.session = nil
	default:
		g.mu.Unlock()
		g.logger.WithField("kind", ev.Kind).Warn("ignoring unknown session event")
		return
	}
	g.mu.Unlock()

	g.logger.WithField("kind", ev.Kind).Debug("session changed")
	g.subscribers.publish(SessionEvent{Kind: ev.Kind, Session: copySession(ev.Session)})
}

// Subscription is the handle returned by Gate.Subscribe.
type Subscription struct {
	once    sync.Once
	release func()
}

// Unsubscribe stops delivery. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.release)
}
