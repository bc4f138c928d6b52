package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"incidents-dashboard/core/utils"
)

var ErrMissingFields = errors.New("email and password are required")

// Observer receives the current session, or nil when signed out. Observers
// must not call SignIn, SignOut or Expire on the same gate.
type Observer func(*Session)

// Gate holds the authentication state of one device.
type Gate struct {
	provider Provider
	sessions *SessionManager
	logger   *utils.Logger

	// emit serializes transitions with observer delivery so observers see
	// them in order.
	emit sync.Mutex

	mu        sync.Mutex
	current   *Session
	observers map[int]Observer
	nextID    int
}

func NewGate(provider Provider, sessions *SessionManager, logger *utils.Logger) *Gate {
	return &Gate{provider: provider, sessions: sessions, logger: logger, observers: map[int]Observer{}}
}

func (g *Gate) Current() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Observe calls fn with the current state immediately and again on every
// transition until the returned cancel func runs.
func (g *Gate) Observe(fn Observer) (cancel func()) {
	g.emit.Lock()
	defer g.emit.Unlock()
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.observers[id] = fn
	cur := g.current
	g.mu.Unlock()
	fn(cur)
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.observers, id)
			g.mu.Unlock()
		})
	}
}

func (g *Gate) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingFields
	}
	identity, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		var ae *AuthError
		if !errors.As(err, &ae) {
			err = newAuthError(Unknown, err)
		}
		return nil, err
	}
	sess, err := g.sessions.Create(ctx, identity)
	if err != nil {
		return nil, newAuthError(Unknown, err)
	}
	prev := g.transition(sess)
	if prev != nil && prev.ID != sess.ID {
		if err := g.sessions.Delete(ctx, prev.ID); err != nil {
			g.logger.Errorf("drop replaced session: %v", err)
		}
	}
	g.logger.Printf("signed in uid=%s provider=%s", sess.UID, sess.Provider)
	return sess, nil
}

// SignOut drops the persisted session first; on failure the gate stays signed in.
func (g *Gate) SignOut(ctx context.Context) error {
	cur := g.Current()
	if cur == nil {
		return nil
	}
	if err := g.sessions.Delete(ctx, cur.ID); err != nil {
		return err
	}
	g.transition(nil)
	g.logger.Printf("signed out uid=%s", cur.UID)
	return nil
}

// Expire signs out a session whose credential expiry has passed.
func (g *Gate) Expire(ctx context.Context, now time.Time) bool {
	cur := g.Current()
	if cur == nil || !cur.Expired(now) {
		return false
	}
	if err := g.sessions.Delete(ctx, cur.ID); err != nil {
		g.logger.Errorf("delete expired session: %v", err)
	}
	g.transition(nil)
	return true
}

// Restore reattaches a persisted session, e.g. after a process restart.
func (g *Gate) Restore(ctx context.Context, sessID string) (*Session, error) {
	if sessID == "" {
		return nil, nil
	}
	if cur := g.Current(); cur != nil && cur.ID == sessID {
		return cur, nil
	}
	sess, err := g.sessions.Get(ctx, sessID)
	if err != nil || sess == nil {
		return nil, err
	}
	g.transition(sess)
	return sess, nil
}

// Touch records activity for the current session.
func (g *Gate) Touch(ctx context.Context) {
	cur := g.Current()
	if cur == nil {
		return
	}
	if err := g.sessions.Refresh(ctx, cur.ID); err != nil {
		g.logger.Debugf("session refresh: %v", err)
	}
}

func (g *Gate) transition(next *Session) *Session {
	g.emit.Lock()
	defer g.emit.Unlock()
	g.mu.Lock()
	prev := g.current
	g.current = next
	fns := make([]Observer, 0, len(g.observers))
	for _, fn := range g.observers {
		fns = append(fns, fn)
	}
	g.mu.Unlock()
	for _, fn := range fns {
		fn(next)
	}
	return prev
}
