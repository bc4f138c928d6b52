package notify

import (
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
)

type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Warning Kind = "warning"
	Error   Kind = "error"
)

const DefaultTTL = 3 * time.Second

type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Center is a per-device queue of transient notifications. Entries expire
// after the TTL and can be dismissed individually before that.
type Center struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items []Notification
}

func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl, now: time.Now}
}

func (c *Center) Push(kind Kind, message string) Notification {
	now := c.now().UTC()
	n := Notification{
		ID:        uuid.Must(uuid.NewV4()).String(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
	return n
}

// Active returns the unexpired notifications in the order they were pushed.
func (c *Center) Active(now time.Time) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}
	return out
}

func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Sweep drops expired entries and reports how many were removed.
func (c *Center) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	removed := 0
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
			continue
		}
		removed++
	}
	c.items = kept
	return removed
}

func (c *Center) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}
