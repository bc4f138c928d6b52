package notify

import (
	"testing"
	"time"
)

func fixedCenter(now time.Time) *Center {
	c := NewCenter(0)
	c.now = func() time.Time { return now }
	return c
}

func TestNotificationsExpireAfterTTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := fixedCenter(now)
	c.Push(Info, "uno")
	c.Push(Error, "dos")
	if got := c.Active(now.Add(2 * time.Second)); len(got) != 2 || got[0].Message != "uno" {
		t.Fatalf("expected queue order preserved, got %+v", got)
	}
	if got := c.Active(now.Add(DefaultTTL)); len(got) != 0 {
		t.Fatalf("expected all expired at ttl, got %d", len(got))
	}
	if removed := c.Sweep(now.Add(DefaultTTL)); removed != 2 {
		t.Fatalf("expected 2 swept, got %d", removed)
	}
}

func TestDismissBeforeExpiry(t *testing.T) {
	now := time.Now()
	c := fixedCenter(now)
	a := c.Push(Success, "a")
	b := c.Push(Warning, "b")
	if !c.Dismiss(a.ID) {
		t.Fatalf("dismiss should succeed")
	}
	if c.Dismiss(a.ID) {
		t.Fatalf("second dismiss should report missing")
	}
	got := c.Active(now)
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("expected only b, got %+v", got)
	}
}
