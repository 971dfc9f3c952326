package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/kvstore"
)

type clockStub struct{ now time.Time }

func (c *clockStub) Now() time.Time { return c.now }

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory(&clockStub{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)})
	limiter := NewFixedWindow(store, "rl:test:", 2, time.Minute)

	for i := int64(1); i <= 2; i++ {
		decision, err := limiter.Allow(ctx, "alice")
		if err != nil {
			t.Fatalf("Allow() #%d error = %v", i, err)
		}
		if !decision.Allowed || decision.Count != i {
			t.Errorf("Allow() #%d = %+v, want allowed with count %d", i, decision, i)
		}
	}

	decision, err := limiter.Allow(ctx, "alice")
	if err != nil {
		t.Fatalf("Allow() over limit error = %v", err)
	}
	if decision.Allowed {
		t.Error("Allow() over limit = allowed, want denied")
	}
	if decision.Count != 2 {
		t.Errorf("Allow() over limit count = %d, want 2", decision.Count)
	}

	other, err := limiter.Allow(ctx, "bob")
	if err != nil {
		t.Fatalf("Allow() other key error = %v", err)
	}
	if !other.Allowed {
		t.Error("Allow() other key = denied, want allowed")
	}
}

func TestFixedWindowAllowStoreError(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory(&clockStub{now: time.Now()})
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	limiter := NewFixedWindow(store, "rl:test:", 2, time.Minute)

	decision, err := limiter.Allow(ctx, "alice")
	if err == nil {
		t.Error("Allow() on failing store error = nil, want error")
	}
	if decision.Allowed {
		t.Error("Allow() on failing store reported allowed, want denied")
	}
}

func TestFixedWindowPrefixIsolation(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory(&clockStub{now: time.Now()})

	identity := NewFixedWindow(store, "rl:identity:", 1, time.Minute)
	source := NewFixedWindow(store, "rl:ip:", 1, time.Minute)

	if d, err := identity.Allow(ctx, "alice"); err != nil || !d.Allowed {
		t.Fatalf("identity Allow() = (%+v, %v), want allowed", d, err)
	}
	if d, err := source.Allow(ctx, "alice"); err != nil || !d.Allowed {
		t.Errorf("source Allow() = (%+v, %v), want allowed despite same key", d, err)
	}

	if d, err := identity.Allow(ctx, "alice"); err != nil || d.Allowed {
		t.Errorf("identity Allow() again = (%+v, %v), want denied", d, err)
	}
}
