package kvstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
}

func TestMemorySetGetDel(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	store := NewMemory(clk)

	if err := store.Set(ctx, "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.GetDel(ctx, "k1")
	if err != nil {
		t.Fatalf("GetDel() error = %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("GetDel() = %q, want %q", got, "v1")
	}

	if _, err := store.GetDel(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second GetDel() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryGetDelExpired(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	store := NewMemory(clk)

	if err := store.Set(ctx, "k1", []byte("v1"), 5*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	clk.Advance(5*time.Minute + time.Second)

	if _, err := store.GetDel(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDel() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestMemoryGetDelConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	store := NewMemory(clk)

	if err := store.Set(ctx, "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	const callers = 32

	var wg sync.WaitGroup
	wins := make(chan []byte, callers)
	for range callers {
		wg.Go(func() {
			if value, err := store.GetDel(ctx, "k1"); err == nil {
				wins <- value
			}
		})
	}
	wg.Wait()
	close(wins)

	var count int
	for value := range wins {
		count++
		if string(value) != "v1" {
			t.Errorf("winner observed %q, want %q", value, "v1")
		}
	}
	if count != 1 {
		t.Errorf("winners = %d, want exactly 1", count)
	}
}

func TestMemoryCheckAndIncrement(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	store := NewMemory(clk)

	const limit = 3

	for i := int64(1); i <= limit; i++ {
		count, allowed, err := store.CheckAndIncrement(ctx, "rl", limit, time.Minute)
		if err != nil {
			t.Fatalf("CheckAndIncrement() #%d error = %v", i, err)
		}
		if !allowed {
			t.Fatalf("CheckAndIncrement() #%d allowed = false, want true", i)
		}
		if count != i {
			t.Errorf("CheckAndIncrement() #%d count = %d, want %d", i, count, i)
		}
	}

	count, allowed, err := store.CheckAndIncrement(ctx, "rl", limit, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndIncrement() over limit error = %v", err)
	}
	if allowed {
		t.Error("CheckAndIncrement() over limit allowed = true, want false")
	}
	if count != limit {
		t.Errorf("CheckAndIncrement() over limit count = %d, want %d (no mutation at the limit)", count, limit)
	}
}

func TestMemoryCheckAndIncrementWindowReset(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	store := NewMemory(clk)

	for range 2 {
		if _, _, err := store.CheckAndIncrement(ctx, "rl", 2, time.Minute); err != nil {
			t.Fatalf("CheckAndIncrement() error = %v", err)
		}
	}

	if _, allowed, _ := store.CheckAndIncrement(ctx, "rl", 2, time.Minute); allowed {
		t.Fatal("CheckAndIncrement() at limit allowed = true, want false")
	}

	clk.Advance(time.Minute + time.Second)

	count, allowed, err := store.CheckAndIncrement(ctx, "rl", 2, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndIncrement() after window error = %v", err)
	}
	if !allowed || count != 1 {
		t.Errorf("CheckAndIncrement() after window = (%d, %v), want (1, true)", count, allowed)
	}
}

func TestMemoryCheckAndIncrementConcurrent(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	store := NewMemory(clk)

	const limit = 5
	const callers = 50

	var wg sync.WaitGroup
	allowedCh := make(chan struct{}, callers)
	for range callers {
		wg.Go(func() {
			_, allowed, err := store.CheckAndIncrement(ctx, "rl", limit, time.Minute)
			if err != nil {
				t.Errorf("CheckAndIncrement() error = %v", err)
				return
			}
			if allowed {
				allowedCh <- struct{}{}
			}
		})
	}
	wg.Wait()
	close(allowedCh)

	var granted int
	for range allowedCh {
		granted++
	}
	if granted != limit {
		t.Errorf("granted = %d, want exactly %d", granted, limit)
	}
}

func TestMemoryClosed(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(newFakeClock())

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := store.Set(ctx, "k1", []byte("v1"), time.Minute); err == nil {
		t.Error("Set() after Close() error = nil, want error")
	}
	if _, err := store.GetDel(ctx, "k1"); err == nil {
		t.Error("GetDel() after Close() error = nil, want error")
	}
	if _, _, err := store.CheckAndIncrement(ctx, "k1", 1, time.Minute); err == nil {
		t.Error("CheckAndIncrement() after Close() error = nil, want error")
	}
}
