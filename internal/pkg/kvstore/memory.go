package kvstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/clock"
	"go.uber.org/atomic"
)

var errClosed = errors.New("kvstore: store is closed")

type memoryEntry struct {
	value     []byte
	count     int64
	expiresAt time.Time
}

// Memory is an in-process Store. It honors the same atomicity contract as
// the Redis driver by serializing every operation behind one mutex, and it
// expires keys lazily on access.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   clock.Clocker
	closed  atomic.Bool
}

// NewMemory builds an empty in-process store reading time from clk.
func NewMemory(clk clock.Clocker) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		clock:   clk,
	}
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := m.checkUsable(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: m.clock.Now().Add(ttl)}

	return nil
}

func (m *Memory) GetDel(ctx context.Context, key string) ([]byte, error) {
	if err := m.checkUsable(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	delete(m.entries, key)

	if m.clock.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}

	return entry.value, nil
}

func (m *Memory) CheckAndIncrement(ctx context.Context, key string, limit int64, window time.Duration) (int64, bool, error) {
	if err := m.checkUsable(ctx); err != nil {
		return 0, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()

	entry, ok := m.entries[key]
	if ok && now.After(entry.expiresAt) {
		delete(m.entries, key)
		ok = false
	}

	if !ok {
		m.entries[key] = memoryEntry{count: 1, expiresAt: now.Add(window)}
		return 1, true, nil
	}

	if entry.count >= limit {
		return entry.count, false, nil
	}

	entry.count++
	m.entries[key] = entry

	return entry.count, true, nil
}

func (m *Memory) Close() error {
	m.closed.Store(true)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)

	return nil
}

func (m *Memory) checkUsable(ctx context.Context) error {
	if m.closed.Load() {
		return errClosed
	}

	return ctx.Err()
}
