// Package ratelimit bounds how often an operation may run per key within a
// fixed window, backed by the kvstore counter primitive.
package ratelimit

import (
	"context"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/kvstore"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	// Allowed reports whether the attempt may proceed.
	Allowed bool
	// Count is the number of attempts recorded in the current window.
	Count int64
}

// Limiter answers whether a keyed attempt is within its budget.
type Limiter interface {
	// Allow records one attempt for key and reports whether it fits the
	// configured budget. A store failure is returned as-is so the caller can
	// fail closed.
	Allow(ctx context.Context, key string) (Decision, error)
}

// FixedWindow is a Limiter over a kvstore.Store using one counter per key
// per window. The check and the increment happen in a single store
// primitive, so concurrent attempts cannot slip past the limit.
type FixedWindow struct {
	store  kvstore.Store
	prefix string
	limit  int64
	window time.Duration
}

// NewFixedWindow builds a limiter granting limit attempts per window. The
// prefix namespaces this limiter's counters inside the shared store.
func NewFixedWindow(store kvstore.Store, prefix string, limit int64, window time.Duration) *FixedWindow {
	return &FixedWindow{
		store:  store,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (f *FixedWindow) Allow(ctx context.Context, key string) (Decision, error) {
	count, allowed, err := f.store.CheckAndIncrement(ctx, f.prefix+key, f.limit, f.window)
	if err != nil {
		return Decision{}, err
	}

	return Decision{Allowed: allowed, Count: count}, nil
}
