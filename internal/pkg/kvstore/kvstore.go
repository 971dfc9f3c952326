package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that the key does not exist or has already expired.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a key/value store with expiring keys.
//
// Implementations must make GetDel and CheckAndIncrement atomic with respect
// to concurrent callers. No operation may be built from multiple store round
// trips.
type Store interface {
	// Set writes value under key with the given time to live.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// GetDel returns the value stored under key and removes it in the same
	// atomic step. When the key is absent it returns ErrNotFound. Under
	// concurrent calls for the same key exactly one caller observes the
	// value; the rest get ErrNotFound.
	GetDel(ctx context.Context, key string) ([]byte, error)

	// CheckAndIncrement implements a fixed window counter. An absent key is
	// created with count 1 and ttl window. A key below limit is incremented.
	// A key at or above limit is left untouched and allowed is false. The
	// returned count is the counter value after the call.
	CheckAndIncrement(ctx context.Context, key string, limit int64, window time.Duration) (count int64, allowed bool, err error)

	// Close releases the underlying resources.
	Close() error
}
