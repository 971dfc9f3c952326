package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkAndIncrementScript runs the whole counter decision inside Redis so
// concurrent callers cannot interleave between the read and the write. A
// counter at the limit is returned as-is without being touched.
var checkAndIncrementScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return {tonumber(current), 0}
end
local value = redis.call("INCR", KEYS[1])
if value == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return {value, 1}
`)

// Redis is the Store implementation backed by a Redis server.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis wraps an already connected Redis client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) GetDel(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (r *Redis) CheckAndIncrement(ctx context.Context, key string, limit int64, window time.Duration) (int64, bool, error) {
	result, err := checkAndIncrementScript.Run(ctx, r.client, []string{key}, limit, window.Milliseconds()).Slice()
	if err != nil {
		return 0, false, err
	}

	if len(result) != 2 {
		return 0, false, fmt.Errorf("kvstore: unexpected script reply of length %d", len(result))
	}

	count, ok := result[0].(int64)
	if !ok {
		return 0, false, fmt.Errorf("kvstore: unexpected script reply type %T", result[0])
	}

	allowed, ok := result[1].(int64)
	if !ok {
		return 0, false, fmt.Errorf("kvstore: unexpected script reply type %T", result[1])
	}

	return count, allowed == 1, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
