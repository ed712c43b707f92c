package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pollInterval = 50 * time.Millisecond

// Deletes the key only if it still holds our token, so an expired holder cannot release a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every replica. The lock expires after ttl if the holder dies.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

// NewRedis creates a Redis-backed Locker. wait bounds how long Acquire polls for a held lock.
func NewRedis(client *redis.Client, prefix string, ttl, wait time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl, wait: wait}
}

var _ Locker = (*Redis)(nil)

func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	k := r.prefix + "lock:" + key
	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)

	for {
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", k, err)
		}
		if ok {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("acquire %s: %w", k, ErrTimeout)
		}
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, r.client, []string{k}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release %s: %w", k, err)
		}
		return nil
	}, nil
}
