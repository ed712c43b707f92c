package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"expedientes/internal/model"
)

const (
	recordsKey    = "records"
	generationKey = "records:generation"
)

// storeIfCurrent writes the loaded records only when no Invalidate ran since the load began.
var storeIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// Redis is a Cache shared by every server replica. Expiry is delegated to Redis via SET PX.
//
// Invalidate bumps a generation counter next to the entry. A load that started before an
// Invalidate still returns its records to its caller but does not store them, so a write
// is never followed by a stale entry living for a full TTL.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Cache = (*Redis)(nil)

// Dial parses a redis:// URL and checks the connection.
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewRedis creates a Redis-backed cache storing records under prefix+"records".
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key() string {
	return r.prefix + recordsKey
}

func (r *Redis) genKey() string {
	return r.prefix + generationKey
}

// generation reads the invalidation counter. It reports false when Redis cannot be read.
func (r *Redis) generation(ctx context.Context) (string, bool) {
	gen, err := r.client.Get(ctx, r.genKey()).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "0", true
	case err != nil:
		return "", false
	}
	return gen, true
}

// GetOrLoad falls back to the loader when Redis is unreachable; the cache only saves reads.
func (r *Redis) GetOrLoad(ctx context.Context, ttl time.Duration, load Loader) ([]model.CaseRecord, error) {
	if ttl > 0 {
		raw, err := r.client.Get(ctx, r.key()).Bytes()
		switch {
		case err == nil:
			var records []model.CaseRecord
			if err := json.Unmarshal(raw, &records); err == nil {
				return records, nil
			}
			slog.WarnContext(ctx, "discarding undecodable cache entry", "key", r.key())
		case !errors.Is(err, redis.Nil):
			slog.WarnContext(ctx, "cache read failed", "key", r.key(), "error", err)
		}
	}

	gen, genOK := "", false
	if ttl > 0 {
		gen, genOK = r.generation(ctx)
	}

	records, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if !genOK {
		return records, nil
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	keys := []string{r.key(), r.genKey()}
	stored, err := storeIfCurrent.Run(ctx, r.client, keys, gen, data, ttl.Milliseconds()).Int()
	switch {
	case err != nil:
		slog.WarnContext(ctx, "cache write failed", "key", r.key(), "error", err)
	case stored == 0:
		slog.DebugContext(ctx, "cache write skipped after invalidation", "key", r.key())
	}
	return records, nil
}

func (r *Redis) Invalidate(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, r.genKey())
		pipe.Del(ctx, r.key())
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}
