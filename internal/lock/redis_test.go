package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, wait time.Duration) (*Redis, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, "test:", 30*time.Second, wait), s
}

func TestRedis_AcquireRelease(t *testing.T) {
	l, s := setupTestRedis(t, 100*time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "expedientes.xlsx")
	require.NoError(t, err)
	assert.True(t, s.Exists("test:lock:expedientes.xlsx"))
	assert.Equal(t, 30*time.Second, s.TTL("test:lock:expedientes.xlsx"))

	require.NoError(t, release(ctx))
	assert.False(t, s.Exists("test:lock:expedientes.xlsx"))
}

func TestRedis_HeldLockTimesOut(t *testing.T) {
	l, _ := setupTestRedis(t, 120*time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	defer release(ctx)

	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRedis_ExpiredHolderCannotReleaseSuccessor(t *testing.T) {
	l, s := setupTestRedis(t, 100*time.Millisecond)
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	s.FastForward(31 * time.Second)

	fresh, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	assert.True(t, s.Exists("test:lock:k"))

	require.NoError(t, fresh(ctx))
	assert.False(t, s.Exists("test:lock:k"))
}

func TestRedis_WaitsForRelease(t *testing.T) {
	l, _ := setupTestRedis(t, 2*time.Second)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = release(ctx)
	}()

	next, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.NoError(t, next(ctx))
}
