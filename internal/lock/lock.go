// Package lock provides the advisory write lock taken around read-modify-write of the case store.
//
// Only writers going through this package are serialized. Anyone editing the spreadsheet by hand
// still races with the service: the store remains last-writer-wins at file granularity.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrTimeout is returned when the lock could not be acquired before the wait elapsed.
var ErrTimeout = errors.New("lock wait timed out")

// Release gives the lock back. It is safe to call once.
type Release func(ctx context.Context) error

// Locker acquires exclusive access to a key.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Local serializes writers inside one process with a lock per key.
type Local struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLocal creates an in-process Locker.
func NewLocal() *Local {
	return &Local{locks: make(map[string]chan struct{})}
}

var _ Locker = (*Local)(nil)

func (l *Local) keyLock(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[key]
	if ok {
		return ch
	}
	ch = make(chan struct{}, 1)
	l.locks[key] = ch
	return ch
}

// Acquire blocks until the key is free or ctx is done.
func (l *Local) Acquire(ctx context.Context, key string) (Release, error) {
	ch := l.keyLock(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-ch })
		return nil
	}, nil
}
