package cache

import (
	"context"
	"sync"
	"time"

	"expedientes/internal/model"
)

// Memory is an in-process Cache. Concurrent misses are serialized so the store is read once.
type Memory struct {
	mu       sync.Mutex
	records  []model.CaseRecord
	loadedAt time.Time
	valid    bool
	now      func() time.Time
}

// NewMemory creates an empty in-process cache. A nil clock means time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{now: now}
}

var _ Cache = (*Memory)(nil)

func (m *Memory) GetOrLoad(ctx context.Context, ttl time.Duration, load Loader) ([]model.CaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && ttl > 0 && m.now().Sub(m.loadedAt) < ttl {
		return clone(m.records), nil
	}

	records, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		m.records = clone(records)
		m.loadedAt = m.now()
		m.valid = true
	}
	return records, nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.valid = false
	return nil
}
