package idempotency

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process lock table for tests and single-node runs.
type Memory struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{locks: make(map[string]time.Time)}
}

func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if expiry, held := m.locks[key]; held && now.Before(expiry) {
		return false, nil
	}
	m.locks[key] = now.Add(ttl)
	return true, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}
