package blobstore

import (
	"context"
	"strings"
	"sync"
)

// Memory keeps blobs in a map for tests and local runs. Locators are
// "mem://key".
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, key string, content []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]byte, len(content))
	copy(copied, content)
	m.blobs[key] = copied
	return "mem://" + key, nil
}

func (m *Memory) Delete(_ context.Context, locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, strings.TrimPrefix(locator, "mem://"))
	return nil
}

// Get reads a blob back; test helper.
func (m *Memory) Get(locator string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[strings.TrimPrefix(locator, "mem://")]
	return blob, ok
}
