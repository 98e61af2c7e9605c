package kv

import "sync"

// Memory is an in-process Store used by tests and the one-shot CLI commands.
// It is not durable, so the rule store skips demo seeding on top of it unless
// Persistent is set.
type Memory struct {
	mu         sync.RWMutex
	data       map[string]string
	Persistent bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Durable() bool { return m.Persistent }

func (m *Memory) Close() error { return nil }
