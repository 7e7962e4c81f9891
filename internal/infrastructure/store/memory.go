package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// Memory is an in-process Store. It exists for two reasons: as the
// degraded fallback when no durable backend is reachable, and as the
// test double for everything built on top of the Store interface.
// It is NOT durable across process restarts.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string, dest any) error {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (m *Memory) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Keys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Update runs the closure under the write lock, so in-process updates are
// strictly serialized and never conflict.
func (m *Memory) Update(ctx context.Context, key string, apply func(current []byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current []byte
	if raw, ok := m.data[key]; ok {
		current = make([]byte, len(raw))
		copy(current, raw)
	}

	next, err := apply(current)
	if err != nil {
		return err
	}
	m.data[key] = next
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Name() string { return "memory" }
