package storage

import (
	"context"
	"sync"
)

// Memory keeps the session id for the lifetime of the process.
type Memory struct {
	mu      sync.RWMutex
	id      string
	found   bool
	handoff bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the stored id.
func (m *Memory) Get(_ context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id, m.found, nil
}

// Set stores id.
func (m *Memory) Set(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id, m.found = id, true
	return nil
}

// Remove clears the slot and the handoff flag.
func (m *Memory) Remove(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id, m.found, m.handoff = "", false, false
	return nil
}

// HandoffActive reports the stored handoff flag.
func (m *Memory) HandoffActive(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handoff, nil
}

// SetHandoffActive stores the handoff flag.
func (m *Memory) SetHandoffActive(_ context.Context, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handoff = active
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
