// Package concurrency guards against two simultaneous runs targeting the
// same issue.
package concurrency

import "sync"

// Manager tracks which issue keys currently have a run in flight. Keys
// use the "owner/repo#issue" form.
type Manager struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{active: make(map[string]bool)}
}

// TryAcquire marks an issue key as in flight. It returns false when a
// run for that key is already active.
func (m *Manager) TryAcquire(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[key] {
		return false
	}
	m.active[key] = true
	return true
}

// Release clears an issue key. Releasing a key that was never acquired
// is a no-op.
func (m *Manager) Release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, key)
}

// Active reports whether a run for the key is currently in flight.
func (m *Manager) Active(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[key]
}
