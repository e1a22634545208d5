package engine

import (
	"sync"
	"sync/atomic"

	"github.com/breardon2011/mitigationDB/internal/core"
)

// Manager holds the currently active rule snapshot behind an atomic
// pointer, so evaluations never block on a refresh. Refreshes happen on a
// schedule (snapshot-refresh task) and after rule mutations.
type Manager struct {
	current atomic.Pointer[Engine]
	mu      sync.Mutex
}

func NewManager(initialRules []core.Rule) *Manager {
	m := &Manager{}
	m.current.Store(New(initialRules))
	return m
}

func (m *Manager) Engine() *Engine {
	return m.current.Load()
}

func (m *Manager) Update(rules []core.Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current.Store(New(rules))
}
