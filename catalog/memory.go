package catalog

import (
	"context"
	"fmt"
	"sync"
)

// =============================================================================
// MEMORY STORE - In-memory ProductStore (for testing/dev)
// =============================================================================

type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	products map[string]Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: make(map[string]Product)}
}

func (m *MemoryStore) ListProducts(_ context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.products[id])
	}
	return out, nil
}

func (m *MemoryStore) GetProduct(_ context.Context, id string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemoryStore) SaveProduct(_ context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.ID]; !ok {
		m.order = append(m.order, p.ID)
	}
	m.products[p.ID] = p
	return nil
}

func (m *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	delete(m.products, id)
	for i, pid := range m.order {
		if pid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
