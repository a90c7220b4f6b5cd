// Package store provides SaleStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/tiendita/pos-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	sales []ledger.Sale
	index map[ledger.SaleID]int
}

func NewMemory() *Memory {
	return &Memory{index: make(map[ledger.SaleID]int)}
}

// Append adds a sale at the end of the sequence. Insertion order is the
// only order this store knows.
func (m *Memory) Append(_ context.Context, sale ledger.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.index[sale.ID] = len(m.sales)
	m.sales = append(m.sales, sale.Clone())
	return nil
}

// Load returns a deep copy of the full sequence, oldest first.
func (m *Memory) Load(_ context.Context) ([]ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.CloneSales(m.sales), nil
}

// Patch sets IsPending on the matching sale and nothing else.
func (m *Memory) Patch(_ context.Context, id ledger.SaleID, pending bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return &ledger.NotFoundError{SaleID: id}
	}
	m.sales[i].IsPending = pending
	return nil
}
