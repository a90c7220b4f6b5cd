/*
ledger.go - Ledger service over a SaleStore

PURPOSE:
  The Ledger is the single authority for recorded sales. It wraps a
  SaleStore with the domain rules the raw store does not know about:

  - MarkPaid is a one-way transition. A settled sale stays settled;
    marking it paid again is an idempotent no-op (safe under retry).
  - The customer name of a credit sale is never cleared on settlement.
  - Mutations notify subscribers synchronously, replacing the reference
    UI's "sales-updated" global event with an explicit subscription.

FAILURE SEMANTICS:
  Store failures surface to the caller untouched; a failed Append or
  Patch performs no partial mutation and notifies nobody.
*/
package ledger

import (
	"context"
	"sync"
)

// Ledger exposes append, mark-paid and query operations over a SaleStore.
type Ledger struct {
	store SaleStore

	mu   sync.Mutex
	subs []func()
}

func NewLedger(store SaleStore) *Ledger {
	return &Ledger{store: store}
}

// Subscribe registers a callback invoked synchronously after every
// successful mutation (append or mark-paid).
func (l *Ledger) Subscribe(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, fn)
}

// Append records a sale. Sales enter the ledger exclusively through the
// checkout finalizer; this method trusts its input.
func (l *Ledger) Append(ctx context.Context, sale Sale) error {
	if err := l.store.Append(ctx, sale); err != nil {
		return err
	}
	l.notify()
	return nil
}

// All returns every recorded sale, oldest first. Consumers needing
// most-recent-first explicitly reverse.
func (l *Ledger) All(ctx context.Context) ([]Sale, error) {
	return l.store.Load(ctx)
}

// MarkPaid settles a pending sale. Settling an already-settled sale is a
// no-op; an unknown id yields NotFoundError. No other field is affected.
func (l *Ledger) MarkPaid(ctx context.Context, id SaleID) error {
	sales, err := l.store.Load(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, s := range sales {
		if s.ID == id {
			if !s.IsPending {
				return nil // already settled, safe under retry
			}
			found = true
			break
		}
	}
	if !found {
		return &NotFoundError{SaleID: id}
	}

	if err := l.store.Patch(ctx, id, false); err != nil {
		return err
	}
	l.notify()
	return nil
}

// CustomerNames returns the distinct customer names currently carrying
// debt, in first-seen order. Feeds the "filter by customer" dropdown.
func (l *Ledger) CustomerNames(ctx context.Context) ([]string, error) {
	sales, err := l.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, s := range sales {
		if !s.IsPending || s.CustomerName == "" || seen[s.CustomerName] {
			continue
		}
		seen[s.CustomerName] = true
		names = append(names, s.CustomerName)
	}
	return names, nil
}

func (l *Ledger) notify() {
	l.mu.Lock()
	subs := make([]func(), len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
