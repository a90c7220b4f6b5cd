/*
cart.go - Cart builder

PURPOSE:
  Maintains the working set of items for the sale being assembled at the
  counter. A pure in-memory accumulator: no persistence, no catalog checks.
  Stock validation is explicitly a catalog concern and never happens here.

INVARIANTS:
  - At most one line per product id; adding an existing product merges
    quantities instead of duplicating the line.
  - Quantity is always positive; setting a quantity <= 0 removes the line.
  - Items() and callers of observers see snapshot copies, never the
    backing slice.

OBSERVERS:
  Subscribers are notified synchronously after every mutation. This replaces
  the reference UI's global "cart changed" event bus with an explicit
  subscription on the cart itself.
*/
package ledger

import "sync"

// Cart accumulates items before checkout. Safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	items []CartItem
	subs  []func()
}

func NewCart() *Cart {
	return &Cart{}
}

// Subscribe registers a callback invoked synchronously after each mutation.
func (c *Cart) Subscribe(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// AddItem adds a product snapshot to the cart. If the product is already in
// the cart, its quantity is incremented. A non-positive quantity on the
// incoming item counts as 1 (the "tap the product card" default).
func (c *Cart) AddItem(item CartItem) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	c.mu.Lock()
	merged := false
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		c.items = append(c.items, item)
	}
	c.mu.Unlock()

	c.notify()
}

// SetQuantity replaces the quantity of a line. Quantity <= 0 removes the
// line. Unknown product ids are a no-op.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}

	c.mu.Lock()
	changed := false
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			changed = true
			break
		}
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// RemoveItem removes a line if present. Removing twice is the same as
// removing once.
func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	removed := false
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			removed = true
			break
		}
	}
	c.mu.Unlock()

	if removed {
		c.notify()
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	hadItems := len(c.items) > 0
	c.items = nil
	c.mu.Unlock()

	if hadItems {
		c.notify()
	}
}

// Items returns a snapshot copy of the current lines.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CloneItems(c.items)
}

// Total returns the sum of line subtotals; 0 for an empty cart.
func (c *Cart) Total() Cents {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ItemsTotal(c.items)
}

// Len returns the number of distinct lines (not total units).
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// notify runs subscribers outside the lock so a subscriber may read the
// cart without deadlocking.
func (c *Cart) notify() {
	c.mu.Lock()
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
