/*
Package ledger implements the sales ledger at the core of the POS engine.

PURPOSE:
  This package contains the domain types and operations for recording sales:
  the cart being assembled at the counter, the checkout step that turns a
  cart into an immutable sale, and the ledger that keeps every recorded sale.
  Read-side reporting lives in the stats package; persistence backends live
  in ledger/store (memory) and store/ (sqlite, redisblob, rest).

KEY CONCEPTS IN THIS FILE (types.go):
  - Cents: Integer minor-currency-unit money. Never a float.
  - CartItem: One line of a cart or a sale (product snapshot + quantity).
  - Sale: Immutable record of a completed checkout. The only mutable bit
    is IsPending, which transitions one way: pending -> settled.
  - PaymentMethod: How the sale was (or will be) collected.

DESIGN PRINCIPLES:
  1. Money is always integer cents in storage; formatting divides by 100
     at the display boundary only.
  2. Sales are append-mostly: created once, never deleted, total never
     recomputed after creation even if catalog prices change.
  3. A credit ("fiado") sale carries the customer's name; settling the
     debt keeps the name for historical display.

SEE ALSO:
  - cart.go: Cart builder
  - checkout.go: Finalizer (the only way a Sale is created)
  - ledger.go: Ledger service over a SaleStore
  - store.go: SaleStore persistence contract
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Integer cents
// =============================================================================

// Cents is a monetary amount in minor currency units.
type Cents int64

// Decimal returns the major-unit value (cents / 100) for display.
func (c Cents) Decimal() decimal.Decimal { return decimal.New(int64(c), -2) }

// String formats the amount with two decimals, e.g. Cents(1250) -> "12.50".
func (c Cents) String() string { return c.Decimal().StringFixed(2) }

// =============================================================================
// PAYMENT METHOD
// =============================================================================

type PaymentMethod string

const (
	PayCash          PaymentMethod = "cash"
	PayCard          PaymentMethod = "card"
	PayDigitalWallet PaymentMethod = "digital_wallet"
)

// PaymentMethods lists every known method in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PayCash, PayCard, PayDigitalWallet}
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCard, PayDigitalWallet:
		return true
	}
	return false
}

// =============================================================================
// CART ITEM - Product snapshot plus quantity
// =============================================================================

// CartItem is one line of a cart or a sale. The price is copied from the
// catalog at the moment the item is added, so later catalog edits never
// change an existing sale.
type CartItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice Cents  `json:"unitPriceCents"`
	Quantity  int    `json:"quantity"`
	Unit      string `json:"unit"`
}

// Subtotal returns unit price times quantity.
func (i CartItem) Subtotal() Cents { return i.UnitPrice * Cents(i.Quantity) }

// ItemsTotal sums the subtotals of a line sequence.
func ItemsTotal(items []CartItem) Cents {
	var total Cents
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

// CloneItems returns an independent copy of a line sequence.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}

// =============================================================================
// SALE - Immutable record of a completed checkout
// =============================================================================

type SaleID string

// Sale is a recorded checkout. Total is fixed at creation time and is never
// recomputed from Items. CustomerName is set only when the sale was created
// on credit; it survives settlement for historical display.
type Sale struct {
	ID            SaleID        `json:"id"`
	Date          time.Time     `json:"date"`
	Items         []CartItem    `json:"items"`
	Total         Cents         `json:"totalCents"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CustomerName  string        `json:"customerName,omitempty"`
	IsPending     bool          `json:"isPending"`
}

// Clone returns a deep copy, so callers can hand sales out without aliasing
// the store's backing slice.
func (s Sale) Clone() Sale {
	out := s
	out.Items = CloneItems(s.Items)
	return out
}

// CloneSales deep-copies a sale sequence.
func CloneSales(sales []Sale) []Sale {
	out := make([]Sale, len(sales))
	for i, s := range sales {
		out[i] = s.Clone()
	}
	return out
}
