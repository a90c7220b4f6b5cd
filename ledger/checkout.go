/*
checkout.go - Checkout finalizer

PURPOSE:
  Converts a non-empty cart plus payment metadata into an immutable Sale
  and appends it to the ledger. This is the ONLY code path that creates
  a Sale.

CONTRACT:
  - Empty cart                      -> ValidationError (ErrEmptyCart)
  - Unknown payment method          -> ValidationError
  - Credit sale with blank customer -> ValidationError (ErrMissingCustomer)
  - A non-credit sale never stores a customer name.
  - The item list is snapshot-copied at call time; the total is computed
    from that snapshot and fixed forever.
  - Finalize does not touch the cart; on success the CALLER clears it,
    so a failed checkout keeps the cart intact for retry.
*/
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Finalizer turns carts into sales. Clock and id generation are injectable
// for deterministic tests.
type Finalizer struct {
	ledger *Ledger

	Now   func() time.Time
	NewID func() SaleID
}

func NewFinalizer(l *Ledger) *Finalizer {
	return &Finalizer{
		ledger: l,
		Now:    time.Now,
		NewID:  func() SaleID { return SaleID(uuid.NewString()) },
	}
}

// Finalize validates the cart snapshot, builds the Sale and appends it to
// the ledger. Returns the recorded sale.
func (f *Finalizer) Finalize(ctx context.Context, items []CartItem, method PaymentMethod, pending bool, customerName string) (Sale, error) {
	if len(items) == 0 {
		return Sale{}, &ValidationError{Reason: ErrEmptyCart}
	}
	if !method.Valid() {
		return Sale{}, &ValidationError{Reason: ErrValidation, Detail: "unknown payment method " + string(method)}
	}

	customerName = strings.TrimSpace(customerName)
	if pending && customerName == "" {
		return Sale{}, &ValidationError{Reason: ErrMissingCustomer}
	}
	if !pending {
		// Customer names belong to credit sales only.
		customerName = ""
	}

	snapshot := CloneItems(items)
	sale := Sale{
		ID:            f.NewID(),
		Date:          f.Now(),
		Items:         snapshot,
		Total:         ItemsTotal(snapshot),
		PaymentMethod: method,
		CustomerName:  customerName,
		IsPending:     pending,
	}

	if err := f.ledger.Append(ctx, sale); err != nil {
		return Sale{}, err
	}
	return sale, nil
}
