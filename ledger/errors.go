/*
errors.go - Centralized error types for the ledger core

ERROR CATEGORIES:
  1. Validation errors - Checkout rejected (empty cart, missing customer)
  2. Not-found errors  - markPaid against an unknown sale id
  3. Transport errors  - Persistence backend failures (sqlite, redis, rest)

USAGE:
  Callers classify with errors.Is / the helpers at the bottom:

    if ledger.IsClientError(err) { ... 400 ... }
    if ledger.IsNotFound(err)    { ... 404 ... }
    if ledger.IsTransport(err)   { ... 502 ... }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of every checkout validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyCart is returned when finalizing a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMissingCustomer is returned when a credit sale has no customer name.
	ErrMissingCustomer = errors.New("credit sale requires a customer name")

	// ErrSaleNotFound is returned when a sale id does not exist in the ledger.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrTransport is the root of every persistence/transport failure.
	ErrTransport = errors.New("transport failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes why a checkout was rejected.
type ValidationError struct {
	Reason error // ErrEmptyCart or ErrMissingCustomer
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%v: %s", e.Reason, e.Detail)
}

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Reason} }

// NotFoundError identifies which sale id was missing.
type NotFoundError struct {
	SaleID SaleID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sale %s not found", e.SaleID)
}

func (e *NotFoundError) Unwrap() error { return ErrSaleNotFound }

// TransportError wraps a backend failure. The ledger never retries; it
// surfaces the failure and leaves in-memory state unchanged.
type TransportError struct {
	Op  string // e.g. "load", "append", "patch"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid client input.
func IsClientError(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether the error indicates a missing sale.
func IsNotFound(err error) bool { return errors.Is(err, ErrSaleNotFound) }

// IsTransport reports whether the error came from the persistence backend.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }
