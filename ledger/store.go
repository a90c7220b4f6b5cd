/*
store.go - Persistence contract for the sales ledger

PURPOSE:
  Defines the interface between the ledger and its backing medium. The
  ledger does not care whether sales live in memory, a SQLite file, a
  Redis blob, or behind a remote CRUD endpoint; it only requires these
  three operations with the semantics below.

APPEND-MOSTLY CONTRACT:
  - Append(): the only way a sale enters the store. Insertion order is
    preserved; Load returns oldest first.
  - Patch(): the only permitted mutation, flipping IsPending. No other
    field of a stored sale ever changes. There is NO delete.

IMPLEMENTATIONS:
  - ledger/store/memory.go: in-memory (tests, dev)
  - store/sqlite:           SQLite file or :memory:
  - store/redisblob:        whole-ledger JSON blob under a fixed Redis key
  - store/rest:             remote CRUD endpoint (mock REST server)
*/
package ledger

import "context"

// SaleStore persists recorded sales.
type SaleStore interface {
	// Load returns the full sale sequence, oldest first.
	Load(ctx context.Context) ([]Sale, error)

	// Append adds a sale at the end of the sequence.
	Append(ctx context.Context, sale Sale) error

	// Patch sets the IsPending flag of the sale with the given id and
	// touches nothing else. Returns an error wrapping ErrSaleNotFound
	// when the id is absent.
	Patch(ctx context.Context, id SaleID, pending bool) error
}
