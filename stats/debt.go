/*
debt.go - Fiado (credit) dashboard aggregation

PURPOSE:
  Groups pending sales into per-customer debt records and wires the
  "mark as paid" action back to the ledger. Groupings are derived, never
  persisted: every read recomputes from the full ledger, so settling a
  sale is just a ledger mutation followed by the next read.
*/
package stats

import (
	"context"
	"sort"

	"github.com/tiendita/pos-engine/ledger"
)

// UnnamedCustomer labels debt groups whose sales carry no customer name.
const UnnamedCustomer = "Sin nombre"

// CustomerDebt is one group of the fiado dashboard: a customer, their
// pending sales, and the owed total. The sales keep their items for
// line-level display.
type CustomerDebt struct {
	CustomerName string
	Sales        []ledger.Sale
	Total        ledger.Cents
}

// Debts groups the pending sales of the full ledger by customer name,
// sorted descending by owed total. For every group, Total equals the sum
// of its sales' totals.
func Debts(sales []ledger.Sale) []CustomerDebt {
	index := make(map[string]int)
	var groups []CustomerDebt

	for _, s := range sales {
		if !s.IsPending {
			continue
		}
		name := s.CustomerName
		if name == "" {
			name = UnnamedCustomer
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, CustomerDebt{CustomerName: name})
		}
		groups[i].Sales = append(groups[i].Sales, s)
		groups[i].Total += s.Total
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Total > groups[j].Total })
	return groups
}

// =============================================================================
// DEBT BOOK - service wrapping the ledger
// =============================================================================

// DebtBook serves the fiado dashboard over a live ledger.
type DebtBook struct {
	ledger *ledger.Ledger
}

func NewDebtBook(l *ledger.Ledger) *DebtBook {
	return &DebtBook{ledger: l}
}

// Groups returns the current debt groupings, recomputed from the ledger.
func (b *DebtBook) Groups(ctx context.Context) ([]CustomerDebt, error) {
	sales, err := b.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	return Debts(sales), nil
}

// MarkAsPaid settles one sale of a customer's debt. The sale id is
// authoritative; the customer name is carried for symmetry with the
// dashboard action and for audit logging upstream. Retrying a settled
// sale is a safe no-op (pending -> settled is one-way).
func (b *DebtBook) MarkAsPaid(ctx context.Context, _ string, id ledger.SaleID) error {
	return b.ledger.MarkPaid(ctx, id)
}
