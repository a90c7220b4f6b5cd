package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendita/pos-engine/ledger"
	"github.com/tiendita/pos-engine/ledger/store"
	"github.com/tiendita/pos-engine/stats"
)

// =============================================================================
// DEBT GROUPING TESTS
// =============================================================================

func TestDebts_GroupTotalsMatchSaleSums(t *testing.T) {
	// GIVEN: Ana owes two sales (500 + 700), Beto one (300)
	// WHEN: Grouping debts
	// THEN: Each group's total is the exact sum of its sales, desc order

	sales := []ledger.Sale{
		saleAt("a1", now, ledger.PayCash, true, "Ana", line("Pan", 500, 1)),
		saleAt("b1", now, ledger.PayCash, true, "Beto", line("Leche", 300, 1)),
		saleAt("a2", now, ledger.PayCash, true, "Ana", line("Queso", 700, 1)),
	}

	groups := stats.Debts(sales)
	require.Len(t, groups, 2)

	assert.Equal(t, "Ana", groups[0].CustomerName)
	require.Len(t, groups[0].Sales, 2)
	assert.Equal(t, ledger.Cents(1200), groups[0].Total)
	assert.Equal(t, groups[0].Sales[0].Total+groups[0].Sales[1].Total, groups[0].Total)

	assert.Equal(t, "Beto", groups[1].CustomerName)
	assert.Equal(t, ledger.Cents(300), groups[1].Total)
}

func TestDebts_SettledSalesExcluded(t *testing.T) {
	sales := []ledger.Sale{
		saleAt("a", now, ledger.PayCash, true, "Ana", line("Pan", 500, 1)),
		saleAt("b", now, ledger.PayCash, false, "Ana", line("Queso", 900, 1)), // settled credit
		saleAt("c", now, ledger.PayCard, false, "", line("Leche", 300, 1)),
	}

	groups := stats.Debts(sales)
	require.Len(t, groups, 1)
	assert.Equal(t, ledger.Cents(500), groups[0].Total)
}

func TestDebts_UnnamedCustomerPlaceholder(t *testing.T) {
	// A pending sale without a name (legacy data) lands in the placeholder
	// group instead of an empty-named one.
	sales := []ledger.Sale{
		saleAt("a", now, ledger.PayCash, true, "", line("Pan", 500, 1)),
	}

	groups := stats.Debts(sales)
	require.Len(t, groups, 1)
	assert.Equal(t, stats.UnnamedCustomer, groups[0].CustomerName)
}

func TestDebts_EmptyLedger(t *testing.T) {
	assert.Empty(t, stats.Debts(nil))
}

// =============================================================================
// DEBT BOOK TESTS
// =============================================================================

func TestDebtBook_MarkAsPaidShrinksGroup(t *testing.T) {
	// GIVEN: Ana owes two credit sales, Beto one
	// WHEN: Marking one of Ana's sales as paid
	// THEN: Ana's group shrinks to the remaining sale; Beto is untouched

	ctx := context.Background()
	led := ledger.NewLedger(store.NewMemory())

	mustAppend := func(s ledger.Sale) {
		require.NoError(t, led.Append(ctx, s))
	}
	mustAppend(saleAt("a1", time.Now(), ledger.PayCash, true, "Ana", line("Pan", 500, 1)))
	mustAppend(saleAt("a2", time.Now(), ledger.PayCash, true, "Ana", line("Queso", 700, 1)))
	mustAppend(saleAt("b1", time.Now(), ledger.PayCash, true, "Beto", line("Leche", 300, 1)))

	book := stats.NewDebtBook(led)

	require.NoError(t, book.MarkAsPaid(ctx, "Ana", "a1"))

	groups, err := book.Groups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Ana", groups[0].CustomerName)
	require.Len(t, groups[0].Sales, 1)
	assert.Equal(t, ledger.SaleID("a2"), groups[0].Sales[0].ID)
	assert.Equal(t, ledger.Cents(700), groups[0].Total)

	// The settled sale keeps its name in the ledger history.
	all, err := led.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", all[0].CustomerName)
	assert.False(t, all[0].IsPending)
}

func TestDebtBook_MarkAsPaidUnknownSale(t *testing.T) {
	ctx := context.Background()
	book := stats.NewDebtBook(ledger.NewLedger(store.NewMemory()))

	err := book.MarkAsPaid(ctx, "Ana", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrSaleNotFound)
}
