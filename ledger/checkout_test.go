package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendita/pos-engine/ledger"
	"github.com/tiendita/pos-engine/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestFinalizer() (*ledger.Finalizer, *ledger.Ledger) {
	led := ledger.NewLedger(store.NewMemory())
	fin := ledger.NewFinalizer(led)
	fin.Now = func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }

	n := 0
	fin.NewID = func() ledger.SaleID {
		n++
		return ledger.SaleID(string(rune('a' + n - 1)))
	}
	return fin, led
}

// =============================================================================
// CHECKOUT FINALIZER TESTS
// =============================================================================

func TestFinalize_ComputesTotalFromSnapshot(t *testing.T) {
	// GIVEN: A cart with 2x @1200
	// WHEN: Checking out with cash, not on credit
	// THEN: Sale total is 2400 and no customer name is stored

	fin, _ := newTestFinalizer()
	ctx := context.Background()

	sale, err := fin.Finalize(ctx, []ledger.CartItem{item("p1", "Leche", 1200, 2)}, ledger.PayCash, false, "")
	require.NoError(t, err)

	assert.Equal(t, ledger.Cents(2400), sale.Total)
	assert.Empty(t, sale.CustomerName)
	assert.False(t, sale.IsPending)
	assert.Equal(t, time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC), sale.Date)
}

func TestFinalize_EmptyCart_Rejected(t *testing.T) {
	fin, led := newTestFinalizer()
	ctx := context.Background()

	_, err := fin.Finalize(ctx, nil, ledger.PayCash, false, "")

	assert.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrEmptyCart)
	assert.True(t, ledger.IsClientError(err))

	sales, _ := led.All(ctx)
	assert.Empty(t, sales, "rejected checkout must not touch the ledger")
}

func TestFinalize_CreditSaleWithoutCustomer_Rejected(t *testing.T) {
	// GIVEN: A valid cart
	// WHEN: Checking out on credit with a blank customer name
	// THEN: ValidationError wrapping ErrMissingCustomer

	fin, _ := newTestFinalizer()
	ctx := context.Background()

	_, err := fin.Finalize(ctx, []ledger.CartItem{item("p1", "Pan", 300, 1)}, ledger.PayCash, true, "   ")

	assert.ErrorIs(t, err, ledger.ErrMissingCustomer)
	assert.True(t, ledger.IsClientError(err))
}

func TestFinalize_UnknownPaymentMethod_Rejected(t *testing.T) {
	fin, _ := newTestFinalizer()

	_, err := fin.Finalize(context.Background(), []ledger.CartItem{item("p1", "Pan", 300, 1)}, "cheque", false, "")
	assert.True(t, ledger.IsClientError(err))
}

func TestFinalize_CreditSaleKeepsCustomerName(t *testing.T) {
	fin, _ := newTestFinalizer()

	sale, err := fin.Finalize(context.Background(), []ledger.CartItem{item("p1", "Pan", 300, 1)}, ledger.PayCard, true, " Ana ")
	require.NoError(t, err)

	assert.True(t, sale.IsPending)
	assert.Equal(t, "Ana", sale.CustomerName, "name is trimmed and stored")
}

func TestFinalize_NonCreditSaleDropsCustomerName(t *testing.T) {
	// The customerName <-> isPending invariant: a paid counter sale never
	// stores a name, even when the caller supplies one.
	fin, _ := newTestFinalizer()

	sale, err := fin.Finalize(context.Background(), []ledger.CartItem{item("p1", "Pan", 300, 1)}, ledger.PayCash, false, "Ana")
	require.NoError(t, err)
	assert.Empty(t, sale.CustomerName)
}

func TestFinalize_SnapshotsItems(t *testing.T) {
	// GIVEN: A finalized sale
	// WHEN: The caller later mutates the slice it passed in
	// THEN: The recorded sale is unaffected (snapshot copy, not a live ref)

	fin, led := newTestFinalizer()
	ctx := context.Background()

	items := []ledger.CartItem{item("p1", "Pan", 300, 2)}
	sale, err := fin.Finalize(ctx, items, ledger.PayCash, false, "")
	require.NoError(t, err)

	items[0].Quantity = 99

	sales, err := led.All(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 2, sales[0].Items[0].Quantity)
	assert.Equal(t, ledger.Cents(600), sale.Total)
}

func TestFinalize_AppendsToLedger(t *testing.T) {
	fin, led := newTestFinalizer()
	ctx := context.Background()

	first, err := fin.Finalize(ctx, []ledger.CartItem{item("p1", "Pan", 300, 1)}, ledger.PayCash, false, "")
	require.NoError(t, err)
	second, err := fin.Finalize(ctx, []ledger.CartItem{item("p2", "Leche", 1200, 1)}, ledger.PayCard, false, "")
	require.NoError(t, err)

	sales, err := led.All(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, first.ID, sales[0].ID, "insertion order, oldest first")
	assert.Equal(t, second.ID, sales[1].ID)
}

func TestFinalize_TotalMatchesItemSums(t *testing.T) {
	// Total consistency: totalCents == sum(unitPrice * quantity) at creation.
	fin, _ := newTestFinalizer()

	items := []ledger.CartItem{
		item("p1", "Pan", 300, 3),
		item("p2", "Leche", 1200, 2),
		item("p3", "Queso", 4550, 1),
	}
	sale, err := fin.Finalize(context.Background(), items, ledger.PayDigitalWallet, false, "")
	require.NoError(t, err)

	var want ledger.Cents
	for _, it := range sale.Items {
		want += it.UnitPrice * ledger.Cents(it.Quantity)
	}
	assert.Equal(t, want, sale.Total)
	assert.Equal(t, ledger.Cents(300*3+1200*2+4550), sale.Total)
}
