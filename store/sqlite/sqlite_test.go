package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendita/pos-engine/catalog"
	"github.com/tiendita/pos-engine/ledger"
	"github.com/tiendita/pos-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testSale(id string, pending bool, customer string) ledger.Sale {
	items := []ledger.CartItem{
		{ProductID: "p1", Name: "Pan", UnitPrice: 300, Quantity: 2, Unit: "pieza"},
		{ProductID: "p2", Name: "Leche", UnitPrice: 1200, Quantity: 1, Unit: "litro"},
	}
	return ledger.Sale{
		ID:            ledger.SaleID(id),
		Date:          time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC),
		Items:         items,
		Total:         ledger.ItemsTotal(items),
		PaymentMethod: ledger.PayCash,
		CustomerName:  customer,
		IsPending:     pending,
	}
}

// =============================================================================
// SALE STORE TESTS
// =============================================================================

func TestStore_AppendAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	want := testSale("s1", true, "Ana")
	require.NoError(t, st.Append(ctx, want))

	sales, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)

	got := sales[0]
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, got.Date.Equal(want.Date))
	assert.Equal(t, want.Total, got.Total)
	assert.Equal(t, want.PaymentMethod, got.PaymentMethod)
	assert.Equal(t, "Ana", got.CustomerName)
	assert.True(t, got.IsPending)

	require.Len(t, got.Items, 2)
	assert.Equal(t, want.Items[0], got.Items[0])
	assert.Equal(t, want.Items[1], got.Items[1])
}

func TestStore_LoadPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, st.Append(ctx, testSale(id, false, "")))
	}

	sales, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 3)
	assert.Equal(t, ledger.SaleID("s1"), sales[0].ID)
	assert.Equal(t, ledger.SaleID("s2"), sales[1].ID)
	assert.Equal(t, ledger.SaleID("s3"), sales[2].ID)
}

func TestStore_PatchFlipsPendingOnly(t *testing.T) {
	// GIVEN: A stored credit sale
	// WHEN: Patching it to settled
	// THEN: Only is_pending changes; total, items and customer survive

	ctx := context.Background()
	st := newStore(t)

	require.NoError(t, st.Append(ctx, testSale("s1", true, "Ana")))
	require.NoError(t, st.Patch(ctx, "s1", false))

	sales, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.False(t, sales[0].IsPending)
	assert.Equal(t, "Ana", sales[0].CustomerName)
	assert.Equal(t, ledger.Cents(1800), sales[0].Total)
	assert.Len(t, sales[0].Items, 2)
}

func TestStore_PatchUnknownID(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	err := st.Patch(ctx, "ghost", false)
	require.Error(t, err)

	var nf *ledger.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, ledger.SaleID("ghost"), nf.SaleID)
}

func TestStore_LoadEmpty(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	sales, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestStore_SaleWithNoUnit(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	sale := ledger.Sale{
		ID:            "s1",
		Date:          time.Now().UTC(),
		Items:         []ledger.CartItem{{ProductID: "p1", Name: "Pan", UnitPrice: 300, Quantity: 1}},
		Total:         300,
		PaymentMethod: ledger.PayCard,
	}
	require.NoError(t, st.Append(ctx, sale))

	sales, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Empty(t, sales[0].Items[0].Unit)
}

// =============================================================================
// PRODUCT STORE TESTS
// =============================================================================

func TestStore_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	p := catalog.Product{ID: "p1", Name: "Pan", Price: 300, Unit: "pieza", Category: "Panadería", Stock: 20}
	require.NoError(t, st.SaveProduct(ctx, p))

	got, err := st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p, *got)

	// Upsert replaces in place.
	p.Price = 350
	require.NoError(t, st.SaveProduct(ctx, p))

	list, err := st.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ledger.Cents(350), list[0].Price)

	require.NoError(t, st.DeleteProduct(ctx, "p1"))

	got, err = st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_DeleteUnknownProduct(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	err := st.DeleteProduct(ctx, "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestStore_GetUnknownProductIsNilNil(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	got, err := st.GetProduct(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}
