package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendita/pos-engine/ledger"
	"github.com/tiendita/pos-engine/ledger/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func sale(id string, pending bool, customer string, total ledger.Cents) ledger.Sale {
	return ledger.Sale{
		ID:            ledger.SaleID(id),
		Date:          time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
		Items:         []ledger.CartItem{{ProductID: "p-" + id, Name: "Item " + id, UnitPrice: total, Quantity: 1}},
		Total:         total,
		PaymentMethod: ledger.PayCash,
		CustomerName:  customer,
		IsPending:     pending,
	}
}

// failingStore returns a transport error on every operation.
type failingStore struct{}

func (failingStore) Load(context.Context) ([]ledger.Sale, error) {
	return nil, &ledger.TransportError{Op: "load", Err: errors.New("connection refused")}
}
func (failingStore) Append(context.Context, ledger.Sale) error {
	return &ledger.TransportError{Op: "append", Err: errors.New("connection refused")}
}
func (failingStore) Patch(context.Context, ledger.SaleID, bool) error {
	return &ledger.TransportError{Op: "patch", Err: errors.New("connection refused")}
}

// =============================================================================
// LEDGER TESTS
// =============================================================================

func TestLedger_All_InsertionOrderOldestFirst(t *testing.T) {
	led := ledger.NewLedger(store.NewMemory())
	ctx := context.Background()

	require.NoError(t, led.Append(ctx, sale("a", false, "", 100)))
	require.NoError(t, led.Append(ctx, sale("b", true, "Ana", 200)))
	require.NoError(t, led.Append(ctx, sale("c", false, "", 300)))

	sales, err := led.All(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 3)
	assert.Equal(t, ledger.SaleID("a"), sales[0].ID)
	assert.Equal(t, ledger.SaleID("c"), sales[2].ID)
}

func TestLedger_MarkPaid_OneWayTransition(t *testing.T) {
	// GIVEN: A pending credit sale
	// WHEN: Marking it paid
	// THEN: IsPending is false on every subsequent read, the customer name
	//       survives, and nothing in the core sets it back to pending

	led := ledger.NewLedger(store.NewMemory())
	ctx := context.Background()

	require.NoError(t, led.Append(ctx, sale("a", true, "Ana", 500)))
	require.NoError(t, led.MarkPaid(ctx, "a"))

	sales, err := led.All(ctx)
	require.NoError(t, err)
	assert.False(t, sales[0].IsPending)
	assert.Equal(t, "Ana", sales[0].CustomerName, "settlement keeps the name for history")
}

func TestLedger_MarkPaid_AlreadySettledIsNoOp(t *testing.T) {
	// Idempotent retry: settling twice succeeds and changes nothing.
	led := ledger.NewLedger(store.NewMemory())
	ctx := context.Background()

	require.NoError(t, led.Append(ctx, sale("a", true, "Ana", 500)))
	require.NoError(t, led.MarkPaid(ctx, "a"))
	require.NoError(t, led.MarkPaid(ctx, "a"))

	sales, _ := led.All(ctx)
	assert.False(t, sales[0].IsPending)
}

func TestLedger_MarkPaid_UnknownID(t *testing.T) {
	led := ledger.NewLedger(store.NewMemory())

	err := led.MarkPaid(context.Background(), "missing")

	assert.Error(t, err)
	assert.True(t, ledger.IsNotFound(err))
	var nf *ledger.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Equal(t, ledger.SaleID("missing"), nf.SaleID)
}

func TestLedger_MarkPaid_AffectsNoOtherField(t *testing.T) {
	led := ledger.NewLedger(store.NewMemory())
	ctx := context.Background()

	original := sale("a", true, "Ana", 500)
	require.NoError(t, led.Append(ctx, original))
	require.NoError(t, led.MarkPaid(ctx, "a"))

	sales, _ := led.All(ctx)
	got := sales[0]
	assert.Equal(t, original.Total, got.Total)
	assert.Equal(t, original.PaymentMethod, got.PaymentMethod)
	assert.Equal(t, original.Date, got.Date)
	assert.Equal(t, original.Items, got.Items)
}

func TestLedger_Subscribe_NotifiedOnMutations(t *testing.T) {
	led := ledger.NewLedger(store.NewMemory())
	ctx := context.Background()

	var calls int
	led.Subscribe(func() { calls++ })

	require.NoError(t, led.Append(ctx, sale("a", true, "Ana", 500))) // 1
	require.NoError(t, led.MarkPaid(ctx, "a"))                      // 2
	require.NoError(t, led.MarkPaid(ctx, "a"))                      // no-op, no notify

	assert.Equal(t, 2, calls)
}

func TestLedger_TransportFailure_Surfaces(t *testing.T) {
	// GIVEN: A backend that refuses connections
	// WHEN: Appending or marking paid
	// THEN: The failure surfaces as a transport error, never swallowed

	led := ledger.NewLedger(failingStore{})
	ctx := context.Background()

	err := led.Append(ctx, sale("a", false, "", 100))
	assert.True(t, ledger.IsTransport(err))

	err = led.MarkPaid(ctx, "a")
	assert.True(t, ledger.IsTransport(err))
}

func TestLedger_CustomerNames_DistinctPendingOnly(t *testing.T) {
	led := ledger.NewLedger(store.NewMemory())
	ctx := context.Background()

	require.NoError(t, led.Append(ctx, sale("a", true, "Ana", 100)))
	require.NoError(t, led.Append(ctx, sale("b", false, "", 200)))
	require.NoError(t, led.Append(ctx, sale("c", true, "Ana", 300)))
	require.NoError(t, led.Append(ctx, sale("d", true, "Beto", 400)))

	names, err := led.CustomerNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Beto"}, names)
}

// =============================================================================
// MEMORY STORE TESTS
// =============================================================================

func TestMemoryStore_LoadReturnsDeepCopies(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.Append(ctx, sale("a", true, "Ana", 500)))

	first, err := mem.Load(ctx)
	require.NoError(t, err)
	first[0].Items[0].Quantity = 99
	first[0].IsPending = false

	second, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second[0].Items[0].Quantity)
	assert.True(t, second[0].IsPending)
}

func TestMemoryStore_PatchUnknownID(t *testing.T) {
	mem := store.NewMemory()

	err := mem.Patch(context.Background(), "missing", false)
	assert.True(t, ledger.IsNotFound(err))
}
