package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapline/inventory-engine/inventory"
	"github.com/tapline/inventory-engine/inventory/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var base = time.Date(2025, time.June, 1, 18, 0, 0, 0, time.UTC)

func validMovement(id string, mType inventory.MovementType, qty float64, at time.Time) inventory.StockMovement {
	return inventory.StockMovement{
		ID:        id,
		ProductID: "gin",
		StaffID:   "staff-1",
		Type:      mType,
		Reason:    inventory.ReasonDelivery,
		Quantity:  inventory.Qty(qty),
		CreatedAt: at,
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestLedger_Append_RejectsInvalidEntries(t *testing.T) {
	// GIVEN: Movements violating the entry invariants
	// WHEN: Appending
	// THEN: Each is rejected with a validation error, nothing is stored

	ledger := inventory.NewLedger(store.NewMemory())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*inventory.StockMovement)
	}{
		{"missing product", func(m *inventory.StockMovement) { m.ProductID = "" }},
		{"missing staff", func(m *inventory.StockMovement) { m.StaffID = "" }},
		{"bad type", func(m *inventory.StockMovement) { m.Type = "SIDEWAYS" }},
		{"zero quantity", func(m *inventory.StockMovement) { m.Quantity = inventory.QtyInt(0) }},
		{"negative quantity", func(m *inventory.StockMovement) { m.Quantity = inventory.QtyInt(-2) }},
		{"unknown reason", func(m *inventory.StockMovement) { m.Reason = "evaporation" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMovement("m-1", inventory.MovementIn, 5, base)
			tc.mutate(&m)

			err := ledger.Append(ctx, m)
			assert.True(t, inventory.IsValidation(err), "expected validation error, got %v", err)
		})
	}

	ms, err := ledger.Movements(ctx, "gin")
	require.NoError(t, err)
	assert.Empty(t, ms, "rejected entries must not be stored")
}

func TestLedger_AppendBatch_AllOrNothingValidation(t *testing.T) {
	// GIVEN: A batch where the second entry is invalid
	// WHEN: Appending the batch
	// THEN: The whole batch is rejected

	ledger := inventory.NewLedger(store.NewMemory())
	ctx := context.Background()

	batch := []inventory.StockMovement{
		validMovement("m-1", inventory.MovementIn, 5, base),
		{ID: "m-2", ProductID: "gin", Type: inventory.MovementIn, Quantity: inventory.QtyInt(1)},
	}

	err := ledger.AppendBatch(ctx, batch)
	assert.True(t, inventory.IsValidation(err))

	ms, err := ledger.Movements(ctx, "gin")
	require.NoError(t, err)
	assert.Empty(t, ms)
}

// =============================================================================
// ORDERING & WINDOWS
// =============================================================================

func TestLedger_Movements_Chronological(t *testing.T) {
	// GIVEN: Movements appended out of time order
	// WHEN: Reading them back
	// THEN: They come back chronologically

	ledger := inventory.NewLedger(store.NewMemory())
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, validMovement("m-2", inventory.MovementIn, 3, base.Add(2*time.Hour))))
	require.NoError(t, ledger.Append(ctx, validMovement("m-1", inventory.MovementIn, 5, base)))
	require.NoError(t, ledger.Append(ctx, validMovement("m-3", inventory.MovementOut, 1, base.Add(4*time.Hour))))

	ms, err := ledger.Movements(ctx, "gin")
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, "m-1", ms[0].ID)
	assert.Equal(t, "m-2", ms[1].ID)
	assert.Equal(t, "m-3", ms[2].ID)
}

func TestLedger_MovementsInRange_InclusiveBounds(t *testing.T) {
	// GIVEN: Movements at, inside, and outside the window edges
	// WHEN: Querying [from, to]
	// THEN: Both bounds are inclusive

	ledger := inventory.NewLedger(store.NewMemory())
	ctx := context.Background()

	from := base
	to := base.Add(3 * time.Hour)

	require.NoError(t, ledger.Append(ctx, validMovement("before", inventory.MovementIn, 1, from.Add(-time.Minute))))
	require.NoError(t, ledger.Append(ctx, validMovement("at-from", inventory.MovementIn, 1, from)))
	require.NoError(t, ledger.Append(ctx, validMovement("inside", inventory.MovementIn, 1, from.Add(time.Hour))))
	require.NoError(t, ledger.Append(ctx, validMovement("at-to", inventory.MovementIn, 1, to)))
	require.NoError(t, ledger.Append(ctx, validMovement("after", inventory.MovementIn, 1, to.Add(time.Minute))))

	ms, err := ledger.MovementsInRange(ctx, "gin", from, to)
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, "at-from", ms[0].ID)
	assert.Equal(t, "at-to", ms[2].ID)
}

func TestLedger_NetChange_SignsByType(t *testing.T) {
	// GIVEN: 10 in, 4 out
	// WHEN: Summing the window
	// THEN: Net change is +6

	ledger := inventory.NewLedger(store.NewMemory())
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, validMovement("in", inventory.MovementIn, 10, base)))
	out := validMovement("out", inventory.MovementOut, 4, base.Add(time.Hour))
	out.Reason = inventory.ReasonWastage
	require.NoError(t, ledger.Append(ctx, out))

	net, err := ledger.NetChange(ctx, "gin", base, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, net.Equal(inventory.QtyInt(6)))
}

// =============================================================================
// WINDOW SUMS
// =============================================================================

func TestSumByType(t *testing.T) {
	ms := []inventory.StockMovement{
		validMovement("a", inventory.MovementIn, 5, base),
		validMovement("b", inventory.MovementOut, 2, base),
		validMovement("c", inventory.MovementIn, 1.5, base),
	}

	assert.True(t, inventory.SumByType(ms, inventory.MovementIn).Equal(inventory.Qty(6.5)))
	assert.True(t, inventory.SumByType(ms, inventory.MovementOut).Equal(inventory.QtyInt(2)))
	assert.True(t, inventory.SumByType(nil, inventory.MovementIn).IsZero())
}
