package recon_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapline/inventory-engine/inventory"
	"github.com/tapline/inventory-engine/recon"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var closedAt = time.Date(2025, time.June, 1, 23, 0, 0, 0, time.UTC)

func movement(mType inventory.MovementType, reason inventory.MovementReason, qty float64) inventory.StockMovement {
	return inventory.StockMovement{
		ID:        "m-1",
		ProductID: "gin",
		StaffID:   "staff-1",
		Type:      mType,
		Reason:    reason,
		Quantity:  inventory.Qty(qty),
		CreatedAt: closedAt.Add(-time.Hour),
	}
}

// =============================================================================
// CONSERVATION LAW
// =============================================================================

func TestCalculate_CleanShift_NoDiscrepancy(t *testing.T) {
	// GIVEN: 20 bottles at open, 5 delivered, 8 sold, 1 wasted
	// WHEN: The closing count matches the expected 16
	// THEN: Discrepancy is exactly zero

	recs := recon.Calculate(recon.Input{
		ShiftID:  "shift-1",
		ClosedAt: closedAt,
		Products: []recon.ProductWindow{{
			ProductID: "gin",
			Opening:   inventory.QtyInt(20),
			Actual:    inventory.QtyInt(16),
			Movements: []inventory.StockMovement{
				movement(inventory.MovementIn, inventory.ReasonDelivery, 5),
				movement(inventory.MovementOut, inventory.ReasonWastage, 1),
			},
			Sold: inventory.QtyInt(8),
		}},
	})

	require.Len(t, recs, 1)
	rec := recs[0]
	assert.True(t, rec.ExpectedClosing.Equal(inventory.QtyInt(16)),
		"expected = 20 + 5 - 8 - 1 = 16, got %s", rec.ExpectedClosing)
	assert.True(t, rec.Discrepancy.IsZero(), "clean shift should have zero discrepancy")
	assert.True(t, rec.Received.Equal(inventory.QtyInt(5)))
	assert.True(t, rec.Consumed.Equal(inventory.QtyInt(1)))
}

func TestCalculate_MissingStock_PositiveDiscrepancy(t *testing.T) {
	// GIVEN: 12 bottles expected at close
	// WHEN: Only 10 are counted
	// THEN: Discrepancy is +2 (stock missing)

	recs := recon.Calculate(recon.Input{
		ShiftID:  "shift-1",
		ClosedAt: closedAt,
		Products: []recon.ProductWindow{{
			ProductID: "rum",
			Opening:   inventory.QtyInt(15),
			Actual:    inventory.QtyInt(10),
			Sold:      inventory.QtyInt(3),
		}},
	})

	require.Len(t, recs, 1)
	assert.True(t, recs[0].ExpectedClosing.Equal(inventory.QtyInt(12)))
	assert.True(t, recs[0].Discrepancy.Equal(inventory.QtyInt(2)),
		"missing stock must yield a positive discrepancy")
}

func TestCalculate_Surplus_NegativeDiscrepancy(t *testing.T) {
	// GIVEN: 10 expected at close
	// WHEN: 11 are counted (over-count)
	// THEN: Discrepancy is -1, recorded rather than discarded

	recs := recon.Calculate(recon.Input{
		ShiftID:  "shift-1",
		ClosedAt: closedAt,
		Products: []recon.ProductWindow{{
			ProductID: "wine",
			Opening:   inventory.QtyInt(10),
			Actual:    inventory.QtyInt(11),
		}},
	})

	require.Len(t, recs, 1)
	assert.True(t, recs[0].Discrepancy.Equal(inventory.QtyInt(-1)))
}

func TestCalculate_ReceiptsAddToReceived(t *testing.T) {
	// GIVEN: 3 bottles arrive as IN movements and 24 as a received purchase order
	// WHEN: Reconciling the window
	// THEN: received = 3 + 24; the two sources never double count

	recs := recon.Calculate(recon.Input{
		ShiftID:  "shift-1",
		ClosedAt: closedAt,
		Products: []recon.ProductWindow{{
			ProductID: "beer",
			Opening:   inventory.QtyInt(48),
			Actual:    inventory.QtyInt(60),
			Movements: []inventory.StockMovement{
				movement(inventory.MovementIn, inventory.ReasonReturn, 3),
			},
			Sold:     inventory.QtyInt(15),
			Receipts: inventory.QtyInt(24),
		}},
	})

	require.Len(t, recs, 1)
	assert.True(t, recs[0].Received.Equal(inventory.QtyInt(27)))
	assert.True(t, recs[0].ExpectedClosing.Equal(inventory.QtyInt(60)))
	assert.True(t, recs[0].Discrepancy.IsZero())
}

func TestCalculate_FractionalQuantities_Exact(t *testing.T) {
	// GIVEN: Quantities measured in fractional units (open bottles)
	// WHEN: Reconciling
	// THEN: Decimal arithmetic is exact, no float drift

	recs := recon.Calculate(recon.Input{
		ShiftID:  "shift-1",
		ClosedAt: closedAt,
		Products: []recon.ProductWindow{{
			ProductID: "vodka",
			Opening:   inventory.Qty(4.7),
			Actual:    inventory.Qty(3.2),
			Sold:      inventory.Qty(1.5),
		}},
	})

	require.Len(t, recs, 1)
	assert.True(t, recs[0].ExpectedClosing.Equal(inventory.Qty(3.2)))
	assert.True(t, recs[0].Discrepancy.IsZero())
}

func TestCalculate_PreservesInputOrderAndLeavesIDsEmpty(t *testing.T) {
	// GIVEN: Three products in a specific order
	// WHEN: Calculating
	// THEN: Output preserves input order; IDs are for the caller to assign

	recs := recon.Calculate(recon.Input{
		ShiftID:  "shift-1",
		ClosedAt: closedAt,
		Products: []recon.ProductWindow{
			{ProductID: "c", Opening: inventory.QtyInt(1), Actual: inventory.QtyInt(1)},
			{ProductID: "a", Opening: inventory.QtyInt(2), Actual: inventory.QtyInt(2)},
			{ProductID: "b", Opening: inventory.QtyInt(3), Actual: inventory.QtyInt(3)},
		},
	})

	require.Len(t, recs, 3)
	assert.Equal(t, inventory.ProductID("c"), recs[0].ProductID)
	assert.Equal(t, inventory.ProductID("a"), recs[1].ProductID)
	assert.Equal(t, inventory.ProductID("b"), recs[2].ProductID)
	for _, rec := range recs {
		assert.Empty(t, rec.ID)
		assert.Equal(t, closedAt, rec.CreatedAt)
	}
}
