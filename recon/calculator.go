/*
calculator.go - Pure reconciliation arithmetic

PURPOSE:
  Computes one Reconciliation record per product counted during a shift.
  The calculator is a pure function of the shift window: it receives the
  opening/closing counts and the ledger events that fall inside
  [start_time, end_time], and returns the derived records. It performs no
  I/O and generates no IDs; the caller owns persistence.

TERMS:
  received = IN movements in the window
           + purchase order items received in the window
  sold     = sales attributed to this shift (by shift id, never timestamp,
             so clock skew cannot move a sale between shifts)
  consumed = OUT movements in the window (wastage, breakage, theft, ...)

  expected_closing = opening + received - sold - consumed
  discrepancy      = expected_closing - actual_closing

NUMERIC SEMANTICS:
  All arithmetic is decimal. Zero checks elsewhere use an epsilon; the
  calculator itself records exact values and leaves tolerance decisions to
  the classifier.

SEE ALSO:
  - classifier.go: turns discrepancies into loss reports
  - bar/service.go: loads the window and commits the results
*/
package recon

import (
	"time"

	"github.com/tapline/inventory-engine/inventory"
)

// =============================================================================
// INPUT - A closed shift's window, one entry per counted product
// =============================================================================

// ProductWindow carries everything the calculator needs for one product.
type ProductWindow struct {
	ProductID inventory.ProductID
	Opening   inventory.Quantity
	Actual    inventory.Quantity // the counted closing value

	// Movements holds the product's ledger entries with timestamps inside
	// the shift window.
	Movements []inventory.StockMovement

	// Sold is the total quantity sold against this shift.
	Sold inventory.Quantity

	// Receipts is the total purchase-order quantity that transitioned to
	// received inside the window. Receipts are tracked on the order, not
	// duplicated into the movement ledger, so they are never double counted.
	Receipts inventory.Quantity
}

// Input is a closed shift ready for reconciliation. Products preserve the
// insertion order of the shift's opening counts.
type Input struct {
	ShiftID  inventory.ShiftID
	ClosedAt time.Time
	Products []ProductWindow
}

// =============================================================================
// CALCULATE
// =============================================================================

// Calculate derives one Reconciliation per product, in input order.
// IDs are left empty; the caller assigns them before persisting.
func Calculate(in Input) []Reconciliation {
	recs := make([]Reconciliation, 0, len(in.Products))
	for _, pw := range in.Products {
		received := inventory.SumByType(pw.Movements, inventory.MovementIn).Add(pw.Receipts)
		consumed := inventory.SumByType(pw.Movements, inventory.MovementOut)

		expected := pw.Opening.Add(received).Sub(pw.Sold).Sub(consumed)

		recs = append(recs, Reconciliation{
			ShiftID:         in.ShiftID,
			ProductID:       pw.ProductID,
			OpeningStock:    pw.Opening,
			Received:        received,
			Sold:            pw.Sold,
			Consumed:        consumed,
			ExpectedClosing: expected,
			ActualClosing:   pw.Actual,
			Discrepancy:     expected.Sub(pw.Actual),
			CreatedAt:       in.ClosedAt,
		})
	}
	return recs
}
