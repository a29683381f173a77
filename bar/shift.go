/*
Package bar contains the stateful side of the reconciliation system: the
shift state machine and the orchestration service that drives the pure
recon engine.

PURPOSE:
  A shift is a staff member's work session bounded by stock counts at start
  and end. This file defines the shift lifecycle types; service.go holds the
  transitions.

STATE MACHINE:
  NONE -> OPEN -> CLOSED

  CLOSED is terminal. There is no reopening; a shift is closed exactly once
  and reconciliation runs inside that close.

INVARIANTS:
  - At most one OPEN shift per staff member at any time.
  - ClosingCount is nil while the shift is open; once set, immutable.
  - Stock counts preserve the insertion order from shift open.

SEE ALSO:
  - service.go: open/close transitions and reconciliation orchestration
  - store.go: the persistence interface the service needs
*/
package bar

import (
	"time"

	"github.com/tapline/inventory-engine/inventory"
)

// =============================================================================
// SHIFT - A work session bounded by stock counts
// =============================================================================

type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

type Shift struct {
	ID        inventory.ShiftID
	StaffID   inventory.StaffID
	StartTime time.Time
	EndTime   *time.Time // nil while open
	Status    ShiftStatus
	Notes     string

	// StockCounts holds one entry per product counted at open, in the
	// order they were supplied.
	StockCounts []ShiftStockCount

	CreatedAt time.Time
}

// Open reports whether the shift can still accept sales and a close.
func (s Shift) Open() bool { return s.Status == ShiftOpen }

// ShiftStockCount records the counted stock for one product at the shift
// boundaries. The opening count is a count, not a stock mutation: it is
// assumed to match the product's running total but is recorded
// independently so reconciliation can compare the two.
type ShiftStockCount struct {
	ShiftID      inventory.ShiftID
	ProductID    inventory.ProductID
	OpeningCount inventory.Quantity
	ClosingCount *inventory.Quantity // nil until the shift closes
}

// CountEntry is a (product, count) pair supplied at open or close.
type CountEntry struct {
	ProductID inventory.ProductID
	Count     inventory.Quantity
}
