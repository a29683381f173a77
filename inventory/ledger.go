/*
ledger.go - Append-only stock ledger

PURPOSE:
  The Ledger is the immutable history of all stock-affecting events for a
  product. Every delivery, wastage, breakage, and adjustment is recorded
  here. Reconciliation replays the window of a shift to derive how much
  stock arrived and left; it never trusts a mutable counter alone.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: no update, no delete
  2. IMMUTABLE: once written, movements cannot be modified
  3. AUDITABLE: every movement records who, what, why, and when
  4. POSITIVE QUANTITIES: direction is carried by the movement type

CORRECTIONS:
  A mistaken entry is not edited. Record a compensating movement with
  reason "adjustment"; both entries remain in the history.

SEE ALSO:
  - store.go: low-level persistence interface
  - recon/calculator.go: consumes ledger windows during reconciliation
*/
package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER - Append-only movement log
// =============================================================================

// Ledger is the source of truth for stock-affecting events.
//
// INVARIANTS:
//   - Append-only: no update, no delete.
//   - Immutable: once written, movements cannot be modified.
//   - Auditable: every movement is traceable to a staff member and reason.
type Ledger interface {
	// Append records a movement. This is the ONLY write operation.
	Append(ctx context.Context, m StockMovement) error

	// AppendBatch records multiple movements atomically, e.g. a multi-line
	// stocktake correction. Validation rejects the whole batch; a partial
	// write would leave the history unbalanced.
	AppendBatch(ctx context.Context, ms []StockMovement) error

	// Movements returns all movements for a product, chronologically.
	Movements(ctx context.Context, productID ProductID) ([]StockMovement, error)

	// MovementsInRange returns a product's movements in [from, to].
	MovementsInRange(ctx context.Context, productID ProductID, from, to time.Time) ([]StockMovement, error)

	// NetChange sums signed movement quantities in [from, to].
	NetChange(ctx context.Context, productID ProductID, from, to time.Time) (Quantity, error)
}

// =============================================================================
// DEFAULT LEDGER - Implementation using MovementStore
// =============================================================================

type DefaultLedger struct {
	Store MovementStore
}

func NewLedger(store MovementStore) *DefaultLedger {
	return &DefaultLedger{Store: store}
}

func (l *DefaultLedger) Append(ctx context.Context, m StockMovement) error {
	if err := ValidateMovement(m); err != nil {
		return err
	}
	return l.Store.AppendMovement(ctx, m)
}

func (l *DefaultLedger) AppendBatch(ctx context.Context, ms []StockMovement) error {
	for _, m := range ms {
		if err := ValidateMovement(m); err != nil {
			return err
		}
	}
	return l.Store.AppendMovements(ctx, ms)
}

func (l *DefaultLedger) Movements(ctx context.Context, productID ProductID) ([]StockMovement, error) {
	return l.Store.Movements(ctx, productID)
}

func (l *DefaultLedger) MovementsInRange(ctx context.Context, productID ProductID, from, to time.Time) ([]StockMovement, error) {
	return l.Store.MovementsInRange(ctx, productID, from, to)
}

func (l *DefaultLedger) NetChange(ctx context.Context, productID ProductID, from, to time.Time) (Quantity, error) {
	ms, err := l.Store.MovementsInRange(ctx, productID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	net := decimal.Zero
	for _, m := range ms {
		net = net.Add(m.SignedQuantity())
	}
	return net, nil
}

// ValidateMovement enforces the ledger's entry invariants.
func ValidateMovement(m StockMovement) error {
	if m.ProductID == "" {
		return Invalid("product_id", "required")
	}
	if m.StaffID == "" {
		return Invalid("staff_id", "required")
	}
	if m.Type != MovementIn && m.Type != MovementOut {
		return Invalid("type", "must be IN or OUT")
	}
	if !m.Quantity.IsPositive() {
		return Invalid("quantity", "must be positive")
	}
	valid := false
	for _, r := range ValidMovementReasons {
		if m.Reason == r {
			valid = true
			break
		}
	}
	if !valid {
		return Invalid("reason", "unknown movement reason")
	}
	return nil
}

// =============================================================================
// WINDOW SUMS - Helpers shared by reconciliation and dashboards
// =============================================================================

// SumByType totals quantities of one movement type from a pre-loaded slice.
func SumByType(ms []StockMovement, t MovementType) Quantity {
	total := decimal.Zero
	for _, m := range ms {
		if m.Type == t {
			total = total.Add(m.Quantity)
		}
	}
	return total
}
