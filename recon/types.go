/*
Package recon is the reconciliation and loss detection engine.

PURPOSE:
  On shift close, the engine compares what SHOULD be on the shelf with what
  was COUNTED, product by product, and turns the gap into reviewable loss
  reports. Everything in this package is pure: given the same shift window
  and the same thresholds it always produces the same output. All state
  handling (loading windows, committing results) lives in the bar package.

KEY CONCEPTS IN THIS FILE (types.go):
  - Reconciliation: expected vs actual closing stock for one (shift, product)
  - LossReport: a flagged discrepancy awaiting a manager's reason code
  - Severity: critical / warning / info
  - LossSummary: windowed aggregation for dashboards

THE CONSERVATION LAW:
  expected_closing = opening_stock + received - sold - consumed
  discrepancy      = expected_closing - actual_closing

  Positive discrepancy = stock missing (loss).
  Negative discrepancy = surplus (over-count); still reported, not discarded.

SEE ALSO:
  - calculator.go: computes Reconciliation records from a shift window
  - classifier.go: maps discrepancies to loss reports and severities
  - summary.go: windowed aggregation
*/
package recon

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tapline/inventory-engine/inventory"
)

// =============================================================================
// RECONCILIATION - One row per (shift, product), immutable once created
// =============================================================================

type Reconciliation struct {
	ID              string
	ShiftID         inventory.ShiftID
	ProductID       inventory.ProductID
	OpeningStock    inventory.Quantity
	Received        inventory.Quantity // IN movements + purchase orders received in window
	Sold            inventory.Quantity // sales scoped by shift id, not timestamp
	Consumed        inventory.Quantity // OUT movements (wastage, breakage, ...)
	ExpectedClosing inventory.Quantity
	ActualClosing   inventory.Quantity
	Discrepancy     inventory.Quantity // expected - actual
	CreatedAt       time.Time
}

// =============================================================================
// LOSS REPORT
// =============================================================================

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

type ReasonCode string

const (
	ReasonTheft      ReasonCode = "theft"
	ReasonOverPour   ReasonCode = "over_pour"
	ReasonWastage    ReasonCode = "wastage"
	ReasonEntryError ReasonCode = "entry_error"
)

// ValidReasonCodes lists every accepted resolution reason.
var ValidReasonCodes = []ReasonCode{
	ReasonTheft, ReasonOverPour, ReasonWastage, ReasonEntryError,
}

// LossReport flags a discrepancy for manager review.
//
// LIFECYCLE: created unresolved (empty ReasonCode); resolved exactly once by
// the resolution workflow, which sets ReasonCode, ReviewedBy, ReviewedAt and
// Notes. Resolution is one-way: no re-editing, no deletion.
type LossReport struct {
	ID                  string
	ReconciliationID    string
	ProductID           inventory.ProductID
	ShiftID             inventory.ShiftID
	DiscrepancyQuantity inventory.Quantity // signed: negative = surplus
	LossValue           inventory.Money    // discrepancy x cost price, signed
	Severity            Severity
	ReasonCode          ReasonCode // empty = unresolved
	ReviewedBy          inventory.StaffID
	ReviewedAt          *time.Time
	Notes               string
	CreatedAt           time.Time
}

// Resolved reports whether a reason code has been assigned.
func (r LossReport) Resolved() bool { return r.ReasonCode != "" }

// =============================================================================
// LOSS SUMMARY - Windowed aggregation
// =============================================================================

type ProductLoss struct {
	ProductID inventory.ProductID
	TotalLoss inventory.Money
	Incidents int
}

type LossSummary struct {
	WindowDays      int
	TotalLossValue  inventory.Money // positive loss values only; surpluses excluded
	TotalIncidents  int
	CriticalCount   int
	WarningCount    int
	InfoCount       int
	UnresolvedCount int
	TopLossProducts []ProductLoss
}

// =============================================================================
// THRESHOLDS - Classifier configuration surface
// =============================================================================

// Thresholds configures the loss classifier. All values are overridable per
// deployment; the defaults below are stable across versions so historical
// data is not silently reclassified.
type Thresholds struct {
	// CriticalValue: loss_value at or above this is critical. Default 500.
	CriticalValue inventory.Money

	// CriticalQuantityRatio: |discrepancy| at or above this fraction of the
	// opening stock is critical. Default 0.10.
	CriticalQuantityRatio decimal.Decimal

	// WarningValue: loss_value at or above this is at least warning.
	// Default 100.
	WarningValue inventory.Money

	// Epsilon: discrepancies with |d| <= Epsilon reconcile silently with no
	// loss report. Default inventory.Epsilon (1e-6).
	Epsilon decimal.Decimal
}

// DefaultThresholds returns the documented, stable defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalValue:         decimal.NewFromInt(500),
		CriticalQuantityRatio: decimal.NewFromFloat(0.10),
		WarningValue:          decimal.NewFromInt(100),
		Epsilon:               inventory.Epsilon,
	}
}
