/*
classifier.go - Discrepancy severity classification

PURPOSE:
  Inspects each Reconciliation and decides whether it warrants a LossReport,
  and at what severity. Pure and deterministic given the thresholds: the same
  reconciliation always classifies the same way, so historical reports stay
  stable unless a deployment changes its configuration.

RULES (first match wins):
  no report  |discrepancy| <= epsilon
  critical   loss_value >= CriticalValue
             OR |discrepancy| >= CriticalQuantityRatio x opening_stock
  warning    loss_value >= WarningValue
             OR |discrepancy| >= (CriticalQuantityRatio / 2) x opening_stock
  info       any other non-zero discrepancy

SIGNS:
  loss_value = discrepancy x cost_price, signed. A surplus (negative
  discrepancy) yields a negative loss_value: recorded for visibility, but
  value thresholds only fire on actual losses. The quantity-ratio rules use
  |discrepancy|, so a large surplus still escalates - a 10% over-count is as
  suspicious as a 10% shortfall.

SEE ALSO:
  - types.go: Thresholds and defaults
  - summary.go: aggregates the resulting reports
*/
package recon

import (
	"github.com/tapline/inventory-engine/inventory"
)

// Classify returns a LossReport for the reconciliation, or nil when the
// discrepancy is within epsilon. The report is created unresolved; its ID
// is left empty for the caller to assign.
func (t Thresholds) Classify(rec Reconciliation, costPrice inventory.Money) *LossReport {
	if rec.Discrepancy.Abs().LessThanOrEqual(t.Epsilon) {
		return nil
	}

	lossValue := rec.Discrepancy.Mul(costPrice)

	return &LossReport{
		ReconciliationID:    rec.ID,
		ProductID:           rec.ProductID,
		ShiftID:             rec.ShiftID,
		DiscrepancyQuantity: rec.Discrepancy,
		LossValue:           lossValue,
		Severity:            t.severity(rec, lossValue),
		CreatedAt:           rec.CreatedAt,
	}
}

// severity applies the tiering rules in order: critical, warning, info.
func (t Thresholds) severity(rec Reconciliation, lossValue inventory.Money) Severity {
	absQty := rec.Discrepancy.Abs()

	if lossValue.GreaterThanOrEqual(t.CriticalValue) {
		return SeverityCritical
	}
	if rec.OpeningStock.IsPositive() {
		criticalQty := rec.OpeningStock.Mul(t.CriticalQuantityRatio)
		if absQty.GreaterThanOrEqual(criticalQty) {
			return SeverityCritical
		}
	}

	if lossValue.GreaterThanOrEqual(t.WarningValue) {
		return SeverityWarning
	}
	if rec.OpeningStock.IsPositive() {
		warningQty := rec.OpeningStock.Mul(t.CriticalQuantityRatio).Div(two)
		if absQty.GreaterThanOrEqual(warningQty) {
			return SeverityWarning
		}
	}

	return SeverityInfo
}

var two = inventory.QtyInt(2)
