/*
workflow.go - Purchase orders, reconciliations, and loss reports

PURPOSE:
  The second half of the SQLite store: everything downstream of the shift
  lifecycle. Purchase orders carry the only stock-affecting transition
  outside the movement ledger (ordered->received), and loss reports carry
  the one-shot resolution workflow.

GUARDED TRANSITIONS (see sqlite.go header):
  SetOrderStatus     WHERE id=? AND status=<from>
  ReceiveOrder       WHERE id=? AND status='ordered'
  ResolveLossReport  WHERE id=? AND reason_code IS NULL
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tapline/inventory-engine/bar"
	"github.com/tapline/inventory-engine/inventory"
	"github.com/tapline/inventory-engine/recon"
)

// =============================================================================
// PURCHASE ORDERS
// =============================================================================

// CreatePurchaseOrder inserts a draft order and its line items.
func (s *Store) CreatePurchaseOrder(ctx context.Context, po inventory.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO purchase_orders (id, supplier_id, status, total_cost, notes, ordered_at, received_at, created_at)
		VALUES (?, ?, ?, ?, ?, NULL, NULL, ?)`,
		po.ID, po.SupplierID, po.Status, po.TotalCost.String(), po.Notes, formatTime(po.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create purchase order: %w", err)
	}

	for _, item := range po.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO purchase_order_items (id, order_id, product_id, quantity, unit_cost, total_cost)
			VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, po.ID, item.ProductID,
			item.Quantity.String(), item.UnitCost.String(), item.TotalCost.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return tx.Commit()
}

// GetPurchaseOrder returns an order with its items, or nil when absent.
func (s *Store) GetPurchaseOrder(ctx context.Context, id inventory.OrderID) (*inventory.PurchaseOrder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, supplier_id, status, total_cost, notes, ordered_at, received_at, created_at
		FROM purchase_orders WHERE id = ?`, id)

	po, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}

	items, err := s.orderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return po, nil
}

// ListPurchaseOrders returns orders newest first, optionally by status.
func (s *Store) ListPurchaseOrders(ctx context.Context, status *inventory.OrderStatus) ([]inventory.PurchaseOrder, error) {
	query := `SELECT id, supplier_id, status, total_cost, notes, ordered_at, received_at, created_at FROM purchase_orders`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer rows.Close()

	var result []inventory.PurchaseOrder
	for rows.Next() {
		po, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		result = append(result, *po)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := s.orderItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func scanOrder(row rowScanner) (*inventory.PurchaseOrder, error) {
	var po inventory.PurchaseOrder
	var total, createdAt string
	var orderedAt, receivedAt sql.NullString
	err := row.Scan(&po.ID, &po.SupplierID, &po.Status, &total, &po.Notes, &orderedAt, &receivedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	po.TotalCost = parseDecimal(total)
	po.CreatedAt = parseTime(createdAt)
	if orderedAt.Valid {
		t := parseTime(orderedAt.String)
		po.OrderedAt = &t
	}
	if receivedAt.Valid {
		t := parseTime(receivedAt.String)
		po.ReceivedAt = &t
	}
	return &po, nil
}

func (s *Store) orderItems(ctx context.Context, orderID inventory.OrderID) ([]inventory.PurchaseOrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_cost, total_cost
		FROM purchase_order_items WHERE order_id = ? ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []inventory.PurchaseOrderItem
	for rows.Next() {
		var item inventory.PurchaseOrderItem
		var qty, unit, total string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &qty, &unit, &total); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Quantity = parseDecimal(qty)
		item.UnitCost = parseDecimal(unit)
		item.TotalCost = parseDecimal(total)
		items = append(items, item)
	}
	return items, rows.Err()
}

// SetOrderStatus performs a guarded status transition. The ordered_at
// timestamp is stamped when the order moves into ordered.
func (s *Store) SetOrderStatus(ctx context.Context, id inventory.OrderID, from, to inventory.OrderStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res sql.Result
	var err error
	if to == inventory.OrderOrdered {
		res, err = s.db.ExecContext(ctx, `
			UPDATE purchase_orders SET status = ?, ordered_at = ?
			WHERE id = ? AND status = ?`, to, formatTime(at), id, from)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE purchase_orders SET status = ?
			WHERE id = ? AND status = ?`, to, id, from)
	}
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if affected == 0 {
		return s.orderTransitionConflict(ctx, id, from)
	}
	return nil
}

// ReceiveOrder transitions ordered->received and applies every item
// quantity to product stock, in one transaction. The status CAS makes a
// concurrent double-receive apply stock exactly once.
func (s *Store) ReceiveOrder(ctx context.Context, id inventory.OrderID, at time.Time) (*inventory.PurchaseOrder, error) {
	s.mu.Lock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE purchase_orders SET status = ?, received_at = ?
		WHERE id = ? AND status = ?`,
		inventory.OrderReceived, formatTime(at), id, inventory.OrderOrdered,
	)
	if err != nil {
		tx.Rollback()
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to receive order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to receive order: %w", err)
	}
	if affected == 0 {
		// Release the single connection before the diagnostic read.
		tx.Rollback()
		conflictErr := s.orderTransitionConflict(ctx, id, inventory.OrderOrdered)
		s.mu.Unlock()
		return nil, conflictErr
	}

	items, err := orderItemsTx(ctx, tx, id)
	if err != nil {
		tx.Rollback()
		s.mu.Unlock()
		return nil, err
	}
	for _, item := range items {
		if err := adjustStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			tx.Rollback()
			s.mu.Unlock()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to receive order: %w", err)
	}
	s.mu.Unlock()

	return s.GetPurchaseOrder(ctx, id)
}

func orderItemsTx(ctx context.Context, tx *sql.Tx, orderID inventory.OrderID) ([]inventory.PurchaseOrderItem, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_cost, total_cost
		FROM purchase_order_items WHERE order_id = ? ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []inventory.PurchaseOrderItem
	for rows.Next() {
		var item inventory.PurchaseOrderItem
		var qty, unit, total string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &qty, &unit, &total); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Quantity = parseDecimal(qty)
		item.UnitCost = parseDecimal(unit)
		item.TotalCost = parseDecimal(total)
		items = append(items, item)
	}
	return items, rows.Err()
}

// orderTransitionConflict builds the error for a lost order transition:
// not found if the order doesn't exist, otherwise a conflict naming the
// actual state.
func (s *Store) orderTransitionConflict(ctx context.Context, id inventory.OrderID, expected inventory.OrderStatus) error {
	var status inventory.OrderStatus
	err := s.db.QueryRowContext(ctx, `SELECT status FROM purchase_orders WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return inventory.NotFound("purchase order", string(id))
	}
	if err != nil {
		return fmt.Errorf("failed to read order status: %w", err)
	}
	switch status {
	case inventory.OrderReceived:
		return inventory.Conflict("purchase order", string(id), "order already received")
	case inventory.OrderCancelled:
		return inventory.Conflict("purchase order", string(id), "cannot transition a cancelled order")
	default:
		return inventory.Conflict("purchase order", string(id),
			fmt.Sprintf("order is %s, expected %s", status, expected))
	}
}

// ReceiptsInRange sums item quantities for a product across orders
// received in [from, to].
func (s *Store) ReceiptsInRange(ctx context.Context, productID inventory.ProductID, from, to time.Time) (inventory.Quantity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.quantity
		FROM purchase_order_items i
		JOIN purchase_orders o ON o.id = i.order_id
		WHERE i.product_id = ?
		  AND o.status = ?
		  AND o.received_at >= ? AND o.received_at <= ?`,
		productID, inventory.OrderReceived, formatTime(from), formatTime(to))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var qty string
		if err := rows.Scan(&qty); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan receipt: %w", err)
		}
		total = total.Add(parseDecimal(qty))
	}
	return total, rows.Err()
}

// =============================================================================
// RECONCILIATIONS
// =============================================================================

// ListReconciliations returns reconciliation rows, newest first.
func (s *Store) ListReconciliations(ctx context.Context, f bar.ReconciliationFilter) ([]recon.Reconciliation, error) {
	query := `
		SELECT id, shift_id, product_id, opening_stock, received, sold, consumed,
		       expected_closing, actual_closing, discrepancy, created_at
		FROM reconciliations WHERE 1=1`
	var args []any
	if f.ShiftID != nil {
		query += ` AND shift_id = ?`
		args = append(args, *f.ShiftID)
	}
	if f.ProductID != nil {
		query += ` AND product_id = ?`
		args = append(args, *f.ProductID)
	}
	if f.From != nil {
		query += ` AND created_at >= ?`
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		query += ` AND created_at <= ?`
		args = append(args, formatTime(*f.To))
	}
	query += ` ORDER BY created_at DESC, product_id ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliations: %w", err)
	}
	defer rows.Close()

	var result []recon.Reconciliation
	for rows.Next() {
		var rec recon.Reconciliation
		var opening, received, sold, consumed, expected, actual, disc, createdAt string
		err := rows.Scan(&rec.ID, &rec.ShiftID, &rec.ProductID,
			&opening, &received, &sold, &consumed, &expected, &actual, &disc, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation: %w", err)
		}
		rec.OpeningStock = parseDecimal(opening)
		rec.Received = parseDecimal(received)
		rec.Sold = parseDecimal(sold)
		rec.Consumed = parseDecimal(consumed)
		rec.ExpectedClosing = parseDecimal(expected)
		rec.ActualClosing = parseDecimal(actual)
		rec.Discrepancy = parseDecimal(disc)
		rec.CreatedAt = parseTime(createdAt)
		result = append(result, rec)
	}
	return result, rows.Err()
}

// =============================================================================
// LOSS REPORTS
// =============================================================================

const lossReportColumns = `
	id, reconciliation_id, product_id, shift_id, discrepancy_quantity,
	loss_value, severity, reason_code, reviewed_by, reviewed_at, notes, created_at`

// GetLossReport returns a loss report or nil when absent.
func (s *Store) GetLossReport(ctx context.Context, id string) (*recon.LossReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+lossReportColumns+` FROM loss_reports WHERE id = ?`, id)

	report, err := scanLossReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loss report: %w", err)
	}
	return report, nil
}

// ListLossReports returns loss reports newest first, with optional filters.
func (s *Store) ListLossReports(ctx context.Context, f bar.LossReportFilter) ([]recon.LossReport, error) {
	query := `SELECT ` + lossReportColumns + ` FROM loss_reports WHERE 1=1`
	var args []any
	if f.Severity != nil {
		query += ` AND severity = ?`
		args = append(args, *f.Severity)
	}
	if f.ReasonCode != nil {
		query += ` AND reason_code = ?`
		args = append(args, *f.ReasonCode)
	}
	if f.UnresolvedOnly {
		query += ` AND reason_code IS NULL`
	}
	query += ` ORDER BY created_at DESC, id ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return s.queryLossReports(ctx, query, args...)
}

// LossReportsSince returns reports created at or after the cutoff.
func (s *Store) LossReportsSince(ctx context.Context, cutoff time.Time) ([]recon.LossReport, error) {
	return s.queryLossReports(ctx,
		`SELECT `+lossReportColumns+` FROM loss_reports WHERE created_at >= ? ORDER BY created_at DESC, id ASC`,
		formatTime(cutoff))
}

func (s *Store) queryLossReports(ctx context.Context, query string, args ...any) ([]recon.LossReport, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loss reports: %w", err)
	}
	defer rows.Close()

	var result []recon.LossReport
	for rows.Next() {
		report, err := scanLossReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loss report: %w", err)
		}
		result = append(result, *report)
	}
	return result, rows.Err()
}

func scanLossReport(row rowScanner) (*recon.LossReport, error) {
	var r recon.LossReport
	var disc, value, createdAt string
	var reason, reviewedBy, reviewedAt sql.NullString
	err := row.Scan(&r.ID, &r.ReconciliationID, &r.ProductID, &r.ShiftID,
		&disc, &value, &r.Severity, &reason, &reviewedBy, &reviewedAt, &r.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	r.DiscrepancyQuantity = parseDecimal(disc)
	r.LossValue = parseDecimal(value)
	r.CreatedAt = parseTime(createdAt)
	if reason.Valid {
		r.ReasonCode = recon.ReasonCode(reason.String)
	}
	if reviewedBy.Valid {
		r.ReviewedBy = inventory.StaffID(reviewedBy.String)
	}
	if reviewedAt.Valid {
		t := parseTime(reviewedAt.String)
		r.ReviewedAt = &t
	}
	return &r, nil
}

// CountUnresolvedLossReports returns how many reports still await a reason.
func (s *Store) CountUnresolvedLossReports(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loss_reports WHERE reason_code IS NULL`,
	).Scan(&count)
	return count, err
}

// ResolveLossReport assigns the reason code, guarded on the report still
// being unresolved. Resolution is one-way; a second resolve conflicts.
func (s *Store) ResolveLossReport(ctx context.Context, id string, reason recon.ReasonCode, reviewer inventory.StaffID, notes string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE loss_reports
		SET reason_code = ?, reviewed_by = ?, reviewed_at = ?,
		    notes = CASE WHEN ? = '' THEN notes
		                 WHEN notes = '' THEN ?
		                 ELSE notes || char(10) || ? END
		WHERE id = ? AND reason_code IS NULL`,
		reason, reviewer, formatTime(at), notes, notes, notes, id,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve loss report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to resolve loss report: %w", err)
	}
	if affected == 0 {
		var existing sql.NullString
		err := s.db.QueryRowContext(ctx, `SELECT reason_code FROM loss_reports WHERE id = ?`, id).Scan(&existing)
		if err == sql.ErrNoRows {
			return inventory.NotFound("loss report", id)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve loss report: %w", err)
		}
		return inventory.Conflict("loss report", id, "loss report already resolved")
	}
	return nil
}
