/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements bar.Store (shifts, sales, purchase orders, reconciliations,
  loss reports, products) and inventory.MovementStore (the stock ledger)
  using SQLite. The same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

GUARDED TRANSITIONS:
  Every state transition is a conditional UPDATE - the WHERE clause names
  the expected current state and the caller checks RowsAffected. Exactly
  one concurrent caller can win:
  - shift close:        WHERE id=? AND status='open'
  - order receive:      WHERE id=? AND status='ordered'
  - report resolution:  WHERE id=? AND reason_code IS NULL

SCHEMA-ENFORCED INVARIANTS:
  - idx_shifts_one_open_per_staff: at most one open shift per staff member,
    enforced by a partial unique index rather than a read-then-write check
  - stock_movements has no UPDATE or DELETE path: corrections are
    compensating movements

DECIMALS:
  Quantities and money are stored as decimal strings and parsed back with
  shopspring/decimal. No float round-trips.

CONCURRENCY:
  Uses sync.Mutex around write paths (single writer) plus WAL mode so
  readers don't block. Read-modify-write of product running totals happens
  under the mutex and inside the enclosing SQL transaction.

SEE ALSO:
  - bar/store.go: interface definitions and transition contracts
  - workflow.go: purchase orders, reconciliations, loss reports
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/tapline/inventory-engine/bar"
	"github.com/tapline/inventory-engine/inventory"
)

// Store implements bar.Store and inventory.MovementStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent and serializes
	// writers the way production SQLite expects.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'other',
		unit TEXT NOT NULL DEFAULT 'bottle',
		cost_price TEXT NOT NULL,
		sale_price TEXT NOT NULL,
		current_stock TEXT NOT NULL DEFAULT '0',
		min_stock_threshold TEXT NOT NULL DEFAULT '5',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- CRITICAL: at most one open shift per staff member. Concurrent opens
	-- race on this index, not on an application-level read.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_one_open_per_staff
		ON shifts(staff_id) WHERE status = 'open';

	CREATE INDEX IF NOT EXISTS idx_shifts_status ON shifts(status);

	CREATE TABLE IF NOT EXISTS shift_stock_counts (
		shift_id TEXT NOT NULL REFERENCES shifts(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		opening_count TEXT NOT NULL,
		closing_count TEXT,
		position INTEGER NOT NULL,
		PRIMARY KEY (shift_id, product_id)
	);

	-- Stock ledger (append-only; no UPDATE or DELETE path exists)
	CREATE TABLE IF NOT EXISTS stock_movements (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id),
		staff_id TEXT NOT NULL,
		type TEXT NOT NULL,
		reason TEXT NOT NULL,
		quantity TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_product_date
		ON stock_movements(product_id, created_at);

	CREATE TABLE IF NOT EXISTS sales_records (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id),
		shift_id TEXT NOT NULL REFERENCES shifts(id),
		quantity_sold TEXT NOT NULL,
		sale_amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_shift ON sales_records(shift_id);
	CREATE INDEX IF NOT EXISTS idx_sales_created ON sales_records(created_at);

	CREATE TABLE IF NOT EXISTS purchase_orders (
		id TEXT PRIMARY KEY,
		supplier_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		total_cost TEXT NOT NULL DEFAULT '0',
		notes TEXT NOT NULL DEFAULT '',
		ordered_at TEXT,
		received_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_status ON purchase_orders(status);
	CREATE INDEX IF NOT EXISTS idx_orders_received ON purchase_orders(received_at)
		WHERE received_at IS NOT NULL;

	CREATE TABLE IF NOT EXISTS purchase_order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES purchase_orders(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		quantity TEXT NOT NULL,
		unit_cost TEXT NOT NULL,
		total_cost TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_order_items_order ON purchase_order_items(order_id);
	CREATE INDEX IF NOT EXISTS idx_order_items_product ON purchase_order_items(product_id);

	CREATE TABLE IF NOT EXISTS reconciliations (
		id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shifts(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		opening_stock TEXT NOT NULL,
		received TEXT NOT NULL,
		sold TEXT NOT NULL,
		consumed TEXT NOT NULL,
		expected_closing TEXT NOT NULL,
		actual_closing TEXT NOT NULL,
		discrepancy TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (shift_id, product_id)
	);

	CREATE INDEX IF NOT EXISTS idx_recon_created ON reconciliations(created_at);

	CREATE TABLE IF NOT EXISTS loss_reports (
		id TEXT PRIMARY KEY,
		reconciliation_id TEXT NOT NULL UNIQUE REFERENCES reconciliations(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		shift_id TEXT NOT NULL REFERENCES shifts(id),
		discrepancy_quantity TEXT NOT NULL,
		loss_value TEXT NOT NULL,
		severity TEXT NOT NULL,
		reason_code TEXT,
		reviewed_by TEXT,
		reviewed_at TEXT,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loss_reports_created ON loss_reports(created_at);
	CREATE INDEX IF NOT EXISTS idx_loss_reports_unresolved
		ON loss_reports(created_at) WHERE reason_code IS NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// MOVEMENT STORE (inventory.MovementStore interface)
// =============================================================================

// AppendMovement records a movement and applies its net effect to the
// product's running total, in one transaction.
func (s *Store) AppendMovement(ctx context.Context, m inventory.StockMovement) error {
	return s.AppendMovements(ctx, []inventory.StockMovement{m})
}

// AppendMovements records multiple movements atomically.
func (s *Store) AppendMovements(ctx context.Context, ms []inventory.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range ms {
		if err := appendMovementTx(ctx, tx, m); err != nil {
			return err
		}
		if err := adjustStockTx(ctx, tx, m.ProductID, m.SignedQuantity()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func appendMovementTx(ctx context.Context, tx *sql.Tx, m inventory.StockMovement) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO stock_movements
		(id, product_id, staff_id, type, reason, quantity, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProductID, m.StaffID, m.Type, m.Reason,
		m.Quantity.String(), m.Notes, formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	return nil
}

// adjustStockTx applies a signed delta to a product's running total.
// Must run inside a write transaction under the store mutex.
func adjustStockTx(ctx context.Context, tx *sql.Tx, productID inventory.ProductID, delta inventory.Quantity) error {
	var raw string
	err := tx.QueryRowContext(ctx,
		`SELECT current_stock FROM products WHERE id = ?`, productID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return inventory.NotFound("product", string(productID))
	}
	if err != nil {
		return fmt.Errorf("failed to read product stock: %w", err)
	}

	next := parseDecimal(raw).Add(delta)
	_, err = tx.ExecContext(ctx,
		`UPDATE products SET current_stock = ?, updated_at = ? WHERE id = ?`,
		next.String(), formatTime(time.Now().UTC()), productID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product stock: %w", err)
	}
	return nil
}

// Movements returns all movements for a product, chronologically.
func (s *Store) Movements(ctx context.Context, productID inventory.ProductID) ([]inventory.StockMovement, error) {
	return s.queryMovements(ctx, `
		SELECT id, product_id, staff_id, type, reason, quantity, notes, created_at
		FROM stock_movements
		WHERE product_id = ?
		ORDER BY created_at ASC, id ASC`, productID)
}

// MovementsInRange returns a product's movements in [from, to].
func (s *Store) MovementsInRange(ctx context.Context, productID inventory.ProductID, from, to time.Time) ([]inventory.StockMovement, error) {
	return s.queryMovements(ctx, `
		SELECT id, product_id, staff_id, type, reason, quantity, notes, created_at
		FROM stock_movements
		WHERE product_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at ASC, id ASC`,
		productID, formatTime(from), formatTime(to))
}

func (s *Store) queryMovements(ctx context.Context, query string, args ...any) ([]inventory.StockMovement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var result []inventory.StockMovement
	for rows.Next() {
		var m inventory.StockMovement
		var qty, createdAt string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.StaffID, &m.Type, &m.Reason, &qty, &m.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		m.Quantity = parseDecimal(qty)
		m.CreatedAt = parseTime(createdAt)
		result = append(result, m)
	}
	return result, rows.Err()
}

// =============================================================================
// PRODUCTS
// =============================================================================

// SaveProduct inserts or replaces a product record.
func (s *Store) SaveProduct(ctx context.Context, p inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products
		(id, name, category, unit, cost_price, sale_price, current_stock, min_stock_threshold, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			unit = excluded.unit,
			cost_price = excluded.cost_price,
			sale_price = excluded.sale_price,
			current_stock = excluded.current_stock,
			min_stock_threshold = excluded.min_stock_threshold,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Category, p.Unit,
		p.CostPrice.String(), p.SalePrice.String(),
		p.CurrentStock.String(), p.MinStockThreshold.String(),
		boolInt(p.Active), formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// GetProduct returns a product or nil when absent.
func (s *Store) GetProduct(ctx context.Context, id inventory.ProductID) (*inventory.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, unit, cost_price, sale_price, current_stock, min_stock_threshold, active, created_at, updated_at
		FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// ListProducts returns products ordered by name.
func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]inventory.Product, error) {
	query := `
		SELECT id, name, category, unit, cost_price, sale_price, current_stock, min_stock_threshold, active, created_at, updated_at
		FROM products`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var result []inventory.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*inventory.Product, error) {
	var p inventory.Product
	var cost, sale, stock, threshold, createdAt, updatedAt string
	var active int
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Unit, &cost, &sale, &stock, &threshold, &active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.CostPrice = parseDecimal(cost)
	p.SalePrice = parseDecimal(sale)
	p.CurrentStock = parseDecimal(stock)
	p.MinStockThreshold = parseDecimal(threshold)
	p.Active = active != 0
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

// CreateShift inserts a shift and its opening counts. The partial unique
// index on open shifts makes a racing second open fail here.
func (s *Store) CreateShift(ctx context.Context, shift bar.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shifts (id, staff_id, start_time, end_time, status, notes, created_at)
		VALUES (?, ?, ?, NULL, ?, ?, ?)`,
		shift.ID, shift.StaffID, formatTime(shift.StartTime), shift.Status, shift.Notes, formatTime(shift.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return inventory.Conflict("staff", string(shift.StaffID), "staff member already has an open shift")
		}
		return fmt.Errorf("failed to create shift: %w", err)
	}

	for i, sc := range shift.StockCounts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO shift_stock_counts (shift_id, product_id, opening_count, closing_count, position)
			VALUES (?, ?, ?, NULL, ?)`,
			shift.ID, sc.ProductID, sc.OpeningCount.String(), i,
		)
		if err != nil {
			return fmt.Errorf("failed to create stock count: %w", err)
		}
	}
	return tx.Commit()
}

// GetShift returns a shift with its stock counts, or nil when absent.
func (s *Store) GetShift(ctx context.Context, id inventory.ShiftID) (*bar.Shift, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, staff_id, start_time, end_time, status, notes, created_at
		FROM shifts WHERE id = ?`, id)

	shift, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}

	counts, err := s.stockCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	shift.StockCounts = counts
	return shift, nil
}

// ListShifts returns shifts newest first, with stock counts.
func (s *Store) ListShifts(ctx context.Context, f bar.ShiftFilter) ([]bar.Shift, error) {
	query := `SELECT id, staff_id, start_time, end_time, status, notes, created_at FROM shifts`
	var args []any
	if f.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, *f.Status)
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var result []bar.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		result = append(result, *shift)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		counts, err := s.stockCounts(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].StockCounts = counts
	}
	return result, nil
}

func scanShift(row rowScanner) (*bar.Shift, error) {
	var shift bar.Shift
	var start, createdAt string
	var end sql.NullString
	err := row.Scan(&shift.ID, &shift.StaffID, &start, &end, &shift.Status, &shift.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	shift.StartTime = parseTime(start)
	shift.CreatedAt = parseTime(createdAt)
	if end.Valid {
		t := parseTime(end.String)
		shift.EndTime = &t
	}
	return &shift, nil
}

func (s *Store) stockCounts(ctx context.Context, shiftID inventory.ShiftID) ([]bar.ShiftStockCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT shift_id, product_id, opening_count, closing_count
		FROM shift_stock_counts
		WHERE shift_id = ?
		ORDER BY position ASC`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock counts: %w", err)
	}
	defer rows.Close()

	var result []bar.ShiftStockCount
	for rows.Next() {
		var sc bar.ShiftStockCount
		var opening string
		var closing sql.NullString
		if err := rows.Scan(&sc.ShiftID, &sc.ProductID, &opening, &closing); err != nil {
			return nil, fmt.Errorf("failed to scan stock count: %w", err)
		}
		sc.OpeningCount = parseDecimal(opening)
		if closing.Valid {
			q := parseDecimal(closing.String)
			sc.ClosingCount = &q
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

// FinalizeShift atomically closes a shift and commits the reconciliation
// output. The status CAS decides the winner of a concurrent close; the
// loser's transaction rolls back leaving nothing behind.
func (s *Store) FinalizeShift(ctx context.Context, c bar.ShiftClose) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE shifts SET status = ?, end_time = ?
		WHERE id = ? AND status = ?`,
		bar.ShiftClosed, formatTime(c.EndTime), c.ShiftID, bar.ShiftOpen,
	)
	if err != nil {
		return fmt.Errorf("failed to close shift: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close shift: %w", err)
	}
	if affected == 0 {
		// Lost the race or never existed - distinguish for the caller.
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM shifts WHERE id = ?`, c.ShiftID).Scan(&status)
		if err == sql.ErrNoRows {
			return inventory.NotFound("shift", string(c.ShiftID))
		}
		if err != nil {
			return fmt.Errorf("failed to close shift: %w", err)
		}
		return inventory.Conflict("shift", string(c.ShiftID), "shift already closed")
	}

	if c.Notes != "" {
		_, err = tx.ExecContext(ctx, `
			UPDATE shifts SET notes = CASE WHEN notes = '' THEN ? ELSE notes || char(10) || ? END
			WHERE id = ?`, c.Notes, c.Notes, c.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to update shift notes: %w", err)
		}
	}

	for productID, count := range c.ClosingCounts {
		_, err = tx.ExecContext(ctx, `
			UPDATE shift_stock_counts SET closing_count = ?
			WHERE shift_id = ? AND product_id = ? AND closing_count IS NULL`,
			count.String(), c.ShiftID, productID,
		)
		if err != nil {
			return fmt.Errorf("failed to set closing count: %w", err)
		}
	}

	for _, rec := range c.Reconciliations {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reconciliations
			(id, shift_id, product_id, opening_stock, received, sold, consumed,
			 expected_closing, actual_closing, discrepancy, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.ShiftID, rec.ProductID,
			rec.OpeningStock.String(), rec.Received.String(), rec.Sold.String(), rec.Consumed.String(),
			rec.ExpectedClosing.String(), rec.ActualClosing.String(), rec.Discrepancy.String(),
			formatTime(rec.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert reconciliation: %w", err)
		}
	}

	for _, report := range c.LossReports {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO loss_reports
			(id, reconciliation_id, product_id, shift_id, discrepancy_quantity,
			 loss_value, severity, reason_code, reviewed_by, reviewed_at, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL, NULL, ?, ?)`,
			report.ID, report.ReconciliationID, report.ProductID, report.ShiftID,
			report.DiscrepancyQuantity.String(), report.LossValue.String(),
			report.Severity, report.Notes, formatTime(report.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert loss report: %w", err)
		}
	}

	// The counted value becomes the product's authoritative running total.
	for productID, level := range c.StockLevels {
		_, err = tx.ExecContext(ctx, `
			UPDATE products SET current_stock = ?, updated_at = ? WHERE id = ?`,
			level.String(), formatTime(c.EndTime), productID,
		)
		if err != nil {
			return fmt.Errorf("failed to correct product stock: %w", err)
		}
	}

	return tx.Commit()
}

// CountOpenShifts returns the number of currently open shifts.
func (s *Store) CountOpenShifts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shifts WHERE status = ?`, bar.ShiftOpen,
	).Scan(&count)
	return count, err
}

// =============================================================================
// SALES
// =============================================================================

// SaveSalesRecords inserts sales atomically.
func (s *Store) SaveSalesRecords(ctx context.Context, rs []inventory.SalesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sales_records (id, product_id, shift_id, quantity_sold, sale_amount, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.ProductID, r.ShiftID, r.QuantitySold.String(), r.SaleAmount.String(), formatTime(r.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert sales record: %w", err)
		}
	}
	return tx.Commit()
}

// SalesTotalsForShift sums quantity sold per product for one shift.
// Sales scope by shift id, never timestamp.
func (s *Store) SalesTotalsForShift(ctx context.Context, shiftID inventory.ShiftID) (map[inventory.ProductID]inventory.Quantity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, quantity_sold FROM sales_records WHERE shift_id = ?`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[inventory.ProductID]inventory.Quantity)
	for rows.Next() {
		var productID inventory.ProductID
		var qty string
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan sales total: %w", err)
		}
		current, ok := totals[productID]
		if !ok {
			current = decimal.Zero
		}
		totals[productID] = current.Add(parseDecimal(qty))
	}
	return totals, rows.Err()
}

// SalesValueSince sums sale amounts recorded at or after the cutoff.
func (s *Store) SalesValueSince(ctx context.Context, cutoff time.Time) (inventory.Money, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_amount FROM sales_records WHERE created_at >= ?`, formatTime(cutoff))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query sales value: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan sale amount: %w", err)
		}
		total = total.Add(parseDecimal(amount))
	}
	return total, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// timeLayout is fixed-width so stored timestamps compare lexicographically
// in time order. RFC3339Nano trims trailing zeros, which makes TEXT range
// comparisons sort "…00.15Z" before "…00.1Z" and drop in-window rows.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
