/*
store.go - Persistence interface for the shift and loss workflow

PURPOSE:
  Defines everything the orchestration service needs from the database, on
  top of the movement ledger. Implementations must make every
  state-transition write CONDITIONAL: the update applies only if the row is
  still in the expected state, and the store reports a conflict otherwise.
  That compare-and-swap discipline is what makes concurrent closes,
  double-receives, and double-resolves safe.

TRANSITION GUARDS (all return inventory.ErrConflict when lost):
  CreateShift     unique open shift per staff
  FinalizeShift   shift must still be open
  ReceiveOrder    order must be in state ordered
  ResolveLossReport  report must still be unresolved

ATOMIC UNITS:
  FinalizeShift commits the shift-close mutation, the closing counts, the
  reconciliation rows, the loss reports, and the product stock corrections
  as one transaction. Partial reconciliation must never be observable.
  ReceiveOrder commits the status transition and all item stock additions
  together, exactly once.

SEE ALSO:
  - store/sqlite: the production implementation
*/
package bar

import (
	"context"
	"time"

	"github.com/tapline/inventory-engine/inventory"
	"github.com/tapline/inventory-engine/recon"
)

// ShiftFilter narrows shift listings.
type ShiftFilter struct {
	Status *ShiftStatus
	Limit  int
}

// LossReportFilter narrows loss report listings.
type LossReportFilter struct {
	Severity       *recon.Severity
	ReasonCode     *recon.ReasonCode
	UnresolvedOnly bool
	Limit          int
}

// ReconciliationFilter narrows reconciliation listings.
type ReconciliationFilter struct {
	ShiftID   *inventory.ShiftID
	ProductID *inventory.ProductID
	From      *time.Time
	To        *time.Time
	Limit     int
}

// ShiftClose is the atomic unit FinalizeShift commits.
type ShiftClose struct {
	ShiftID       inventory.ShiftID
	EndTime       time.Time
	Notes         string
	ClosingCounts map[inventory.ProductID]inventory.Quantity

	Reconciliations []recon.Reconciliation
	LossReports     []recon.LossReport

	// StockLevels replaces each product's running total with the counted
	// closing value, establishing the baseline for the next shift.
	StockLevels map[inventory.ProductID]inventory.Quantity
}

// Store is the persistence surface for the shift and loss workflow.
// It extends the movement ledger store: implementations apply each
// appended movement's net effect to the product's running total in the
// same transaction as the append.
type Store interface {
	inventory.MovementStore

	// Products
	SaveProduct(ctx context.Context, p inventory.Product) error
	GetProduct(ctx context.Context, id inventory.ProductID) (*inventory.Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]inventory.Product, error)

	// Shifts
	// CreateShift inserts the shift and its opening counts. Fails with a
	// conflict if the staff member already has an open shift.
	CreateShift(ctx context.Context, s Shift) error
	GetShift(ctx context.Context, id inventory.ShiftID) (*Shift, error)
	ListShifts(ctx context.Context, f ShiftFilter) ([]Shift, error)
	// FinalizeShift atomically closes the shift (guarded on status=open)
	// and commits the full reconciliation output.
	FinalizeShift(ctx context.Context, c ShiftClose) error

	// Sales
	SaveSalesRecords(ctx context.Context, rs []inventory.SalesRecord) error
	// SalesTotalsForShift sums quantity sold per product for one shift.
	SalesTotalsForShift(ctx context.Context, shiftID inventory.ShiftID) (map[inventory.ProductID]inventory.Quantity, error)
	// SalesValueSince sums sale amounts recorded at or after the cutoff.
	SalesValueSince(ctx context.Context, cutoff time.Time) (inventory.Money, error)

	// Purchase orders
	CreatePurchaseOrder(ctx context.Context, po inventory.PurchaseOrder) error
	GetPurchaseOrder(ctx context.Context, id inventory.OrderID) (*inventory.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, status *inventory.OrderStatus) ([]inventory.PurchaseOrder, error)
	// SetOrderStatus performs a guarded transition from one status to
	// another (draft->ordered, draft/ordered->cancelled).
	SetOrderStatus(ctx context.Context, id inventory.OrderID, from, to inventory.OrderStatus, at time.Time) error
	// ReceiveOrder transitions ordered->received and applies every item
	// quantity to product stock, atomically and exactly once.
	ReceiveOrder(ctx context.Context, id inventory.OrderID, at time.Time) (*inventory.PurchaseOrder, error)
	// ReceiptsInRange sums purchase-order item quantities for a product
	// across orders received in [from, to].
	ReceiptsInRange(ctx context.Context, productID inventory.ProductID, from, to time.Time) (inventory.Quantity, error)

	// Reconciliations
	ListReconciliations(ctx context.Context, f ReconciliationFilter) ([]recon.Reconciliation, error)

	// Loss reports
	GetLossReport(ctx context.Context, id string) (*recon.LossReport, error)
	ListLossReports(ctx context.Context, f LossReportFilter) ([]recon.LossReport, error)
	LossReportsSince(ctx context.Context, cutoff time.Time) ([]recon.LossReport, error)
	CountUnresolvedLossReports(ctx context.Context) (int, error)
	// ResolveLossReport assigns the reason code, guarded on the report
	// still being unresolved.
	ResolveLossReport(ctx context.Context, id string, reason recon.ReasonCode, reviewer inventory.StaffID, notes string, at time.Time) error

	// Dashboard
	CountOpenShifts(ctx context.Context) (int, error)
}
