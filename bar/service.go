/*
service.go - Shift transitions and reconciliation orchestration

PURPOSE:
  The Service is the surface the API layer calls. It owns the shift state
  machine, feeds closed shifts to the pure recon engine, and commits the
  results through the guarded store operations.

REQUEST FLOW ON CLOSE:
  1. Load the shift; reject if missing or already closed
  2. Validate the close payload covers every product counted at open
  3. Load the shift window: movements, sales totals, order receipts
  4. recon.Calculate -> recon.Thresholds.Classify per product
  5. FinalizeShift commits everything atomically; if another close won the
     race, the store reports a conflict and nothing is written

IDENTITY:
  Every operation takes the acting staff or reviewer id explicitly. There
  is no ambient current-user; authorization happens in the caller.

ERROR HANDLING:
  Everything maps to the taxonomy in inventory/errors.go. The messages are
  specific ("shift already closed", "order already received") so callers
  can surface them directly.
*/
package bar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tapline/inventory-engine/inventory"
	"github.com/tapline/inventory-engine/recon"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service drives the shift lifecycle and the loss workflow.
type Service struct {
	store      Store
	ledger     inventory.Ledger
	thresholds recon.Thresholds

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a service over the given store.
func NewService(store Store, thresholds recon.Thresholds) *Service {
	return &Service{
		store:      store,
		ledger:     inventory.NewLedger(store),
		thresholds: thresholds,
		now:        time.Now,
	}
}

// SetClock overrides the service clock. Tests only.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CloseShiftResult is everything a close produces.
type CloseShiftResult struct {
	Shift           *Shift
	Reconciliations []recon.Reconciliation
	LossReports     []recon.LossReport
}

// =============================================================================
// SHIFT STATE MACHINE
// =============================================================================

// OpenShift starts a shift for a staff member with opening stock counts.
// Fails with a validation error on an empty or duplicated count list, and
// with a conflict if the staff member already has an open shift.
func (s *Service) OpenShift(ctx context.Context, staffID inventory.StaffID, counts []CountEntry, notes string) (*Shift, error) {
	if staffID == "" {
		return nil, inventory.Invalid("staff_id", "required")
	}
	if len(counts) == 0 {
		return nil, inventory.Invalid("stock_counts", "at least one opening count is required")
	}

	seen := make(map[inventory.ProductID]bool, len(counts))
	for _, c := range counts {
		if c.ProductID == "" {
			return nil, inventory.Invalid("stock_counts", "product_id is required on every count")
		}
		if seen[c.ProductID] {
			return nil, inventory.Invalid("stock_counts", fmt.Sprintf("product %s counted twice", c.ProductID))
		}
		if c.Count.IsNegative() {
			return nil, inventory.Invalid("stock_counts", fmt.Sprintf("count for product %s must not be negative", c.ProductID))
		}
		seen[c.ProductID] = true
	}

	now := s.now().UTC()
	shift := Shift{
		ID:        inventory.ShiftID(uuid.NewString()),
		StaffID:   staffID,
		StartTime: now,
		Status:    ShiftOpen,
		Notes:     notes,
		CreatedAt: now,
	}
	for _, c := range counts {
		shift.StockCounts = append(shift.StockCounts, ShiftStockCount{
			ShiftID:      shift.ID,
			ProductID:    c.ProductID,
			OpeningCount: c.Count,
		})
	}

	// The store enforces at-most-one-open-shift-per-staff with a unique
	// constraint; a racing open loses there, not in a read-then-write here.
	if err := s.store.CreateShift(ctx, shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

// CloseShift closes an open shift with closing counts, runs reconciliation
// over the shift window, and commits shift + reconciliations + loss reports
// atomically. Exactly one concurrent close can succeed.
func (s *Service) CloseShift(ctx context.Context, shiftID inventory.ShiftID, counts []CountEntry, notes string) (*CloseShiftResult, error) {
	shift, err := s.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, inventory.NotFound("shift", string(shiftID))
	}
	if !shift.Open() {
		return nil, inventory.Conflict("shift", string(shiftID), "shift already closed")
	}

	closing, err := closingCounts(shift, counts)
	if err != nil {
		return nil, err
	}

	end := s.now().UTC()

	input, err := s.loadWindow(ctx, shift, closing, end)
	if err != nil {
		return nil, err
	}

	recs := recon.Calculate(*input)
	var reports []recon.LossReport
	stockLevels := make(map[inventory.ProductID]inventory.Quantity, len(recs))

	for i := range recs {
		recs[i].ID = uuid.NewString()

		product, err := s.store.GetProduct(ctx, recs[i].ProductID)
		if err != nil {
			return nil, err
		}
		costPrice := decimal.Zero
		if product != nil {
			costPrice = product.CostPrice
		}

		if report := s.thresholds.Classify(recs[i], costPrice); report != nil {
			report.ID = uuid.NewString()
			reports = append(reports, *report)
		}

		// The counted value becomes the product's new baseline.
		stockLevels[recs[i].ProductID] = recs[i].ActualClosing
	}

	err = s.store.FinalizeShift(ctx, ShiftClose{
		ShiftID:         shiftID,
		EndTime:         end,
		Notes:           notes,
		ClosingCounts:   closing,
		Reconciliations: recs,
		LossReports:     reports,
		StockLevels:     stockLevels,
	})
	if err != nil {
		return nil, err
	}

	closed, err := s.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	return &CloseShiftResult{Shift: closed, Reconciliations: recs, LossReports: reports}, nil
}

// closingCounts validates that the close payload covers exactly the
// products counted at open. An uncounted product would otherwise reconcile
// against a phantom closing count of zero and produce a false discrepancy.
func closingCounts(shift *Shift, counts []CountEntry) (map[inventory.ProductID]inventory.Quantity, error) {
	opened := make(map[inventory.ProductID]bool, len(shift.StockCounts))
	for _, sc := range shift.StockCounts {
		opened[sc.ProductID] = true
	}

	closing := make(map[inventory.ProductID]inventory.Quantity, len(counts))
	for _, c := range counts {
		if !opened[c.ProductID] {
			return nil, inventory.Invalid("stock_counts", fmt.Sprintf("product %s was not counted at shift open", c.ProductID))
		}
		if _, dup := closing[c.ProductID]; dup {
			return nil, inventory.Invalid("stock_counts", fmt.Sprintf("product %s counted twice", c.ProductID))
		}
		if c.Count.IsNegative() {
			return nil, inventory.Invalid("stock_counts", fmt.Sprintf("count for product %s must not be negative", c.ProductID))
		}
		closing[c.ProductID] = c.Count
	}

	for _, sc := range shift.StockCounts {
		if _, ok := closing[sc.ProductID]; !ok {
			return nil, inventory.Invalid("stock_counts", fmt.Sprintf("missing closing count for product %s", sc.ProductID))
		}
	}
	return closing, nil
}

// loadWindow assembles the calculator input for a shift: per product, the
// ledger movements inside [start, end], the sales attributed to the shift,
// and the purchase-order receipts that landed in the window.
func (s *Service) loadWindow(ctx context.Context, shift *Shift, closing map[inventory.ProductID]inventory.Quantity, end time.Time) (*recon.Input, error) {
	sold, err := s.store.SalesTotalsForShift(ctx, shift.ID)
	if err != nil {
		return nil, err
	}

	input := &recon.Input{ShiftID: shift.ID, ClosedAt: end}
	for _, sc := range shift.StockCounts {
		movements, err := s.ledger.MovementsInRange(ctx, sc.ProductID, shift.StartTime, end)
		if err != nil {
			return nil, err
		}
		receipts, err := s.store.ReceiptsInRange(ctx, sc.ProductID, shift.StartTime, end)
		if err != nil {
			return nil, err
		}

		soldQty := decimal.Zero
		if q, ok := sold[sc.ProductID]; ok {
			soldQty = q
		}

		input.Products = append(input.Products, recon.ProductWindow{
			ProductID: sc.ProductID,
			Opening:   sc.OpeningCount,
			Actual:    closing[sc.ProductID],
			Movements: movements,
			Sold:      soldQty,
			Receipts:  receipts,
		})
	}
	return input, nil
}

// GetShift returns one shift with its stock counts.
func (s *Service) GetShift(ctx context.Context, id inventory.ShiftID) (*Shift, error) {
	shift, err := s.store.GetShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, inventory.NotFound("shift", string(id))
	}
	return shift, nil
}

// Shifts lists shifts, newest first.
func (s *Service) Shifts(ctx context.Context, f ShiftFilter) ([]Shift, error) {
	return s.store.ListShifts(ctx, f)
}

// =============================================================================
// SALES
// =============================================================================

// RecordSale records a single sale against an open shift.
func (s *Service) RecordSale(ctx context.Context, productID inventory.ProductID, shiftID inventory.ShiftID, quantitySold inventory.Quantity, saleAmount inventory.Money) (*inventory.SalesRecord, error) {
	records, err := s.RecordSales(ctx, shiftID, []inventory.SalesRecord{{
		ProductID:    productID,
		QuantitySold: quantitySold,
		SaleAmount:   saleAmount,
	}})
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

// RecordSales records a batch of sales against one open shift.
func (s *Service) RecordSales(ctx context.Context, shiftID inventory.ShiftID, sales []inventory.SalesRecord) ([]inventory.SalesRecord, error) {
	if len(sales) == 0 {
		return nil, inventory.Invalid("records", "at least one sale is required")
	}

	shift, err := s.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, inventory.NotFound("shift", string(shiftID))
	}
	if !shift.Open() {
		return nil, inventory.Conflict("shift", string(shiftID), "cannot record sales against a closed shift")
	}

	now := s.now().UTC()
	out := make([]inventory.SalesRecord, 0, len(sales))
	for _, sale := range sales {
		if sale.ProductID == "" {
			return nil, inventory.Invalid("product_id", "required")
		}
		if !sale.QuantitySold.IsPositive() {
			return nil, inventory.Invalid("quantity_sold", "must be positive")
		}
		if sale.SaleAmount.IsNegative() {
			return nil, inventory.Invalid("sale_amount", "must not be negative")
		}
		product, err := s.store.GetProduct(ctx, sale.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, inventory.NotFound("product", string(sale.ProductID))
		}

		sale.ID = uuid.NewString()
		sale.ShiftID = shiftID
		sale.CreatedAt = now
		out = append(out, sale)
	}

	if err := s.store.SaveSalesRecords(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// =============================================================================
// STOCK MOVEMENTS
// =============================================================================

// RecordStockMovement appends an IN/OUT entry to the stock ledger. The
// store applies the movement's net effect to the product's running total
// in the same transaction.
func (s *Service) RecordStockMovement(ctx context.Context, productID inventory.ProductID, staffID inventory.StaffID, mType inventory.MovementType, reason inventory.MovementReason, quantity inventory.Quantity, notes string) (*inventory.StockMovement, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, inventory.NotFound("product", string(productID))
	}

	m := inventory.StockMovement{
		ID:        uuid.NewString(),
		ProductID: productID,
		StaffID:   staffID,
		Type:      mType,
		Reason:    reason,
		Quantity:  quantity,
		Notes:     notes,
		CreatedAt: s.now().UTC(),
	}
	if err := s.ledger.Append(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Movements returns a product's ledger history.
func (s *Service) Movements(ctx context.Context, productID inventory.ProductID) ([]inventory.StockMovement, error) {
	return s.ledger.Movements(ctx, productID)
}

// =============================================================================
// PURCHASE ORDERS
// =============================================================================

// CreatePurchaseOrder creates a draft order with line items. Totals are
// computed here, never trusted from the caller.
func (s *Service) CreatePurchaseOrder(ctx context.Context, supplierID inventory.SupplierID, items []inventory.PurchaseOrderItem, notes string) (*inventory.PurchaseOrder, error) {
	if supplierID == "" {
		return nil, inventory.Invalid("supplier_id", "required")
	}
	if len(items) == 0 {
		return nil, inventory.Invalid("items", "at least one line item is required")
	}

	now := s.now().UTC()
	po := inventory.PurchaseOrder{
		ID:         inventory.OrderID(uuid.NewString()),
		SupplierID: supplierID,
		Status:     inventory.OrderDraft,
		TotalCost:  decimal.Zero,
		Notes:      notes,
		CreatedAt:  now,
	}

	for _, item := range items {
		if item.ProductID == "" {
			return nil, inventory.Invalid("items", "product_id is required on every item")
		}
		if !item.Quantity.IsPositive() {
			return nil, inventory.Invalid("items", fmt.Sprintf("quantity for product %s must be positive", item.ProductID))
		}
		if item.UnitCost.IsNegative() {
			return nil, inventory.Invalid("items", fmt.Sprintf("unit cost for product %s must not be negative", item.ProductID))
		}
		product, err := s.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, inventory.NotFound("product", string(item.ProductID))
		}

		item.ID = uuid.NewString()
		item.OrderID = po.ID
		item.TotalCost = item.Quantity.Mul(item.UnitCost)
		po.TotalCost = po.TotalCost.Add(item.TotalCost)
		po.Items = append(po.Items, item)
	}

	if err := s.store.CreatePurchaseOrder(ctx, po); err != nil {
		return nil, err
	}
	return &po, nil
}

// OrderPurchaseOrder transitions a draft order to ordered.
func (s *Service) OrderPurchaseOrder(ctx context.Context, id inventory.OrderID) (*inventory.PurchaseOrder, error) {
	if err := s.store.SetOrderStatus(ctx, id, inventory.OrderDraft, inventory.OrderOrdered, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.store.GetPurchaseOrder(ctx, id)
}

// CancelPurchaseOrder cancels a draft order.
func (s *Service) CancelPurchaseOrder(ctx context.Context, id inventory.OrderID) (*inventory.PurchaseOrder, error) {
	if err := s.store.SetOrderStatus(ctx, id, inventory.OrderDraft, inventory.OrderCancelled, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.store.GetPurchaseOrder(ctx, id)
}

// ReceivePurchaseOrder transitions an ordered order to received and applies
// every item quantity to product stock, exactly once. A concurrent or
// repeated receive loses the status guard and changes nothing.
func (s *Service) ReceivePurchaseOrder(ctx context.Context, id inventory.OrderID) (*inventory.PurchaseOrder, error) {
	return s.store.ReceiveOrder(ctx, id, s.now().UTC())
}

// GetPurchaseOrder returns one order with its items.
func (s *Service) GetPurchaseOrder(ctx context.Context, id inventory.OrderID) (*inventory.PurchaseOrder, error) {
	po, err := s.store.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, inventory.NotFound("purchase order", string(id))
	}
	return po, nil
}

// PurchaseOrders lists orders, optionally filtered by status.
func (s *Service) PurchaseOrders(ctx context.Context, status *inventory.OrderStatus) ([]inventory.PurchaseOrder, error) {
	return s.store.ListPurchaseOrders(ctx, status)
}

// =============================================================================
// LOSS RESOLUTION WORKFLOW
// =============================================================================

// ResolveLossReport assigns a reason code to an unresolved report. A report
// is resolved at most once; a second attempt fails with a conflict and the
// first resolution is preserved.
func (s *Service) ResolveLossReport(ctx context.Context, id string, reason recon.ReasonCode, notes string, reviewerID inventory.StaffID) (*recon.LossReport, error) {
	if reviewerID == "" {
		return nil, inventory.Invalid("reviewer_id", "required")
	}
	valid := false
	for _, r := range recon.ValidReasonCodes {
		if reason == r {
			valid = true
			break
		}
	}
	if !valid {
		return nil, inventory.Invalid("reason_code", "must be one of theft, over_pour, wastage, entry_error")
	}

	if err := s.store.ResolveLossReport(ctx, id, reason, reviewerID, notes, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.store.GetLossReport(ctx, id)
}

// LossReports lists reports, newest first.
func (s *Service) LossReports(ctx context.Context, f LossReportFilter) ([]recon.LossReport, error) {
	return s.store.ListLossReports(ctx, f)
}

// LossSummary aggregates loss reports over the last windowDays days.
func (s *Service) LossSummary(ctx context.Context, windowDays int) (*recon.LossSummary, error) {
	if windowDays <= 0 {
		return nil, inventory.Invalid("days", "must be positive")
	}
	cutoff := s.now().UTC().AddDate(0, 0, -windowDays)
	reports, err := s.store.LossReportsSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	summary := recon.Summarize(reports, windowDays)
	return &summary, nil
}

// Reconciliations lists reconciliation records with optional filters.
func (s *Service) Reconciliations(ctx context.Context, f ReconciliationFilter) ([]recon.Reconciliation, error) {
	return s.store.ListReconciliations(ctx, f)
}

// =============================================================================
// PRODUCTS & DASHBOARD
// =============================================================================

// SaveProduct creates or updates a product record.
func (s *Service) SaveProduct(ctx context.Context, p inventory.Product) (*inventory.Product, error) {
	if p.Name == "" {
		return nil, inventory.Invalid("name", "required")
	}
	if p.CostPrice.IsNegative() || p.SalePrice.IsNegative() {
		return nil, inventory.Invalid("price", "must not be negative")
	}
	now := s.now().UTC()
	if p.ID == "" {
		p.ID = inventory.ProductID(uuid.NewString())
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if err := s.store.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Products lists products.
func (s *Service) Products(ctx context.Context, activeOnly bool) ([]inventory.Product, error) {
	return s.store.ListProducts(ctx, activeOnly)
}

// Dashboard is the manager's aggregated view.
type Dashboard struct {
	TotalProducts      int
	TotalStockValue    inventory.Money
	ActiveShifts       int
	MonthlyRevenue     inventory.Money
	TodayLossValue     inventory.Money
	TodayLossIncidents int
	UnresolvedAlerts   int
	LowStockProducts   []inventory.Product
	LossTrend          []LossTrendPoint
}

// LossTrendPoint is one day's loss total.
type LossTrendPoint struct {
	Date      string // YYYY-MM-DD
	TotalLoss inventory.Money
	Incidents int
}

// GetDashboard assembles the manager dashboard.
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour)
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	products, err := s.store.ListProducts(ctx, true)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		TotalProducts:    len(products),
		TotalStockValue:  decimal.Zero,
		TodayLossValue:   decimal.Zero,
		MonthlyRevenue:   decimal.Zero,
		LowStockProducts: []inventory.Product{},
		LossTrend:        []LossTrendPoint{},
	}
	for _, p := range products {
		d.TotalStockValue = d.TotalStockValue.Add(p.StockValue())
		if p.LowStock() {
			d.LowStockProducts = append(d.LowStockProducts, p)
		}
	}

	d.ActiveShifts, err = s.store.CountOpenShifts(ctx)
	if err != nil {
		return nil, err
	}

	d.MonthlyRevenue, err = s.store.SalesValueSince(ctx, monthAgo)
	if err != nil {
		return nil, err
	}

	d.UnresolvedAlerts, err = s.store.CountUnresolvedLossReports(ctx)
	if err != nil {
		return nil, err
	}

	weekReports, err := s.store.LossReportsSince(ctx, weekAgo)
	if err != nil {
		return nil, err
	}

	trend := make(map[string]*LossTrendPoint)
	for _, r := range weekReports {
		if !r.CreatedAt.Before(today) && r.LossValue.IsPositive() {
			d.TodayLossValue = d.TodayLossValue.Add(r.LossValue)
		}
		if !r.CreatedAt.Before(today) {
			d.TodayLossIncidents++
		}

		day := r.CreatedAt.Format("2006-01-02")
		pt, ok := trend[day]
		if !ok {
			pt = &LossTrendPoint{Date: day, TotalLoss: decimal.Zero}
			trend[day] = pt
		}
		if r.LossValue.IsPositive() {
			pt.TotalLoss = pt.TotalLoss.Add(r.LossValue)
		}
		pt.Incidents++
	}
	for _, pt := range trend {
		d.LossTrend = append(d.LossTrend, *pt)
	}
	sort.Slice(d.LossTrend, func(i, j int) bool { return d.LossTrend[i].Date < d.LossTrend[j].Date })

	return d, nil
}
