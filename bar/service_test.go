package bar_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapline/inventory-engine/bar"
	"github.com/tapline/inventory-engine/inventory"
	"github.com/tapline/inventory-engine/recon"
	"github.com/tapline/inventory-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var t0 = time.Date(2025, time.June, 1, 18, 0, 0, 0, time.UTC)

// testClock is a controllable clock for the service.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*bar.Service, *sqlite.Store, *testClock) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := bar.NewService(store, recon.DefaultThresholds())
	clock := &testClock{now: t0}
	svc.SetClock(clock.Now)
	return svc, store, clock
}

func seedProduct(t *testing.T, svc *bar.Service, id string, costPrice, stock float64) inventory.Product {
	t.Helper()
	p, err := svc.SaveProduct(context.Background(), inventory.Product{
		ID:                inventory.ProductID(id),
		Name:              id,
		Category:          inventory.CategorySpirits,
		Unit:              inventory.UnitBottle,
		CostPrice:         inventory.Qty(costPrice),
		SalePrice:         inventory.Qty(costPrice * 2),
		CurrentStock:      inventory.Qty(stock),
		MinStockThreshold: inventory.QtyInt(5),
		Active:            true,
	})
	require.NoError(t, err)
	return *p
}

func counts(entries ...bar.CountEntry) []bar.CountEntry { return entries }

func count(id string, qty float64) bar.CountEntry {
	return bar.CountEntry{ProductID: inventory.ProductID(id), Count: inventory.Qty(qty)}
}

// =============================================================================
// SHIFT OPEN
// =============================================================================

func TestOpenShift_PersistsOpeningCounts(t *testing.T) {
	// GIVEN: Two products on the shelf
	// WHEN: A staff member opens a shift with counts for both
	// THEN: The shift is open with the counts in supplied order

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)
	seedProduct(t, svc, "rum", 30, 20)

	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("rum", 20), count("gin", 40)), "")
	require.NoError(t, err)

	loaded, err := svc.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Open())
	require.Len(t, loaded.StockCounts, 2)
	assert.Equal(t, inventory.ProductID("rum"), loaded.StockCounts[0].ProductID)
	assert.Equal(t, inventory.ProductID("gin"), loaded.StockCounts[1].ProductID)
	assert.Nil(t, loaded.StockCounts[0].ClosingCount)
}

func TestOpenShift_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)

	_, err := svc.OpenShift(ctx, "staff-1", nil, "")
	assert.True(t, inventory.IsValidation(err), "empty counts must be rejected")

	_, err = svc.OpenShift(ctx, "staff-1", counts(count("gin", 10), count("gin", 12)), "")
	assert.True(t, inventory.IsValidation(err), "duplicate product must be rejected")

	_, err = svc.OpenShift(ctx, "staff-1", counts(count("gin", -1)), "")
	assert.True(t, inventory.IsValidation(err), "negative count must be rejected")

	_, err = svc.OpenShift(ctx, "", counts(count("gin", 10)), "")
	assert.True(t, inventory.IsValidation(err), "staff id is required")
}

func TestOpenShift_OneOpenShiftPerStaff(t *testing.T) {
	// GIVEN: staff-1 already has an open shift
	// WHEN: staff-1 opens again and staff-2 opens for the first time
	// THEN: staff-1 conflicts, staff-2 succeeds

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)

	_, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	require.NoError(t, err)

	_, err = svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	assert.True(t, inventory.IsConflict(err), "second open for same staff must conflict")

	_, err = svc.OpenShift(ctx, "staff-2", counts(count("gin", 40)), "")
	assert.NoError(t, err, "a different staff member may open concurrently")
}

func TestOpenShift_ConcurrentOpens_ExactlyOneWins(t *testing.T) {
	// GIVEN: Two goroutines racing to open a shift for the same staff member
	// WHEN: Both hit the store at once
	// THEN: Exactly one succeeds; the unique index decides

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
		}(i)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else if inventory.IsConflict(err) {
			losers++
		}
	}
	assert.Equal(t, 1, winners, "exactly one open must win")
	assert.Equal(t, 1, losers, "the other must lose with a conflict")
}

func TestOpenShift_AllowedAfterPreviousClose(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)

	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	require.NoError(t, err)

	clock.Advance(8 * time.Hour)
	_, err = svc.CloseShift(ctx, shift.ID, counts(count("gin", 40)), "")
	require.NoError(t, err)

	_, err = svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	assert.NoError(t, err, "closing frees the staff member to open again")
}

// =============================================================================
// SHIFT CLOSE & RECONCILIATION
// =============================================================================

func TestCloseShift_FullReconciliation(t *testing.T) {
	// GIVEN: An open shift with sales, a wastage movement, and a received
	//        purchase order inside the window
	// WHEN: The shift closes with a count 2 short of expected
	// THEN: expected = 40 + 5 - 8 - 1 = 36, discrepancy = 2, a warning
	//       report is filed, and product stock is corrected to the count

	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)

	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = svc.RecordSale(ctx, "gin", shift.ID, inventory.QtyInt(8), inventory.QtyInt(800))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = svc.RecordStockMovement(ctx, "gin", "staff-1", inventory.MovementOut, inventory.ReasonWastage, inventory.QtyInt(1), "dropped a bottle")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	po, err := svc.CreatePurchaseOrder(ctx, "supplier-1", []inventory.PurchaseOrderItem{
		{ProductID: "gin", Quantity: inventory.QtyInt(5), UnitCost: inventory.QtyInt(45)},
	}, "")
	require.NoError(t, err)
	_, err = svc.OrderPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	_, err = svc.ReceivePurchaseOrder(ctx, po.ID)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	result, err := svc.CloseShift(ctx, shift.ID, counts(count("gin", 34)), "end of night")
	require.NoError(t, err)

	require.Len(t, result.Reconciliations, 1)
	rec := result.Reconciliations[0]
	assert.True(t, rec.OpeningStock.Equal(inventory.QtyInt(40)))
	assert.True(t, rec.Received.Equal(inventory.QtyInt(5)), "received = PO receipts, not duplicated by movements")
	assert.True(t, rec.Sold.Equal(inventory.QtyInt(8)))
	assert.True(t, rec.Consumed.Equal(inventory.QtyInt(1)))
	assert.True(t, rec.ExpectedClosing.Equal(inventory.QtyInt(36)))
	assert.True(t, rec.Discrepancy.Equal(inventory.QtyInt(2)))

	require.Len(t, result.LossReports, 1)
	report := result.LossReports[0]
	assert.True(t, report.LossValue.Equal(inventory.QtyInt(100)), "2 bottles x 50 cost")
	assert.Equal(t, recon.SeverityWarning, report.Severity)
	assert.False(t, report.Resolved())

	assert.False(t, result.Shift.Open())
	require.NotNil(t, result.Shift.StockCounts[0].ClosingCount)
	assert.True(t, result.Shift.StockCounts[0].ClosingCount.Equal(inventory.QtyInt(34)))

	// The counted value becomes the authoritative stock level.
	products, err := svc.Products(ctx, true)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].CurrentStock.Equal(inventory.QtyInt(34)))
}

func TestCloseShift_CleanCount_NoLossReport(t *testing.T) {
	// GIVEN: An open shift with no activity
	// WHEN: Closing with the same count
	// THEN: Reconciliation records zero discrepancy and files no report

	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)

	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	result, err := svc.CloseShift(ctx, shift.ID, counts(count("gin", 40)), "")
	require.NoError(t, err)

	require.Len(t, result.Reconciliations, 1)
	assert.True(t, result.Reconciliations[0].Discrepancy.IsZero())
	assert.Empty(t, result.LossReports)
}

func TestCloseShift_SubSecondWindow_MovementIncluded(t *testing.T) {
	// GIVEN: A shift opened at .100s and a wastage recorded at .150s, so the
	//        stored timestamps differ only in fractional-second length
	// WHEN: The shift closes with the true count
	// THEN: The movement is inside the window and no discrepancy is reported

	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)

	clock.Advance(100 * time.Millisecond)
	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	require.NoError(t, err)

	clock.Advance(50 * time.Millisecond)
	_, err = svc.RecordStockMovement(ctx, "gin", "staff-1", inventory.MovementOut, inventory.ReasonWastage, inventory.QtyInt(1), "spill")
	require.NoError(t, err)

	clock.Advance(50 * time.Millisecond)
	result, err := svc.CloseShift(ctx, shift.ID, counts(count("gin", 39)), "")
	require.NoError(t, err)

	require.Len(t, result.Reconciliations, 1)
	rec := result.Reconciliations[0]
	assert.True(t, rec.Consumed.Equal(inventory.QtyInt(1)))
	assert.True(t, rec.Discrepancy.IsZero())
	assert.Empty(t, result.LossReports)
}

func TestCloseShift_PayloadMustCoverOpeningCounts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)
	seedProduct(t, svc, "rum", 30, 20)

	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40), count("rum", 20)), "")
	require.NoError(t, err)

	// Missing a product counted at open
	_, err = svc.CloseShift(ctx, shift.ID, counts(count("gin", 38)), "")
	assert.True(t, inventory.IsValidation(err), "every opened product needs a closing count")

	// A product that was never counted at open
	seedProduct(t, svc, "wine", 20, 10)
	_, err = svc.CloseShift(ctx, shift.ID, counts(count("gin", 38), count("rum", 19), count("wine", 10)), "")
	assert.True(t, inventory.IsValidation(err), "products outside the shift cannot be closed")

	// The failed attempts must not have closed the shift
	loaded, err := svc.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Open())
}

func TestCloseShift_AlreadyClosed_Conflict(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)

	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = svc.CloseShift(ctx, shift.ID, counts(count("gin", 40)), "")
	require.NoError(t, err)

	_, err = svc.CloseShift(ctx, shift.ID, counts(count("gin", 40)), "")
	assert.True(t, inventory.IsConflict(err), "a closed shift cannot close again")

	_, err = svc.CloseShift(ctx, "no-such-shift", counts(count("gin", 40)), "")
	assert.True(t, inventory.IsNotFound(err))
}

func TestCloseShift_ConcurrentCloses_ExactlyOneWins(t *testing.T) {
	// GIVEN: Two goroutines racing to close the same shift with different counts
	// WHEN: Both run reconciliation and reach FinalizeShift
	// THEN: Exactly one commits; exactly one reconciliation row exists

	svc, store, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)

	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	require.NoError(t, err)
	clock.Advance(time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CloseShift(ctx, shift.ID, counts(count("gin", float64(38+i))), "")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, inventory.IsConflict(err), "loser must see a conflict, got %v", err)
		}
	}
	assert.Equal(t, 1, winners, "exactly one close must commit")

	recs, err := store.ListReconciliations(ctx, bar.ReconciliationFilter{})
	require.NoError(t, err)
	assert.Len(t, recs, 1, "the losing close must leave nothing behind")
}

// =============================================================================
// SALES
// =============================================================================

func TestRecordSales_GuardsAndAttribution(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)

	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	require.NoError(t, err)

	_, err = svc.RecordSale(ctx, "no-such-product", shift.ID, inventory.QtyInt(1), inventory.QtyInt(10))
	assert.True(t, inventory.IsNotFound(err))

	_, err = svc.RecordSale(ctx, "gin", shift.ID, inventory.QtyInt(0), inventory.QtyInt(10))
	assert.True(t, inventory.IsValidation(err), "quantity must be positive")

	_, err = svc.RecordSale(ctx, "gin", "no-such-shift", inventory.QtyInt(1), inventory.QtyInt(10))
	assert.True(t, inventory.IsNotFound(err))

	clock.Advance(time.Hour)
	_, err = svc.CloseShift(ctx, shift.ID, counts(count("gin", 40)), "")
	require.NoError(t, err)

	_, err = svc.RecordSale(ctx, "gin", shift.ID, inventory.QtyInt(1), inventory.QtyInt(10))
	assert.True(t, inventory.IsConflict(err), "sales against a closed shift must be rejected")
}

// =============================================================================
// PURCHASE ORDERS
// =============================================================================

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	// GIVEN: A draft order for 24 beers
	// WHEN: It is ordered and received
	// THEN: Stock increases exactly once and timestamps are stamped

	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "beer", 3, 48)

	po, err := svc.CreatePurchaseOrder(ctx, "supplier-1", []inventory.PurchaseOrderItem{
		{ProductID: "beer", Quantity: inventory.QtyInt(24), UnitCost: inventory.Qty(2.5)},
	}, "weekly restock")
	require.NoError(t, err)
	assert.Equal(t, inventory.OrderDraft, po.Status)
	assert.True(t, po.TotalCost.Equal(inventory.QtyInt(60)), "totals are computed, not trusted")

	clock.Advance(time.Hour)
	po, err = svc.OrderPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.OrderOrdered, po.Status)
	require.NotNil(t, po.OrderedAt)

	clock.Advance(24 * time.Hour)
	po, err = svc.ReceivePurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.OrderReceived, po.Status)
	require.NotNil(t, po.ReceivedAt)

	products, err := svc.Products(ctx, true)
	require.NoError(t, err)
	assert.True(t, products[0].CurrentStock.Equal(inventory.QtyInt(72)), "48 + 24 received")
}

func TestPurchaseOrder_TransitionGuards(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "beer", 3, 48)

	po, err := svc.CreatePurchaseOrder(ctx, "supplier-1", []inventory.PurchaseOrderItem{
		{ProductID: "beer", Quantity: inventory.QtyInt(24), UnitCost: inventory.Qty(2.5)},
	}, "")
	require.NoError(t, err)

	// Receiving a draft order skips the ordered state
	_, err = svc.ReceivePurchaseOrder(ctx, po.ID)
	assert.True(t, inventory.IsConflict(err), "a draft order cannot be received")

	// Cancel it, then try to order it
	_, err = svc.CancelPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	_, err = svc.OrderPurchaseOrder(ctx, po.ID)
	assert.True(t, inventory.IsConflict(err), "a cancelled order cannot be ordered")

	products, err := svc.Products(ctx, true)
	require.NoError(t, err)
	assert.True(t, products[0].CurrentStock.Equal(inventory.QtyInt(48)), "no failed transition may touch stock")
}

func TestPurchaseOrder_ConcurrentReceives_StockAppliedOnce(t *testing.T) {
	// GIVEN: An ordered purchase order
	// WHEN: Two goroutines race to receive it
	// THEN: Exactly one wins and stock is applied exactly once

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "beer", 3, 48)

	po, err := svc.CreatePurchaseOrder(ctx, "supplier-1", []inventory.PurchaseOrderItem{
		{ProductID: "beer", Quantity: inventory.QtyInt(24), UnitCost: inventory.Qty(2.5)},
	}, "")
	require.NoError(t, err)
	_, err = svc.OrderPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ReceivePurchaseOrder(ctx, po.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, inventory.IsConflict(err))
		}
	}
	assert.Equal(t, 1, winners)

	products, err := svc.Products(ctx, true)
	require.NoError(t, err)
	assert.True(t, products[0].CurrentStock.Equal(inventory.QtyInt(72)), "double receive must not double stock")
}

// =============================================================================
// LOSS RESOLUTION
// =============================================================================

// closeWithLoss opens and closes a shift that produces one loss report.
func closeWithLoss(t *testing.T, svc *bar.Service, clock *testClock) recon.LossReport {
	t.Helper()
	ctx := context.Background()

	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	require.NoError(t, err)
	clock.Advance(time.Hour)

	result, err := svc.CloseShift(ctx, shift.ID, counts(count("gin", 38)), "")
	require.NoError(t, err)
	require.Len(t, result.LossReports, 1)
	return result.LossReports[0]
}

func TestResolveLossReport_OneShot(t *testing.T) {
	// GIVEN: An unresolved loss report
	// WHEN: A manager resolves it, then a second manager tries again
	// THEN: The second attempt conflicts and the first resolution survives

	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)
	report := closeWithLoss(t, svc, clock)

	resolved, err := svc.ResolveLossReport(ctx, report.ID, recon.ReasonOverPour, "free pours again", "manager-1")
	require.NoError(t, err)
	assert.True(t, resolved.Resolved())
	assert.Equal(t, recon.ReasonOverPour, resolved.ReasonCode)
	assert.Equal(t, inventory.StaffID("manager-1"), resolved.ReviewedBy)
	require.NotNil(t, resolved.ReviewedAt)

	_, err = svc.ResolveLossReport(ctx, report.ID, recon.ReasonTheft, "", "manager-2")
	assert.True(t, inventory.IsConflict(err), "resolution is one-way")

	again, err := svc.LossReports(ctx, bar.LossReportFilter{})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, recon.ReasonOverPour, again[0].ReasonCode, "first resolution must be preserved")
	assert.Equal(t, inventory.StaffID("manager-1"), again[0].ReviewedBy)
}

func TestResolveLossReport_Validation(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)
	report := closeWithLoss(t, svc, clock)

	_, err := svc.ResolveLossReport(ctx, report.ID, "gremlins", "", "manager-1")
	assert.True(t, inventory.IsValidation(err), "unknown reason code must be rejected")

	_, err = svc.ResolveLossReport(ctx, report.ID, recon.ReasonTheft, "", "")
	assert.True(t, inventory.IsValidation(err), "reviewer is required")

	_, err = svc.ResolveLossReport(ctx, "no-such-report", recon.ReasonTheft, "", "manager-1")
	assert.True(t, inventory.IsNotFound(err))
}

func TestLossSummary_Window(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)
	closeWithLoss(t, svc, clock)

	summary, err := svc.LossSummary(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.WindowDays)
	assert.Equal(t, 1, summary.TotalIncidents)
	assert.Equal(t, 1, summary.UnresolvedCount)
	assert.True(t, summary.TotalLossValue.Equal(inventory.QtyInt(100)), "2 bottles x 50")
	require.Len(t, summary.TopLossProducts, 1)
	assert.Equal(t, inventory.ProductID("gin"), summary.TopLossProducts[0].ProductID)

	_, err = svc.LossSummary(ctx, 0)
	assert.True(t, inventory.IsValidation(err))
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestGetDashboard(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "gin", 50, 40)
	seedProduct(t, svc, "rum", 30, 2) // below threshold of 5

	shift, err := svc.OpenShift(ctx, "staff-1", counts(count("gin", 40)), "")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = svc.RecordSale(ctx, "gin", shift.ID, inventory.QtyInt(2), inventory.QtyInt(200))
	require.NoError(t, err)

	d, err := svc.GetDashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, d.TotalProducts)
	assert.Equal(t, 1, d.ActiveShifts)
	assert.True(t, d.MonthlyRevenue.Equal(inventory.QtyInt(200)))
	// 40 x 50 + 2 x 30
	assert.True(t, d.TotalStockValue.Equal(inventory.QtyInt(2060)))
	require.Len(t, d.LowStockProducts, 1)
	assert.Equal(t, inventory.ProductID("rum"), d.LowStockProducts[0].ID)
}
