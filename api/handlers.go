/*
handlers.go - HTTP API handlers for the reconciliation engine

PURPOSE:
  Exposes the shift, stock, and loss workflow via REST. Handlers parse and
  validate input, delegate to bar.Service, and serialize the result. No
  business rules live here.

ENDPOINTS:
  Shifts:
    POST   /api/shifts/open            Open a shift with opening counts
    POST   /api/shifts/{id}/close      Close a shift, run reconciliation
    GET    /api/shifts                 List shifts (?status=, ?limit=)
    GET    /api/shifts/{id}            Get shift detail

  Sales & movements:
    POST   /api/sales                  Record sales against a shift
    POST   /api/movements              Append a stock movement
    GET    /api/products/{id}/movements Ledger history for one product

  Purchase orders:
    POST   /api/purchase-orders                Create draft order
    GET    /api/purchase-orders                List (?status=)
    GET    /api/purchase-orders/{id}           Get order
    POST   /api/purchase-orders/{id}/order     draft -> ordered
    POST   /api/purchase-orders/{id}/receive   ordered -> received (stock applied)
    POST   /api/purchase-orders/{id}/cancel    draft -> cancelled

  Reconciliation & loss:
    GET    /api/reconciliations              List (?shift_id=, ?product_id=)
    GET    /api/loss-reports                 List (?severity=, ?unresolved=)
    GET    /api/loss-reports/summary         Windowed summary (?days=, default 30)
    POST   /api/loss-reports/{id}/resolve    Assign a reason code

  Products & dashboard:
    GET    /api/products               List products (?active=)
    POST   /api/products               Create/update product
    GET    /api/dashboard              Manager dashboard

ERROR HANDLING:
  The error taxonomy in inventory/errors.go maps to status codes:
  - validation  -> 400
  - not found   -> 404
  - conflict    -> 409 (lost a guarded transition: double close, double
                   receive, double resolve, second open shift)
  - anything else -> 500

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/tapline/inventory-engine/bar"
	"github.com/tapline/inventory-engine/inventory"
	"github.com/tapline/inventory-engine/recon"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *bar.Service
}

// NewHandler creates a handler over the given service.
func NewHandler(service *bar.Service) *Handler {
	return &Handler{Service: service}
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// OpenShift opens a shift with opening stock counts.
func (h *Handler) OpenShift(w http.ResponseWriter, r *http.Request) {
	var req OpenShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	counts, err := parseCounts(req.StockCounts)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	shift, err := h.Service.OpenShift(r.Context(), inventory.StaffID(req.StaffID), counts, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(*shift))
}

// CloseShift closes a shift and returns the reconciliation output.
func (h *Handler) CloseShift(w http.ResponseWriter, r *http.Request) {
	shiftID := inventory.ShiftID(chi.URLParam(r, "id"))

	var req CloseShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	counts, err := parseCounts(req.StockCounts)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := h.Service.CloseShift(r.Context(), shiftID, counts, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := CloseShiftResponse{
		Shift:           toShiftDTO(*result.Shift),
		Reconciliations: []ReconciliationDTO{},
		LossReports:     []LossReportDTO{},
	}
	for _, rec := range result.Reconciliations {
		resp.Reconciliations = append(resp.Reconciliations, toReconciliationDTO(rec))
	}
	for _, report := range result.LossReports {
		resp.LossReports = append(resp.LossReports, toLossReportDTO(report))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetShift returns one shift.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Service.GetShift(r.Context(), inventory.ShiftID(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// ListShifts lists shifts, newest first.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	var f bar.ShiftFilter
	if v := r.URL.Query().Get("status"); v != "" {
		status := bar.ShiftStatus(v)
		f.Status = &status
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}

	shifts, err := h.Service.Shifts(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]ShiftDTO, 0, len(shifts))
	for _, s := range shifts {
		dtos = append(dtos, toShiftDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func parseCounts(entries []CountEntryDTO) ([]bar.CountEntry, error) {
	counts := make([]bar.CountEntry, 0, len(entries))
	for _, e := range entries {
		qty, err := decimal.NewFromString(e.Count)
		if err != nil {
			return nil, inventory.Invalid("stock_counts", "count must be a decimal string")
		}
		counts = append(counts, bar.CountEntry{
			ProductID: inventory.ProductID(e.ProductID),
			Count:     qty,
		})
	}
	return counts, nil
}

// =============================================================================
// SALES & MOVEMENT HANDLERS
// =============================================================================

// RecordSales records a batch of sales against one shift.
func (h *Handler) RecordSales(w http.ResponseWriter, r *http.Request) {
	var req RecordSalesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sales := make([]inventory.SalesRecord, 0, len(req.Records))
	for _, e := range req.Records {
		qty, err := decimal.NewFromString(e.QuantitySold)
		if err != nil {
			writeError(w, http.StatusBadRequest, "quantity_sold must be a decimal string", err)
			return
		}
		amount, err := decimal.NewFromString(e.SaleAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "sale_amount must be a decimal string", err)
			return
		}
		sales = append(sales, inventory.SalesRecord{
			ProductID:    inventory.ProductID(e.ProductID),
			QuantitySold: qty,
			SaleAmount:   amount,
		})
	}

	records, err := h.Service.RecordSales(r.Context(), inventory.ShiftID(req.ShiftID), sales)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]SalesRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toSalesRecordDTO(rec))
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// RecordMovement appends a stock movement to the ledger.
func (h *Handler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var req RecordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "quantity must be a decimal string", err)
		return
	}

	m, err := h.Service.RecordStockMovement(r.Context(),
		inventory.ProductID(req.ProductID),
		inventory.StaffID(req.StaffID),
		inventory.MovementType(req.Type),
		inventory.MovementReason(req.Reason),
		qty, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMovementDTO(*m))
}

// ListMovements returns a product's ledger history.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.Service.Movements(r.Context(), inventory.ProductID(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]MovementDTO, 0, len(movements))
	for _, m := range movements {
		dtos = append(dtos, toMovementDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PURCHASE ORDER HANDLERS
// =============================================================================

// CreatePurchaseOrder creates a draft order.
func (h *Handler) CreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	items := make([]inventory.PurchaseOrderItem, 0, len(req.Items))
	for _, e := range req.Items {
		qty, err := decimal.NewFromString(e.Quantity)
		if err != nil {
			writeError(w, http.StatusBadRequest, "quantity must be a decimal string", err)
			return
		}
		cost, err := decimal.NewFromString(e.UnitCost)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unit_cost must be a decimal string", err)
			return
		}
		items = append(items, inventory.PurchaseOrderItem{
			ProductID: inventory.ProductID(e.ProductID),
			Quantity:  qty,
			UnitCost:  cost,
		})
	}

	po, err := h.Service.CreatePurchaseOrder(r.Context(), inventory.SupplierID(req.SupplierID), items, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(*po))
}

// GetPurchaseOrder returns one order.
func (h *Handler) GetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.Service.GetPurchaseOrder(r.Context(), inventory.OrderID(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(*po))
}

// ListPurchaseOrders lists orders, optionally by status.
func (h *Handler) ListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	var status *inventory.OrderStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := inventory.OrderStatus(v)
		status = &s
	}

	orders, err := h.Service.PurchaseOrders(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]PurchaseOrderDTO, 0, len(orders))
	for _, po := range orders {
		dtos = append(dtos, toOrderDTO(po))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// OrderPurchaseOrder transitions draft -> ordered.
func (h *Handler) OrderPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.Service.OrderPurchaseOrder(r.Context(), inventory.OrderID(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(*po))
}

// ReceivePurchaseOrder transitions ordered -> received and applies stock.
func (h *Handler) ReceivePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.Service.ReceivePurchaseOrder(r.Context(), inventory.OrderID(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(*po))
}

// CancelPurchaseOrder transitions draft -> cancelled.
func (h *Handler) CancelPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.Service.CancelPurchaseOrder(r.Context(), inventory.OrderID(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(*po))
}

// =============================================================================
// RECONCILIATION & LOSS HANDLERS
// =============================================================================

// ListReconciliations lists reconciliation rows.
func (h *Handler) ListReconciliations(w http.ResponseWriter, r *http.Request) {
	var f bar.ReconciliationFilter
	if v := r.URL.Query().Get("shift_id"); v != "" {
		id := inventory.ShiftID(v)
		f.ShiftID = &id
	}
	if v := r.URL.Query().Get("product_id"); v != "" {
		id := inventory.ProductID(v)
		f.ProductID = &id
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}

	recs, err := h.Service.Reconciliations(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]ReconciliationDTO, 0, len(recs))
	for _, rec := range recs {
		dtos = append(dtos, toReconciliationDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListLossReports lists loss reports, newest first.
func (h *Handler) ListLossReports(w http.ResponseWriter, r *http.Request) {
	var f bar.LossReportFilter
	if v := r.URL.Query().Get("severity"); v != "" {
		sev := recon.Severity(v)
		f.Severity = &sev
	}
	if v := r.URL.Query().Get("reason_code"); v != "" {
		reason := recon.ReasonCode(v)
		f.ReasonCode = &reason
	}
	if r.URL.Query().Get("unresolved") == "true" {
		f.UnresolvedOnly = true
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}

	reports, err := h.Service.LossReports(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]LossReportDTO, 0, len(reports))
	for _, report := range reports {
		dtos = append(dtos, toLossReportDTO(report))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLossSummary returns the windowed loss aggregation. Default 30 days.
func (h *Handler) GetLossSummary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days must be an integer", err)
			return
		}
		days = parsed
	}

	summary, err := h.Service.LossSummary(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLossSummaryDTO(*summary))
}

// ResolveLossReport assigns a reason code to an unresolved report.
func (h *Handler) ResolveLossReport(w http.ResponseWriter, r *http.Request) {
	var req ResolveLossRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	report, err := h.Service.ResolveLossReport(r.Context(), chi.URLParam(r, "id"),
		recon.ReasonCode(req.ReasonCode), req.Notes, inventory.StaffID(req.ReviewerID))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLossReportDTO(*report))
}

// =============================================================================
// PRODUCT & DASHBOARD HANDLERS
// =============================================================================

// SaveProduct creates or updates a product.
func (h *Handler) SaveProduct(w http.ResponseWriter, r *http.Request) {
	var req SaveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p := inventory.Product{
		ID:       inventory.ProductID(req.ID),
		Name:     req.Name,
		Category: inventory.ProductCategory(req.Category),
		Unit:     inventory.ProductUnit(req.Unit),
		Active:   true,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	var err error
	if p.CostPrice, err = parseDecimalField(req.CostPrice, "cost_price"); err != nil {
		writeServiceError(w, err)
		return
	}
	if p.SalePrice, err = parseDecimalField(req.SalePrice, "sale_price"); err != nil {
		writeServiceError(w, err)
		return
	}
	if p.CurrentStock, err = parseDecimalField(req.CurrentStock, "current_stock"); err != nil {
		writeServiceError(w, err)
		return
	}
	if p.MinStockThreshold, err = parseDecimalField(req.MinStockThreshold, "min_stock_threshold"); err != nil {
		writeServiceError(w, err)
		return
	}

	saved, err := h.Service.SaveProduct(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(*saved))
}

// ListProducts lists products (?active=true limits to active).
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	products, err := h.Service.Products(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDashboard returns the manager dashboard.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.GetDashboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(*d))
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDecimalField(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, inventory.Invalid(field, "must be a decimal string")
	}
	return d, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps the domain error taxonomy to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case inventory.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case inventory.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case inventory.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
