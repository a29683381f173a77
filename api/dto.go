/*
dto.go - Request and response data structures

PURPOSE:
  JSON shapes exchanged with clients. Quantities and money travel as JSON
  strings (decimal text), never floats, so nothing is rounded on the wire.

CONVENTIONS:
  - Dates/timestamps: RFC3339
  - Quantities/money: decimal strings ("11.00", "42.5")
  - Nullable fields: pointers, omitted when nil

SEE ALSO:
  - handlers.go: where these are populated
*/
package api

import (
	"time"

	"github.com/tapline/inventory-engine/bar"
	"github.com/tapline/inventory-engine/inventory"
	"github.com/tapline/inventory-engine/recon"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// PRODUCTS
// =============================================================================

type ProductDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	Unit              string `json:"unit"`
	CostPrice         string `json:"cost_price"`
	SalePrice         string `json:"sale_price"`
	CurrentStock      string `json:"current_stock"`
	MinStockThreshold string `json:"min_stock_threshold"`
	Active            bool   `json:"active"`
	LowStock          bool   `json:"low_stock"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type SaveProductRequest struct {
	ID                string `json:"id,omitempty"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	Unit              string `json:"unit"`
	CostPrice         string `json:"cost_price"`
	SalePrice         string `json:"sale_price"`
	CurrentStock      string `json:"current_stock"`
	MinStockThreshold string `json:"min_stock_threshold"`
	Active            *bool  `json:"active,omitempty"`
}

func toProductDTO(p inventory.Product) ProductDTO {
	return ProductDTO{
		ID:                string(p.ID),
		Name:              p.Name,
		Category:          string(p.Category),
		Unit:              string(p.Unit),
		CostPrice:         p.CostPrice.String(),
		SalePrice:         p.SalePrice.String(),
		CurrentStock:      p.CurrentStock.String(),
		MinStockThreshold: p.MinStockThreshold.String(),
		Active:            p.Active,
		LowStock:          p.LowStock(),
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// SHIFTS
// =============================================================================

type CountEntryDTO struct {
	ProductID string `json:"product_id"`
	Count     string `json:"count"`
}

type OpenShiftRequest struct {
	StaffID     string          `json:"staff_id"`
	StockCounts []CountEntryDTO `json:"stock_counts"`
	Notes       string          `json:"notes,omitempty"`
}

type CloseShiftRequest struct {
	StockCounts []CountEntryDTO `json:"stock_counts"`
	Notes       string          `json:"notes,omitempty"`
}

type StockCountDTO struct {
	ProductID    string  `json:"product_id"`
	OpeningCount string  `json:"opening_count"`
	ClosingCount *string `json:"closing_count,omitempty"`
}

type ShiftDTO struct {
	ID          string          `json:"id"`
	StaffID     string          `json:"staff_id"`
	StartTime   string          `json:"start_time"`
	EndTime     *string         `json:"end_time,omitempty"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	StockCounts []StockCountDTO `json:"stock_counts"`
}

type CloseShiftResponse struct {
	Shift           ShiftDTO            `json:"shift"`
	Reconciliations []ReconciliationDTO `json:"reconciliations"`
	LossReports     []LossReportDTO     `json:"loss_reports"`
}

func toShiftDTO(s bar.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:          string(s.ID),
		StaffID:     string(s.StaffID),
		StartTime:   s.StartTime.Format(time.RFC3339),
		Status:      string(s.Status),
		Notes:       s.Notes,
		StockCounts: []StockCountDTO{},
	}
	if s.EndTime != nil {
		v := s.EndTime.Format(time.RFC3339)
		dto.EndTime = &v
	}
	for _, sc := range s.StockCounts {
		entry := StockCountDTO{
			ProductID:    string(sc.ProductID),
			OpeningCount: sc.OpeningCount.String(),
		}
		if sc.ClosingCount != nil {
			v := sc.ClosingCount.String()
			entry.ClosingCount = &v
		}
		dto.StockCounts = append(dto.StockCounts, entry)
	}
	return dto
}

// =============================================================================
// SALES & MOVEMENTS
// =============================================================================

type SaleEntryDTO struct {
	ProductID    string `json:"product_id"`
	QuantitySold string `json:"quantity_sold"`
	SaleAmount   string `json:"sale_amount"`
}

type RecordSalesRequest struct {
	ShiftID string         `json:"shift_id"`
	Records []SaleEntryDTO `json:"records"`
}

type SalesRecordDTO struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	ShiftID      string `json:"shift_id"`
	QuantitySold string `json:"quantity_sold"`
	SaleAmount   string `json:"sale_amount"`
	CreatedAt    string `json:"created_at"`
}

func toSalesRecordDTO(r inventory.SalesRecord) SalesRecordDTO {
	return SalesRecordDTO{
		ID:           r.ID,
		ProductID:    string(r.ProductID),
		ShiftID:      string(r.ShiftID),
		QuantitySold: r.QuantitySold.String(),
		SaleAmount:   r.SaleAmount.String(),
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

type RecordMovementRequest struct {
	ProductID string `json:"product_id"`
	StaffID   string `json:"staff_id"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Quantity  string `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
}

type MovementDTO struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	StaffID   string `json:"staff_id"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Quantity  string `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toMovementDTO(m inventory.StockMovement) MovementDTO {
	return MovementDTO{
		ID:        m.ID,
		ProductID: string(m.ProductID),
		StaffID:   string(m.StaffID),
		Type:      string(m.Type),
		Reason:    string(m.Reason),
		Quantity:  m.Quantity.String(),
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// PURCHASE ORDERS
// =============================================================================

type OrderItemDTO struct {
	ID        string `json:"id,omitempty"`
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity"`
	UnitCost  string `json:"unit_cost"`
	TotalCost string `json:"total_cost,omitempty"`
}

type CreateOrderRequest struct {
	SupplierID string         `json:"supplier_id"`
	Items      []OrderItemDTO `json:"items"`
	Notes      string         `json:"notes,omitempty"`
}

type PurchaseOrderDTO struct {
	ID         string         `json:"id"`
	SupplierID string         `json:"supplier_id"`
	Status     string         `json:"status"`
	TotalCost  string         `json:"total_cost"`
	Notes      string         `json:"notes,omitempty"`
	Items      []OrderItemDTO `json:"items"`
	OrderedAt  *string        `json:"ordered_at,omitempty"`
	ReceivedAt *string        `json:"received_at,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

func toOrderDTO(po inventory.PurchaseOrder) PurchaseOrderDTO {
	dto := PurchaseOrderDTO{
		ID:         string(po.ID),
		SupplierID: string(po.SupplierID),
		Status:     string(po.Status),
		TotalCost:  po.TotalCost.String(),
		Notes:      po.Notes,
		Items:      []OrderItemDTO{},
		CreatedAt:  po.CreatedAt.Format(time.RFC3339),
	}
	if po.OrderedAt != nil {
		v := po.OrderedAt.Format(time.RFC3339)
		dto.OrderedAt = &v
	}
	if po.ReceivedAt != nil {
		v := po.ReceivedAt.Format(time.RFC3339)
		dto.ReceivedAt = &v
	}
	for _, item := range po.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        item.ID,
			ProductID: string(item.ProductID),
			Quantity:  item.Quantity.String(),
			UnitCost:  item.UnitCost.String(),
			TotalCost: item.TotalCost.String(),
		})
	}
	return dto
}

// =============================================================================
// RECONCILIATION & LOSS
// =============================================================================

type ReconciliationDTO struct {
	ID              string `json:"id"`
	ShiftID         string `json:"shift_id"`
	ProductID       string `json:"product_id"`
	OpeningStock    string `json:"opening_stock"`
	Received        string `json:"received"`
	Sold            string `json:"sold"`
	Consumed        string `json:"consumed"`
	ExpectedClosing string `json:"expected_closing"`
	ActualClosing   string `json:"actual_closing"`
	Discrepancy     string `json:"discrepancy"`
	CreatedAt       string `json:"created_at"`
}

func toReconciliationDTO(r recon.Reconciliation) ReconciliationDTO {
	return ReconciliationDTO{
		ID:              r.ID,
		ShiftID:         string(r.ShiftID),
		ProductID:       string(r.ProductID),
		OpeningStock:    r.OpeningStock.String(),
		Received:        r.Received.String(),
		Sold:            r.Sold.String(),
		Consumed:        r.Consumed.String(),
		ExpectedClosing: r.ExpectedClosing.String(),
		ActualClosing:   r.ActualClosing.String(),
		Discrepancy:     r.Discrepancy.String(),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}

type LossReportDTO struct {
	ID                  string  `json:"id"`
	ReconciliationID    string  `json:"reconciliation_id"`
	ProductID           string  `json:"product_id"`
	ShiftID             string  `json:"shift_id"`
	DiscrepancyQuantity string  `json:"discrepancy_quantity"`
	LossValue           string  `json:"loss_value"`
	Severity            string  `json:"severity"`
	ReasonCode          string  `json:"reason_code,omitempty"`
	ReviewedBy          string  `json:"reviewed_by,omitempty"`
	ReviewedAt          *string `json:"reviewed_at,omitempty"`
	Notes               string  `json:"notes,omitempty"`
	Resolved            bool    `json:"resolved"`
	CreatedAt           string  `json:"created_at"`
}

func toLossReportDTO(r recon.LossReport) LossReportDTO {
	dto := LossReportDTO{
		ID:                  r.ID,
		ReconciliationID:    r.ReconciliationID,
		ProductID:           string(r.ProductID),
		ShiftID:             string(r.ShiftID),
		DiscrepancyQuantity: r.DiscrepancyQuantity.String(),
		LossValue:           r.LossValue.String(),
		Severity:            string(r.Severity),
		ReasonCode:          string(r.ReasonCode),
		ReviewedBy:          string(r.ReviewedBy),
		Notes:               r.Notes,
		Resolved:            r.Resolved(),
		CreatedAt:           r.CreatedAt.Format(time.RFC3339),
	}
	if r.ReviewedAt != nil {
		v := r.ReviewedAt.Format(time.RFC3339)
		dto.ReviewedAt = &v
	}
	return dto
}

type ResolveLossRequest struct {
	ReasonCode string `json:"reason_code"`
	Notes      string `json:"notes,omitempty"`
	ReviewerID string `json:"reviewer_id"`
}

type ProductLossDTO struct {
	ProductID string `json:"product_id"`
	TotalLoss string `json:"total_loss"`
	Incidents int    `json:"incidents"`
}

type LossSummaryDTO struct {
	WindowDays      int              `json:"window_days"`
	TotalLossValue  string           `json:"total_loss_value"`
	TotalIncidents  int              `json:"total_incidents"`
	CriticalCount   int              `json:"critical_count"`
	WarningCount    int              `json:"warning_count"`
	InfoCount       int              `json:"info_count"`
	UnresolvedCount int              `json:"unresolved_count"`
	TopLossProducts []ProductLossDTO `json:"top_loss_products"`
}

func toLossSummaryDTO(s recon.LossSummary) LossSummaryDTO {
	dto := LossSummaryDTO{
		WindowDays:      s.WindowDays,
		TotalLossValue:  s.TotalLossValue.String(),
		TotalIncidents:  s.TotalIncidents,
		CriticalCount:   s.CriticalCount,
		WarningCount:    s.WarningCount,
		InfoCount:       s.InfoCount,
		UnresolvedCount: s.UnresolvedCount,
		TopLossProducts: []ProductLossDTO{},
	}
	for _, p := range s.TopLossProducts {
		dto.TopLossProducts = append(dto.TopLossProducts, ProductLossDTO{
			ProductID: string(p.ProductID),
			TotalLoss: p.TotalLoss.String(),
			Incidents: p.Incidents,
		})
	}
	return dto
}

// =============================================================================
// DASHBOARD
// =============================================================================

type LossTrendPointDTO struct {
	Date      string `json:"date"`
	TotalLoss string `json:"total_loss"`
	Incidents int    `json:"incidents"`
}

type DashboardDTO struct {
	TotalProducts      int                 `json:"total_products"`
	TotalStockValue    string              `json:"total_stock_value"`
	ActiveShifts       int                 `json:"active_shifts"`
	MonthlyRevenue     string              `json:"monthly_revenue"`
	TodayLossValue     string              `json:"today_loss_value"`
	TodayLossIncidents int                 `json:"today_loss_incidents"`
	UnresolvedAlerts   int                 `json:"unresolved_alerts"`
	LowStockProducts   []ProductDTO        `json:"low_stock_products"`
	LossTrend          []LossTrendPointDTO `json:"loss_trend"`
}

func toDashboardDTO(d bar.Dashboard) DashboardDTO {
	dto := DashboardDTO{
		TotalProducts:      d.TotalProducts,
		TotalStockValue:    d.TotalStockValue.String(),
		ActiveShifts:       d.ActiveShifts,
		MonthlyRevenue:     d.MonthlyRevenue.String(),
		TodayLossValue:     d.TodayLossValue.String(),
		TodayLossIncidents: d.TodayLossIncidents,
		UnresolvedAlerts:   d.UnresolvedAlerts,
		LowStockProducts:   []ProductDTO{},
		LossTrend:          []LossTrendPointDTO{},
	}
	for _, p := range d.LowStockProducts {
		dto.LowStockProducts = append(dto.LowStockProducts, toProductDTO(p))
	}
	for _, pt := range d.LossTrend {
		dto.LossTrend = append(dto.LossTrend, LossTrendPointDTO{
			Date:      pt.Date,
			TotalLoss: pt.TotalLoss.String(),
			Incidents: pt.Incidents,
		})
	}
	return dto
}
