/*
Package inventory provides the core stock-tracking types and the append-only
Stock Ledger.

PURPOSE:
  This package contains the domain vocabulary shared by every other part of
  the system: products, stock movements, sales records, and purchase orders.
  It has no knowledge of shifts or reconciliation - those live in the bar
  and recon packages and consume these types.

KEY CONCEPTS IN THIS FILE (types.go):
  - Quantity/Money: decimal values (no floating-point drift in stock math)
  - Product: the unit of stock being tracked, with an authoritative
    current_stock running total
  - StockMovement: an immutable IN/OUT ledger entry
  - SalesRecord: an immutable sale attributed to a shift
  - PurchaseOrder: draft -> ordered -> received (or cancelled); only the
    transition into received affects stock

DESIGN PRINCIPLES:
  1. Immutability: movements and sales are never modified once recorded
  2. Precision: decimal.Decimal everywhere quantities or money appear
  3. Type Safety: strong ID types prevent mixing products/staff/shifts
  4. Explicit identity: every write carries the staff member who made it

SEE ALSO:
  - ledger.go: the append-only movement ledger
  - errors.go: the error taxonomy shared across packages
*/
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// QUANTITY & MONEY - Decimal values
// =============================================================================

// Quantity is a stock amount (bottles, pints, ml...). Decimal, never float.
type Quantity = decimal.Decimal

// Money is a currency amount. Decimal, never float.
type Money = decimal.Decimal

// Epsilon is the default tolerance for zero/equality checks on quantities.
// The classifier's default threshold configuration starts from it; per
// deployment overrides may widen it.
var Epsilon = decimal.New(1, -6) // 1e-6

// Qty builds a Quantity from a float for literals and tests.
func Qty(v float64) Quantity { return decimal.NewFromFloat(v) }

// QtyInt builds a Quantity from an integer.
func QtyInt(v int) Quantity { return decimal.NewFromInt(int64(v)) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProductID string
type StaffID string
type ShiftID string
type OrderID string
type SupplierID string

// =============================================================================
// PRODUCT - The unit of stock being tracked
// =============================================================================

type ProductCategory string

const (
	CategorySpirits   ProductCategory = "spirits"
	CategoryRum       ProductCategory = "rum"
	CategoryBeer      ProductCategory = "beer"
	CategoryWine      ProductCategory = "wine"
	CategoryMixers    ProductCategory = "mixers"
	CategoryCocktails ProductCategory = "cocktails"
	CategoryOther     ProductCategory = "other"
)

type ProductUnit string

const (
	UnitBottle ProductUnit = "bottle"
	UnitML     ProductUnit = "ml"
	UnitPint   ProductUnit = "pint"
	UnitCan    ProductUnit = "can"
	UnitKeg    ProductUnit = "keg"
)

// Product is the stock-keeping unit. CurrentStock is the authoritative
// running total; it is adjusted incrementally by movements and receipts,
// and corrected to the counted value when a shift closes.
type Product struct {
	ID                ProductID
	Name              string
	Category          ProductCategory
	Unit              ProductUnit
	CostPrice         Money
	SalePrice         Money
	CurrentStock      Quantity
	MinStockThreshold Quantity
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LowStock reports whether the product is at or below its reorder threshold.
func (p Product) LowStock() bool {
	return p.CurrentStock.LessThanOrEqual(p.MinStockThreshold)
}

// StockValue is CurrentStock x CostPrice.
func (p Product) StockValue() Money {
	return p.CurrentStock.Mul(p.CostPrice)
}

// =============================================================================
// STOCK MOVEMENT - Immutable IN/OUT ledger entry
// =============================================================================

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

type MovementReason string

const (
	ReasonDelivery   MovementReason = "delivery"
	ReasonWastage    MovementReason = "wastage"
	ReasonBreakage   MovementReason = "breakage"
	ReasonTheft      MovementReason = "theft"
	ReasonAdjustment MovementReason = "adjustment"
	ReasonReturn     MovementReason = "return"
	ReasonOther      MovementReason = "other"
)

// ValidMovementReasons lists every accepted reason, for input validation.
var ValidMovementReasons = []MovementReason{
	ReasonDelivery, ReasonWastage, ReasonBreakage, ReasonTheft,
	ReasonAdjustment, ReasonReturn, ReasonOther,
}

// StockMovement is one immutable entry in the stock ledger.
// Quantity is always positive; direction comes from Type.
type StockMovement struct {
	ID        string
	ProductID ProductID
	StaffID   StaffID
	Type      MovementType
	Reason    MovementReason
	Quantity  Quantity
	Notes     string
	CreatedAt time.Time
}

// SignedQuantity returns +Quantity for IN and -Quantity for OUT.
func (m StockMovement) SignedQuantity() Quantity {
	if m.Type == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// =============================================================================
// SALES RECORD - Immutable sale attributed to a shift
// =============================================================================

// SalesRecord attributes a sale to the shift it was recorded against.
// Reconciliation scopes sales by ShiftID, not by timestamp, so clock skew
// cannot move a sale between shifts.
type SalesRecord struct {
	ID           string
	ProductID    ProductID
	ShiftID      ShiftID
	QuantitySold Quantity
	SaleAmount   Money
	CreatedAt    time.Time
}

// =============================================================================
// PURCHASE ORDER - draft -> ordered -> received (or cancelled)
// =============================================================================

type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderOrdered   OrderStatus = "ordered"
	OrderReceived  OrderStatus = "received"
	OrderCancelled OrderStatus = "cancelled"
)

// PurchaseOrder groups line items ordered from a supplier. Only the
// transition into received is stock-affecting, and it must apply exactly
// once: the status change and the stock application commit together.
type PurchaseOrder struct {
	ID         OrderID
	SupplierID SupplierID
	Status     OrderStatus
	TotalCost  Money
	Notes      string
	Items      []PurchaseOrderItem
	OrderedAt  *time.Time
	ReceivedAt *time.Time
	CreatedAt  time.Time
}

type PurchaseOrderItem struct {
	ID        string
	OrderID   OrderID
	ProductID ProductID
	Quantity  Quantity
	UnitCost  Money
	TotalCost Money
}
