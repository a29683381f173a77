/*
store.go - Persistence interface for the stock ledger

PURPOSE:
  Defines the interface between the ledger and the database. Different
  implementations can use SQLite or in-memory storage.

APPEND-ONLY CONTRACT:
  The MovementStore interface enforces append-only semantics:
  - AppendMovement(): single movement write
  - AppendMovements(): atomic multi-movement write
  - NO update or delete methods exist
  Corrections are recorded as adjustment movements, never edits.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store (also implements bar.Store)
  - inventory/store: in-memory store for tests and development

SEE ALSO:
  - ledger.go: higher-level interface using MovementStore
*/
package inventory

import (
	"context"
	"time"
)

// MovementStore handles persistence of stock movements.
// IMPORTANT: append-only. No update, no delete.
type MovementStore interface {
	// AppendMovement persists a single movement.
	AppendMovement(ctx context.Context, m StockMovement) error

	// AppendMovements persists multiple movements atomically.
	// Either all succeed or none do.
	AppendMovements(ctx context.Context, ms []StockMovement) error

	// Movements returns all movements for a product, chronologically.
	Movements(ctx context.Context, productID ProductID) ([]StockMovement, error)

	// MovementsInRange returns a product's movements with
	// CreatedAt in [from, to], chronologically.
	MovementsInRange(ctx context.Context, productID ProductID, from, to time.Time) ([]StockMovement, error)
}
