// Package store provides MovementStore implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tapline/inventory-engine/inventory"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	movements map[inventory.ProductID][]inventory.StockMovement
}

func NewMemory() *Memory {
	return &Memory{
		movements: make(map[inventory.ProductID][]inventory.StockMovement),
	}
}

// AppendMovement adds a single movement. Append-only.
func (m *Memory) AppendMovement(_ context.Context, mv inventory.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(mv)
	return nil
}

// AppendMovements adds multiple movements atomically.
func (m *Memory) AppendMovements(_ context.Context, mvs []inventory.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mv := range mvs {
		m.appendLocked(mv)
	}
	return nil
}

func (m *Memory) appendLocked(mv inventory.StockMovement) {
	ms := m.movements[mv.ProductID]

	// Binary search for insertion point keeps the slice chronological.
	i := sort.Search(len(ms), func(i int) bool {
		return ms[i].CreatedAt.After(mv.CreatedAt)
	})

	ms = append(ms, inventory.StockMovement{})
	copy(ms[i+1:], ms[i:])
	ms[i] = mv
	m.movements[mv.ProductID] = ms
}

func (m *Memory) Movements(_ context.Context, productID inventory.ProductID) ([]inventory.StockMovement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]inventory.StockMovement, len(m.movements[productID]))
	copy(result, m.movements[productID])
	return result, nil
}

func (m *Memory) MovementsInRange(_ context.Context, productID inventory.ProductID, from, to time.Time) ([]inventory.StockMovement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []inventory.StockMovement
	for _, mv := range m.movements[productID] {
		if !mv.CreatedAt.Before(from) && !mv.CreatedAt.After(to) {
			result = append(result, mv)
		}
	}
	return result, nil
}
