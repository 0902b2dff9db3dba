// Package store provides Store implementations.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/warp/stock-ledger/inventory"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	products []inventory.Product     // catalog order
	history  []inventory.HistoryItem // newest first
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ListProducts(_ context.Context) ([]inventory.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.products), nil
}

func (m *Memory) GetProduct(_ context.Context, id inventory.ProductID) (*inventory.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getProductLocked(id), nil
}

func (m *Memory) SaveProduct(_ context.Context, p inventory.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveProductLocked(p)
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id inventory.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteProductLocked(id)
	return nil
}

func (m *Memory) MaxProductID(_ context.Context) (inventory.ProductID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxProductIDLocked(), nil
}

func (m *Memory) ListHistory(_ context.Context) ([]inventory.HistoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.history), nil
}

func (m *Memory) GetHistory(_ context.Context, id inventory.HistoryID) (*inventory.HistoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getHistoryLocked(id), nil
}

func (m *Memory) PrependHistory(_ context.Context, h inventory.HistoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prependHistoryLocked(h)
	return nil
}

func (m *Memory) ReplaceHistory(_ context.Context, h inventory.HistoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceHistoryLocked(h)
	return nil
}

func (m *Memory) DeleteHistory(_ context.Context, id inventory.HistoryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteHistoryLocked(id)
	return nil
}

func (m *Memory) MaxHistoryID(_ context.Context) (inventory.HistoryID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxHistoryIDLocked(), nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = nil
	m.history = nil
	return nil
}

// =============================================================================
// LOCKED HELPERS - Caller holds mu
// =============================================================================

func (m *Memory) productIndex(id inventory.ProductID) int {
	return slices.IndexFunc(m.products, func(p inventory.Product) bool { return p.ID == id })
}

func (m *Memory) historyIndex(id inventory.HistoryID) int {
	return slices.IndexFunc(m.history, func(h inventory.HistoryItem) bool { return h.ID == id })
}

func (m *Memory) getProductLocked(id inventory.ProductID) *inventory.Product {
	i := m.productIndex(id)
	if i < 0 {
		return nil
	}
	p := m.products[i]
	return &p
}

func (m *Memory) saveProductLocked(p inventory.Product) {
	if i := m.productIndex(p.ID); i >= 0 {
		m.products[i] = p
		return
	}
	m.products = append(m.products, p)
}

func (m *Memory) deleteProductLocked(id inventory.ProductID) {
	if i := m.productIndex(id); i >= 0 {
		m.products = slices.Delete(m.products, i, i+1)
	}
}

func (m *Memory) maxProductIDLocked() inventory.ProductID {
	var max inventory.ProductID
	for _, p := range m.products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max
}

func (m *Memory) getHistoryLocked(id inventory.HistoryID) *inventory.HistoryItem {
	i := m.historyIndex(id)
	if i < 0 {
		return nil
	}
	h := m.history[i]
	return &h
}

func (m *Memory) prependHistoryLocked(h inventory.HistoryItem) {
	m.history = slices.Insert(m.history, 0, h)
}

func (m *Memory) replaceHistoryLocked(h inventory.HistoryItem) {
	if i := m.historyIndex(h.ID); i >= 0 {
		m.history[i] = h
	}
}

func (m *Memory) deleteHistoryLocked(id inventory.HistoryID) {
	if i := m.historyIndex(id); i >= 0 {
		m.history = slices.Delete(m.history, i, i+1)
	}
}

func (m *Memory) maxHistoryIDLocked() inventory.HistoryID {
	var max inventory.HistoryID
	for _, h := range m.history {
		if h.ID > max {
			max = h.ID
		}
	}
	return max
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(_ context.Context, fn func(inventory.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()

	if err := fn(&txMemoryView{parent: tm}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	return memorySnapshot{
		products: slices.Clone(tm.products),
		history:  slices.Clone(tm.history),
	}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.products = s.products
	tm.history = s.history
}

type memorySnapshot struct {
	products []inventory.Product
	history  []inventory.HistoryItem
}

// txMemoryView runs against the parent with its lock already held.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) ListProducts(_ context.Context) ([]inventory.Product, error) {
	return slices.Clone(tv.parent.products), nil
}

func (tv *txMemoryView) GetProduct(_ context.Context, id inventory.ProductID) (*inventory.Product, error) {
	return tv.parent.getProductLocked(id), nil
}

func (tv *txMemoryView) SaveProduct(_ context.Context, p inventory.Product) error {
	tv.parent.saveProductLocked(p)
	return nil
}

func (tv *txMemoryView) DeleteProduct(_ context.Context, id inventory.ProductID) error {
	tv.parent.deleteProductLocked(id)
	return nil
}

func (tv *txMemoryView) MaxProductID(_ context.Context) (inventory.ProductID, error) {
	return tv.parent.maxProductIDLocked(), nil
}

func (tv *txMemoryView) ListHistory(_ context.Context) ([]inventory.HistoryItem, error) {
	return slices.Clone(tv.parent.history), nil
}

func (tv *txMemoryView) GetHistory(_ context.Context, id inventory.HistoryID) (*inventory.HistoryItem, error) {
	return tv.parent.getHistoryLocked(id), nil
}

func (tv *txMemoryView) PrependHistory(_ context.Context, h inventory.HistoryItem) error {
	tv.parent.prependHistoryLocked(h)
	return nil
}

func (tv *txMemoryView) ReplaceHistory(_ context.Context, h inventory.HistoryItem) error {
	tv.parent.replaceHistoryLocked(h)
	return nil
}

func (tv *txMemoryView) DeleteHistory(_ context.Context, id inventory.HistoryID) error {
	tv.parent.deleteHistoryLocked(id)
	return nil
}

func (tv *txMemoryView) MaxHistoryID(_ context.Context) (inventory.HistoryID, error) {
	return tv.parent.maxHistoryIDLocked(), nil
}

func (tv *txMemoryView) Reset(_ context.Context) error {
	tv.parent.products = nil
	tv.parent.history = nil
	return nil
}
