/*
Package inventory provides the stock ledger engine.

PURPOSE:
  This package keeps a catalog of products and a mutable log of stock
  movements consistent with each other. Product stock is a derived value:
  every inbound or outbound record that references a product has moved its
  stock by exactly its signed delta, and editing or deleting a record undoes
  that movement before anything else happens.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product: A catalog entry with current stock and a safety threshold
  - HistoryItem: One recorded inbound/outbound movement
  - Movement: The caller-supplied fields for recording or editing a movement
  - ProductDraft: The caller-supplied fields for creating or editing a product
  - ProductRow: One accepted row of a CSV import

INVARIANT:
  For every product:
    stock == initialStock + Σ delta(history items referencing it)
  where delta(inbound) = +quantity and delta(outbound) = -quantity.

ORPHANS:
  Deleting a product never deletes its history. Those records keep the
  last-known product name and are skipped by reversal logic.

USAGE:
  ledger := inventory.NewLedger(store.NewTxMemory())
  item, err := ledger.Record(ctx, inventory.Movement{
      Type:      inventory.TxInbound,
      ProductID: 1,
      Quantity:  10,
      Date:      "2023-10-27",
  })

SEE ALSO:
  - ledger.go: Record, Edit, DeleteTransaction, DeleteProduct, Merge
  - query.go: Filter and sort views over the catalog
  - store.go: Persistence interface
*/
package inventory

import (
	"fmt"
	"strings"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ProductID identifies a catalog entry. Zero is a valid identifier.
type ProductID int64

// HistoryID identifies a history record. Zero is a valid identifier.
type HistoryID int64

// =============================================================================
// TRANSACTION TYPE
// =============================================================================

type TxType string

const (
	TxInbound  TxType = "in"  // Goods received, stock goes up
	TxOutbound TxType = "out" // Goods shipped, stock goes down
)

// ParseTxType accepts the wire values plus a few human spellings.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "inbound", "입고":
		return TxInbound, nil
	case "out", "outbound", "출고":
		return TxOutbound, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTxType, s)
}

// Sign returns +1 for inbound and -1 for outbound.
func (t TxType) Sign() int {
	if t == TxOutbound {
		return -1
	}
	return 1
}

func (t TxType) Valid() bool { return t == TxInbound || t == TxOutbound }

// =============================================================================
// PRODUCT
// =============================================================================

type Product struct {
	ID          ProductID
	Code        string // natural key, matched by CSV imports
	Name        string
	Category    string
	Stock       int // signed, never clamped
	SafetyStock int // reorder threshold
}

// IsLow reports whether stock is strictly below the safety threshold.
func (p Product) IsLow() bool { return p.Stock < p.SafetyStock }

type StockStatus string

const (
	StatusLow    StockStatus = "low"
	StatusNormal StockStatus = "normal"
)

func (p Product) Status() StockStatus {
	if p.IsLow() {
		return StatusLow
	}
	return StatusNormal
}

// =============================================================================
// HISTORY ITEM
// =============================================================================

// DefaultCompany is stored when a movement has no counterparty.
const DefaultCompany = "-"

type HistoryItem struct {
	ID          HistoryID
	Type        TxType
	Date        string // free text, not validated
	ProductID   ProductID
	ProductName string // snapshot at record/edit time, not kept in sync
	Quantity    int
	Company     string
}

// Delta is the signed stock change this record applies.
func (h HistoryItem) Delta() int { return h.Type.Sign() * h.Quantity }

// =============================================================================
// INPUTS
// =============================================================================

// Movement carries the fields of a record or edit request.
type Movement struct {
	Type      TxType
	ProductID ProductID
	Quantity  int
	Date      string
	Company   string
}

func (m Movement) delta() int { return m.Type.Sign() * m.Quantity }

func (m Movement) company() string {
	if strings.TrimSpace(m.Company) == "" {
		return DefaultCompany
	}
	return m.Company
}

// ProductDraft carries the fields of a create or edit product request.
// Editing is explicit so that ID 0 can be edited like any other id.
type ProductDraft struct {
	Editing     bool
	ID          ProductID
	Code        string
	Name        string
	Category    string
	Stock       int
	SafetyStock int
}

// ProductRow is one validated import row, matched to the catalog by Code.
type ProductRow struct {
	Code        string
	Name        string
	Category    string
	Stock       int
	SafetyStock int
}

// Snapshot is the complete ledger state, used for seeding and tests.
type Snapshot struct {
	Products []Product
	History  []HistoryItem // newest first
}
