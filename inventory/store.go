/*
store.go - Persistence interface for the catalog and the history log

PURPOSE:
  Defines the interface between the ledger engine and storage. The Store
  is deliberately dumb: it keeps products in catalog order and history
  newest-first, and never computes stock. Only the Ledger decides what
  stock values get written.

ORDERING CONTRACT:
  - ListProducts returns catalog (insertion) order.
  - SaveProduct on a new id appends; on an existing id it replaces in place.
  - ListHistory returns newest first. PrependHistory inserts at the head.
  - ReplaceHistory keeps the record's position.

ATOMICITY:
  Ledger operations touch up to two products and one history record and
  must be observed as one unit. TxStore.WithTx provides that: if fn
  returns an error every write made through the view is rolled back.

MISSING ROWS:
  GetProduct and GetHistory return (nil, nil) when the id is unknown.
  Delete* on an unknown id is not an error at this layer.

IMPLEMENTATIONS:
  - inventory/store/memory.go: In-memory, snapshot + rollback
  - store/sqlite/sqlite.go: SQLite, real SQL transactions
*/
package inventory

import "context"

// =============================================================================
// STORE - Interface for catalog and history persistence
// =============================================================================

type Store interface {
	// ListProducts returns every product in catalog order.
	ListProducts(ctx context.Context) ([]Product, error)

	// GetProduct returns nil, nil when the product does not exist.
	GetProduct(ctx context.Context, id ProductID) (*Product, error)

	// SaveProduct appends a new product or replaces an existing one in place.
	SaveProduct(ctx context.Context, p Product) error

	DeleteProduct(ctx context.Context, id ProductID) error

	// MaxProductID returns the largest product id, or 0 for an empty catalog.
	MaxProductID(ctx context.Context) (ProductID, error)

	// ListHistory returns every record, newest first.
	ListHistory(ctx context.Context) ([]HistoryItem, error)

	// GetHistory returns nil, nil when the record does not exist.
	GetHistory(ctx context.Context, id HistoryID) (*HistoryItem, error)

	// PrependHistory inserts a record at the head of the log.
	PrependHistory(ctx context.Context, h HistoryItem) error

	// ReplaceHistory overwrites a record's fields without moving it.
	ReplaceHistory(ctx context.Context, h HistoryItem) error

	DeleteHistory(ctx context.Context, id HistoryID) error

	// MaxHistoryID returns the largest history id, or 0 for an empty log.
	MaxHistoryID(ctx context.Context) (HistoryID, error)

	// Reset removes every product and record.
	Reset(ctx context.Context) error
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic ledger operations
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
