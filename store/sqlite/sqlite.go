/*
Package sqlite provides a SQLite-backed implementation of inventory.TxStore.

PURPOSE:
  Persists the catalog and the movement history so a server or the
  stockctl CLI can be restarted without losing state. The ledger engine
  never relies on durability; the same code runs against the in-memory
  store in tests.

KEY TABLES:
  products: Catalog entries. `position` fixes catalog order.
  history:  Movement records. `seq` fixes log order (newest = highest seq).

ORPHANS:
  history.product_id deliberately has NO foreign key. Deleting a product
  leaves its records in place with their denormalized product_name.

ORDERING:
  - SaveProduct on a new id takes position MAX(position)+1; an update
    keeps the row's position.
  - PrependHistory takes seq MAX(seq)+1; ReplaceHistory keeps the seq.

CONCURRENCY:
  A single connection is used so ":memory:" databases are shared by every
  query, and sync.RWMutex serializes writers against readers.

USAGE:
  store, err := sqlite.New("./data/stock.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := inventory.NewLedger(store)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - inventory/store.go: Interface definitions
  - inventory/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/stock-ledger/inventory"
)

// Store implements inventory.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One long-lived connection: each ":memory:" connection is its own database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		position INTEGER NOT NULL,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		stock INTEGER NOT NULL DEFAULT 0,
		safety_stock INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_products_position ON products(position);
	CREATE INDEX IF NOT EXISTS idx_products_code ON products(code);

	-- No foreign key on product_id: records outlive their product.
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY,
		seq INTEGER NOT NULL,
		tx_type TEXT NOT NULL CHECK (tx_type IN ('in', 'out')),
		date TEXT NOT NULL DEFAULT '',
		product_id INTEGER NOT NULL,
		product_name TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL,
		company TEXT NOT NULL DEFAULT '-'
	);

	CREATE INDEX IF NOT EXISTS idx_history_seq ON history(seq DESC);
	CREATE INDEX IF NOT EXISTS idx_history_product ON history(product_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *Store) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listProducts(ctx, s.db)
}

func (s *Store) GetProduct(ctx context.Context, id inventory.ProductID) (*inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProduct(ctx, s.db, id)
}

func (s *Store) SaveProduct(ctx context.Context, p inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveProduct(ctx, s.db, p)
}

func (s *Store) DeleteProduct(ctx context.Context, id inventory.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteProduct(ctx, s.db, id)
}

func (s *Store) MaxProductID(ctx context.Context) (inventory.ProductID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maxProductID(ctx, s.db)
}

func listProducts(ctx context.Context, q querier) ([]inventory.Product, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, code, name, category, stock, safety_stock
		FROM products
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []inventory.Product
	for rows.Next() {
		var p inventory.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.Stock, &p.SafetyStock); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func getProduct(ctx context.Context, q querier, id inventory.ProductID) (*inventory.Product, error) {
	var p inventory.Product
	err := q.QueryRowContext(ctx, `
		SELECT id, code, name, category, stock, safety_stock
		FROM products WHERE id = ?
	`, id).Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.Stock, &p.SafetyStock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func saveProduct(ctx context.Context, q querier, p inventory.Product) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO products (id, position, code, name, category, stock, safety_stock)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM products), ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			category = excluded.category,
			stock = excluded.stock,
			safety_stock = excluded.safety_stock
	`, p.ID, p.Code, p.Name, p.Category, p.Stock, p.SafetyStock)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func deleteProduct(ctx context.Context, q querier, id inventory.ProductID) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func maxProductID(ctx context.Context, q querier) (inventory.ProductID, error) {
	var max inventory.ProductID
	err := q.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM products").Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read max product id: %w", err)
	}
	return max, nil
}

// =============================================================================
// HISTORY
// =============================================================================

func (s *Store) ListHistory(ctx context.Context) ([]inventory.HistoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listHistory(ctx, s.db)
}

func (s *Store) GetHistory(ctx context.Context, id inventory.HistoryID) (*inventory.HistoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getHistory(ctx, s.db, id)
}

func (s *Store) PrependHistory(ctx context.Context, h inventory.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return prependHistory(ctx, s.db, h)
}

func (s *Store) ReplaceHistory(ctx context.Context, h inventory.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return replaceHistory(ctx, s.db, h)
}

func (s *Store) DeleteHistory(ctx context.Context, id inventory.HistoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteHistory(ctx, s.db, id)
}

func (s *Store) MaxHistoryID(ctx context.Context) (inventory.HistoryID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maxHistoryID(ctx, s.db)
}

const historyColumns = `id, tx_type, date, product_id, product_name, quantity, company`

func scanHistory(scan func(dest ...any) error) (inventory.HistoryItem, error) {
	var h inventory.HistoryItem
	var txType string
	if err := scan(&h.ID, &txType, &h.Date, &h.ProductID, &h.ProductName, &h.Quantity, &h.Company); err != nil {
		return inventory.HistoryItem{}, err
	}
	h.Type = inventory.TxType(txType)
	return h, nil
}

func listHistory(ctx context.Context, q querier) ([]inventory.HistoryItem, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+historyColumns+" FROM history ORDER BY seq DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var items []inventory.HistoryItem
	for rows.Next() {
		h, err := scanHistory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

func getHistory(ctx context.Context, q querier, id inventory.HistoryID) (*inventory.HistoryItem, error) {
	row := q.QueryRowContext(ctx, "SELECT "+historyColumns+" FROM history WHERE id = ?", id)
	h, err := scanHistory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return &h, nil
}

func prependHistory(ctx context.Context, q querier, h inventory.HistoryItem) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO history (id, seq, tx_type, date, product_id, product_name, quantity, company)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM history), ?, ?, ?, ?, ?, ?)
	`, h.ID, string(h.Type), h.Date, h.ProductID, h.ProductName, h.Quantity, h.Company)
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}
	return nil
}

func replaceHistory(ctx context.Context, q querier, h inventory.HistoryItem) error {
	_, err := q.ExecContext(ctx, `
		UPDATE history
		SET tx_type = ?, date = ?, product_id = ?, product_name = ?, quantity = ?, company = ?
		WHERE id = ?
	`, string(h.Type), h.Date, h.ProductID, h.ProductName, h.Quantity, h.Company, h.ID)
	if err != nil {
		return fmt.Errorf("failed to update history: %w", err)
	}
	return nil
}

func deleteHistory(ctx context.Context, q querier, id inventory.HistoryID) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM history WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

func maxHistoryID(ctx context.Context, q querier) (inventory.HistoryID, error) {
	var max inventory.HistoryID
	err := q.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM history").Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read max history id: %w", err)
	}
	return max, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return reset(ctx, s.db)
}

func reset(ctx context.Context, q querier) error {
	for _, table := range []string{"history", "products"} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// TRANSACTION SUPPORT
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store inventory.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore is the inventory.Store view over an open transaction.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	return listProducts(ctx, ts.tx)
}

func (ts *txStore) GetProduct(ctx context.Context, id inventory.ProductID) (*inventory.Product, error) {
	return getProduct(ctx, ts.tx, id)
}

func (ts *txStore) SaveProduct(ctx context.Context, p inventory.Product) error {
	return saveProduct(ctx, ts.tx, p)
}

func (ts *txStore) DeleteProduct(ctx context.Context, id inventory.ProductID) error {
	return deleteProduct(ctx, ts.tx, id)
}

func (ts *txStore) MaxProductID(ctx context.Context) (inventory.ProductID, error) {
	return maxProductID(ctx, ts.tx)
}

func (ts *txStore) ListHistory(ctx context.Context) ([]inventory.HistoryItem, error) {
	return listHistory(ctx, ts.tx)
}

func (ts *txStore) GetHistory(ctx context.Context, id inventory.HistoryID) (*inventory.HistoryItem, error) {
	return getHistory(ctx, ts.tx, id)
}

func (ts *txStore) PrependHistory(ctx context.Context, h inventory.HistoryItem) error {
	return prependHistory(ctx, ts.tx, h)
}

func (ts *txStore) ReplaceHistory(ctx context.Context, h inventory.HistoryItem) error {
	return replaceHistory(ctx, ts.tx, h)
}

func (ts *txStore) DeleteHistory(ctx context.Context, id inventory.HistoryID) error {
	return deleteHistory(ctx, ts.tx, id)
}

func (ts *txStore) MaxHistoryID(ctx context.Context) (inventory.HistoryID, error) {
	return maxHistoryID(ctx, ts.tx)
}

func (ts *txStore) Reset(ctx context.Context) error {
	return reset(ctx, ts.tx)
}
