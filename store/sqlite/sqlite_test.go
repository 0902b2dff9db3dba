package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// STORE CONTRACT
// =============================================================================

func TestStore_ProductsKeepCatalogOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProduct(ctx, inventory.Product{ID: 5, Code: "E", Name: "Five", Stock: 1}))
	require.NoError(t, s.SaveProduct(ctx, inventory.Product{ID: 0, Code: "Z", Name: "Zero", Stock: 2}))
	require.NoError(t, s.SaveProduct(ctx, inventory.Product{ID: 5, Code: "E", Name: "Five v2", Stock: 9, SafetyStock: 3}))

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, inventory.Product{ID: 5, Code: "E", Name: "Five v2", Stock: 9, SafetyStock: 3}, products[0])
	assert.Equal(t, inventory.ProductID(0), products[1].ID)

	max, err := s.MaxProductID(ctx)
	require.NoError(t, err)
	assert.Equal(t, inventory.ProductID(5), max)

	missing, err := s.GetProduct(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.DeleteProduct(ctx, 5))
	products, err = s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestStore_HistoryNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := inventory.HistoryItem{ID: 1, Type: inventory.TxInbound, Date: "2023-10-25", ProductID: 1, ProductName: "A", Quantity: 3, Company: "-"}
	second := inventory.HistoryItem{ID: 2, Type: inventory.TxOutbound, Date: "2023-10-26", ProductID: 7, ProductName: "Gone", Quantity: 1, Company: "ACME"}
	require.NoError(t, s.PrependHistory(ctx, first))
	require.NoError(t, s.PrependHistory(ctx, second))

	first.Quantity = 8
	require.NoError(t, s.ReplaceHistory(ctx, first))

	history, err := s.ListHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []inventory.HistoryItem{second, first}, history)

	got, err := s.GetHistory(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Gone", got.ProductName)

	require.NoError(t, s.DeleteHistory(ctx, 2))
	max, err := s.MaxHistoryID(ctx)
	require.NoError(t, err)
	assert.Equal(t, inventory.HistoryID(1), max)
}

func TestStore_WithTxRollsBack(t *testing.T) {
	// GIVEN: A stored product
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveProduct(ctx, inventory.Product{ID: 1, Code: "A", Name: "A", Stock: 10}))

	// WHEN: A transaction updates it and then fails
	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx inventory.Store) error {
		require.NoError(t, tx.SaveProduct(ctx, inventory.Product{ID: 1, Code: "A", Name: "A", Stock: 99}))
		return boom
	})

	// THEN: The update is gone
	require.ErrorIs(t, err, boom)
	p, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)
}

// =============================================================================
// LEDGER OVER SQLITE
// =============================================================================

func TestLedger_OverSQLite(t *testing.T) {
	// GIVEN: A=50, B=20 in a SQLite-backed ledger
	ledger := inventory.NewLedger(newTestStore(t))
	ctx := context.Background()
	require.NoError(t, ledger.Load(ctx, inventory.Snapshot{Products: []inventory.Product{
		{ID: 1, Code: "A", Name: "A", Stock: 50, SafetyStock: 10},
		{ID: 2, Code: "B", Name: "B", Stock: 20, SafetyStock: 10},
	}}))

	// WHEN: Recording on A and reassigning to B
	item, err := ledger.Record(ctx, inventory.Movement{Type: inventory.TxInbound, ProductID: 1, Quantity: 5, Date: "2023-10-27"})
	require.NoError(t, err)
	_, err = ledger.Edit(ctx, item.ID, inventory.Movement{Type: inventory.TxOutbound, ProductID: 2, Quantity: 5, Date: "2023-10-27"})
	require.NoError(t, err)

	// THEN: A=50, B=15
	a, err := ledger.Product(ctx, 1)
	require.NoError(t, err)
	b, err := ledger.Product(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 50, a.Stock)
	assert.Equal(t, 15, b.Stock)

	// A failed record leaves nothing behind
	_, err = ledger.Record(ctx, inventory.Movement{Type: inventory.TxInbound, ProductID: 9, Quantity: 1})
	require.ErrorIs(t, err, inventory.ErrProductNotFound)
	history, err := ledger.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.db")
	ctx := context.Background()

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveProduct(ctx, inventory.Product{ID: 1, Code: "A", Name: "A", Stock: 7}))
	require.NoError(t, s.Close())

	s, err = sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	p, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 7, p.Stock)
}
