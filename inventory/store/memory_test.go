package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/inventory/store"
)

func TestMemory_CatalogOrderAndReplace(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveProduct(ctx, inventory.Product{ID: 3, Code: "C"}))
	require.NoError(t, m.SaveProduct(ctx, inventory.Product{ID: 1, Code: "A"}))
	require.NoError(t, m.SaveProduct(ctx, inventory.Product{ID: 3, Code: "C2"}))

	products, err := m.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "C2", products[0].Code)
	assert.Equal(t, "A", products[1].Code)

	max, err := m.MaxProductID(ctx)
	require.NoError(t, err)
	assert.Equal(t, inventory.ProductID(3), max)

	missing, err := m.GetProduct(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemory_HistoryNewestFirst(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.PrependHistory(ctx, inventory.HistoryItem{ID: 1}))
	require.NoError(t, m.PrependHistory(ctx, inventory.HistoryItem{ID: 2}))
	require.NoError(t, m.ReplaceHistory(ctx, inventory.HistoryItem{ID: 1, Quantity: 9}))

	history, err := m.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, inventory.HistoryID(2), history[0].ID)
	assert.Equal(t, 9, history[1].Quantity)

	require.NoError(t, m.DeleteHistory(ctx, 2))
	max, err := m.MaxHistoryID(ctx)
	require.NoError(t, err)
	assert.Equal(t, inventory.HistoryID(1), max)
}

func TestTxMemory_RollbackOnError(t *testing.T) {
	// GIVEN: A store with one product
	tm := store.NewTxMemory()
	ctx := context.Background()
	require.NoError(t, tm.SaveProduct(ctx, inventory.Product{ID: 1, Stock: 10}))

	// WHEN: A transaction writes and then fails
	boom := errors.New("boom")
	err := tm.WithTx(ctx, func(s inventory.Store) error {
		require.NoError(t, s.SaveProduct(ctx, inventory.Product{ID: 1, Stock: 99}))
		require.NoError(t, s.PrependHistory(ctx, inventory.HistoryItem{ID: 1}))
		return boom
	})

	// THEN: The error surfaces and nothing was kept
	require.ErrorIs(t, err, boom)
	p, err := tm.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)

	history, err := tm.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTxMemory_CommitAndReset(t *testing.T) {
	tm := store.NewTxMemory()
	ctx := context.Background()

	err := tm.WithTx(ctx, func(s inventory.Store) error {
		return s.SaveProduct(ctx, inventory.Product{ID: 0, Code: "Z"})
	})
	require.NoError(t, err)

	p, err := tm.GetProduct(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, p)

	require.NoError(t, tm.WithTx(ctx, func(s inventory.Store) error { return s.Reset(ctx) }))
	products, err := tm.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}
