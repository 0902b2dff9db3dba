package mirror

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/inventory/store"
)

func setupTestMirror(t *testing.T) (*RedisMirror, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	m, err := NewRedisMirror("redis://" + s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m, s
}

func TestNewRedisMirror_BadURL(t *testing.T) {
	_, err := NewRedisMirror("not a url")
	assert.Error(t, err)
}

func TestSync_WritesAndRemoves(t *testing.T) {
	m, s := setupTestMirror(t)
	ctx := context.Background()

	// GIVEN: One low and one normal product
	err := m.Sync(ctx, inventory.Change{Updated: []inventory.Product{
		{ID: 1, Code: "P-001", Name: "Mouse", Category: "Tech", Stock: 3, SafetyStock: 5},
		{ID: 2, Code: "P-002", Name: "Paper", Category: "Office", Stock: 50, SafetyStock: 5},
	}})
	require.NoError(t, err)

	// THEN: Stock keys, hashes and the low set are written
	stock, ok, err := m.Stock(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, stock)
	assert.Equal(t, "Mouse", s.HGet("product:1", "name"))
	assert.Equal(t, "5", s.HGet("product:1", "safety_stock"))

	low, err := m.LowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, []inventory.ProductID{1}, low)

	// WHEN: Product 1 recovers and product 2 is removed
	err = m.Sync(ctx, inventory.Change{
		Updated: []inventory.Product{{ID: 1, Code: "P-001", Name: "Mouse", Stock: 10, SafetyStock: 5}},
		Removed: []inventory.ProductID{2},
	})
	require.NoError(t, err)

	// THEN: Low set is empty and product 2's keys are gone
	low, err = m.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	_, ok, err = m.Stock(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.Exists("product:2"))
}

func TestMirror_FollowsLedger(t *testing.T) {
	m, _ := setupTestMirror(t)
	ctx := context.Background()

	ledger := inventory.NewLedger(store.NewTxMemory())
	ledger.Observe(m)
	require.NoError(t, ledger.Load(ctx, inventory.Snapshot{Products: []inventory.Product{
		{ID: 1, Code: "A", Name: "A", Stock: 6, SafetyStock: 5},
	}}))

	_, err := ledger.Record(ctx, inventory.Movement{Type: inventory.TxOutbound, ProductID: 1, Quantity: 2, Date: "2023-10-27"})
	require.NoError(t, err)

	stock, ok, err := m.Stock(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, stock)

	low, err := m.LowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, []inventory.ProductID{1}, low)
}

func TestMirror_OutageDoesNotBlockLedger(t *testing.T) {
	m, s := setupTestMirror(t)
	ctx := context.Background()

	ledger := inventory.NewLedger(store.NewTxMemory())
	ledger.Observe(m)
	require.NoError(t, ledger.Load(ctx, inventory.Snapshot{Products: []inventory.Product{{ID: 1, Code: "A", Name: "A", Stock: 6}}}))

	s.SetError("server down")
	_, err := ledger.Record(ctx, inventory.Movement{Type: inventory.TxInbound, ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	p, err := ledger.Product(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Stock)

	s.SetError("")
	err = m.Sync(ctx, inventory.Change{Updated: []inventory.Product{p}})
	require.NoError(t, err)
}
