package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stock-ledger/inventory"
)

func TestSummarize(t *testing.T) {
	// GIVEN: Two categories and history over three dates
	products := []inventory.Product{
		{ID: 1, Category: "Office", Stock: 10, SafetyStock: 20},
		{ID: 2, Category: "Tech", Stock: 15, SafetyStock: 5},
		{ID: 3, Category: "Tech", Stock: 5, SafetyStock: 5},
	}
	history := []inventory.HistoryItem{
		{Type: inventory.TxOutbound, Date: "2023-10-27", Quantity: 3},
		{Type: inventory.TxInbound, Date: "2023-10-27", Quantity: 4},
		{Type: inventory.TxInbound, Date: "2023-10-25", Quantity: 1},
		{Type: inventory.TxInbound, Date: "2023-10-26", Quantity: 2},
	}

	// WHEN: Summarizing the last two dates
	s := inventory.Summarize(products, history, 2)

	// THEN: Totals, category shares largest first, and ascending activity
	assert.Equal(t, 3, s.TotalProducts)
	assert.Equal(t, 30, s.TotalStock)
	assert.Equal(t, 1, s.LowStockCount)

	require.Len(t, s.Categories, 2)
	assert.Equal(t, "Tech", s.Categories[0].Name)
	assert.Equal(t, 20, s.Categories[0].Stock)
	assert.True(t, decimal.RequireFromString("66.7").Equal(s.Categories[0].Share), s.Categories[0].Share.String())
	assert.True(t, decimal.RequireFromString("33.3").Equal(s.Categories[1].Share))

	assert.Equal(t, []inventory.DailyActivity{
		{Date: "2023-10-26", Inbound: 2},
		{Date: "2023-10-27", Inbound: 4, Outbound: 3},
	}, s.Activity)
}

func TestSummarize_DefaultsAndEmpty(t *testing.T) {
	s := inventory.Summarize(nil, nil, 0)
	assert.Zero(t, s.TotalProducts)
	assert.Empty(t, s.Categories)
	assert.Empty(t, s.Activity)

	// Non-positive total stock yields zero shares
	s = inventory.Summarize([]inventory.Product{{Category: "X", Stock: -4}}, nil, 0)
	require.Len(t, s.Categories, 1)
	assert.True(t, s.Categories[0].Share.IsZero())
}
