package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stock-ledger/csvio"
	"github.com/warp/stock-ledger/inventory"
)

// useTempDB points -db at a fresh file for the duration of the test.
func useTempDB(t *testing.T) {
	t.Helper()
	prevDB, prevRaw := *dbPath, *rawOutput
	*dbPath = filepath.Join(t.TempDir(), "stock.db")
	*rawOutput = true
	t.Cleanup(func() {
		*dbPath, *rawOutput = prevDB, prevRaw
	})
}

// run parses args for cmd and executes it.
func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f)
}

func currentStock(t *testing.T, id inventory.ProductID) int {
	t.Helper()
	var stock int
	status := withLedger(func(l *inventory.Ledger) subcommands.ExitStatus {
		p, err := l.Product(context.Background(), id)
		require.NoError(t, err)
		stock = p.Stock
		return subcommands.ExitSuccess
	})
	require.Equal(t, subcommands.ExitSuccess, status)
	return stock
}

func TestCommands_ImportRecordEditDelete(t *testing.T) {
	useTempDB(t)

	csvPath := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"category,code,name,stock,safetyStock\n"+
			"가구,P-001,\"의자\",50,10\n"+
			"가구,P-002,\"책상\",20,5\n"), 0o644))

	// GIVEN: two imported products
	require.Equal(t, subcommands.ExitSuccess, run(t, &importCmd{}, csvPath))
	assert.Equal(t, 50, currentStock(t, 1))

	// WHEN: recording inbound 5 on product 1
	require.Equal(t, subcommands.ExitSuccess,
		run(t, &recordCmd{}, "-type", "in", "-product", "1", "-qty", "5"))
	assert.Equal(t, 55, currentStock(t, 1))

	// WHEN: moving the record to product 2 as outbound
	require.Equal(t, subcommands.ExitSuccess,
		run(t, &editTxCmd{}, "-type", "out", "-product", "2", "-qty", "5", "1"))
	assert.Equal(t, 50, currentStock(t, 1))
	assert.Equal(t, 15, currentStock(t, 2))

	// WHEN: deleting it
	require.Equal(t, subcommands.ExitSuccess, run(t, &deleteTxCmd{}, "1"))
	assert.Equal(t, 20, currentStock(t, 2))
}

func TestCommands_UsageErrors(t *testing.T) {
	useTempDB(t)

	assert.Equal(t, subcommands.ExitUsageError, run(t, &recordCmd{}, "-type", "sideways", "-product", "1", "-qty", "1"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &deleteTxCmd{}))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &importCmd{}))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &listCmd{}, "-sort", "color"))
}

func TestCommands_RecordAgainstMissingProductFails(t *testing.T) {
	useTempDB(t)
	assert.Equal(t, subcommands.ExitFailure,
		run(t, &recordCmd{}, "-type", "in", "-product", "9", "-qty", "1"))
}

func TestProductCmd_IDFlagSelectsEditing(t *testing.T) {
	useTempDB(t)

	require.Equal(t, subcommands.ExitSuccess,
		run(t, &productCmd{}, "-code", "P-1", "-name", "Chair", "-stock", "4"))
	require.Equal(t, subcommands.ExitSuccess,
		run(t, &productCmd{}, "-id", "1", "-code", "P-1", "-name", "Chair", "-stock", "9"))
	assert.Equal(t, 9, currentStock(t, 1))

	// Editing an id that does not exist fails instead of creating it.
	assert.Equal(t, subcommands.ExitFailure,
		run(t, &productCmd{}, "-id", "0", "-code", "P-0", "-name", "Zero"))
}

func TestSeedCmd(t *testing.T) {
	useTempDB(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &seedCmd{}, "demo"))
	assert.Equal(t, 45, currentStock(t, 1))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &seedCmd{}, "-force", "nope"))
}

// =============================================================================
// RENDERING
// =============================================================================

func TestRenderProducts_MarksLowAndEscapesPipes(t *testing.T) {
	md := renderProducts([]inventory.Product{
		{ID: 1, Code: "A|1", Name: "Chair", Category: "Furniture", Stock: 2, SafetyStock: 5},
		{ID: 2, Code: "B", Name: "Desk", Category: "Furniture", Stock: 9, SafetyStock: 5},
	})
	assert.Contains(t, md, `| 1 | Furniture | A\|1 | Chair | 2 | 5 | **low** |`)
	assert.Contains(t, md, `| 2 | Furniture | B | Desk | 9 | 5 | normal |`)
	assert.Contains(t, renderProducts(nil), "_No products._")
}

func TestRenderHistory_FlagsOrphans(t *testing.T) {
	products := []inventory.Product{{ID: 1, Name: "Chair"}}
	history := []inventory.HistoryItem{
		{ID: 2, Type: inventory.TxOutbound, Date: "2023-10-27", ProductID: 7, ProductName: "Stand", Quantity: 2, Company: "-"},
		{ID: 1, Type: inventory.TxInbound, Date: "2023-10-26", ProductID: 1, ProductName: "Chair", Quantity: 5, Company: "ACME"},
	}
	md := renderHistory(history, products)
	assert.Contains(t, md, "| 2 | 2023-10-27 | out | Stand _(deleted)_ | -2 | - |")
	assert.Contains(t, md, "| 1 | 2023-10-26 | in | Chair | +5 | ACME |")
}

func TestRenderSummary(t *testing.T) {
	md := renderSummary(inventory.Summary{
		TotalProducts: 2,
		TotalStock:    30,
		LowStockCount: 1,
		Categories:    []inventory.CategoryStock{{Name: "가구", Stock: 30, Share: decimal.NewFromInt(100)}},
		Activity:      []inventory.DailyActivity{{Date: "2023-10-27", Inbound: 5, Outbound: 1}},
	})
	assert.Contains(t, md, "- Total stock: **30**")
	assert.Contains(t, md, "| 가구 | 30 | 100.0% |")
	assert.Contains(t, md, "| 2023-10-27 | 5 | 1 |")
}

func TestRenderImport_ListsRejections(t *testing.T) {
	md := renderImport(csvio.Result{
		BatchID:    "b1",
		Success:    1,
		Added:      1,
		Failed:     1,
		Rejections: []csvio.Rejection{{Line: 3, Reason: "empty code"}},
	})
	assert.Contains(t, md, "Imported **1** rows (1 added, 0 updated), **1** failed.")
	assert.Contains(t, md, "| 3 | empty code |")
}
