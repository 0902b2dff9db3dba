package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/warp/stock-ledger/inventory"
)

type historyCmd struct {
	head int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list stock movements, newest first" }
func (*historyCmd) Usage() string {
	return `stockctl history [-head <n>]
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the N most recent movements.")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		snap, err := ledger.Snapshot(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
			return subcommands.ExitFailure
		}
		history := snap.History
		if c.head > 0 && len(history) > c.head {
			history = history[:c.head]
		}
		printMarkdown(renderHistory(history, snap.Products))
		return subcommands.ExitSuccess
	})
}

// movementFlags are shared by record and edit-tx.
type movementFlags struct {
	txType    string
	productID int64
	quantity  int
	date      string
	company   string
}

func (m *movementFlags) set(f *flag.FlagSet) {
	f.StringVar(&m.txType, "type", "", "Movement type: in or out (required).")
	f.Int64Var(&m.productID, "product", 0, "Product id.")
	f.IntVar(&m.quantity, "qty", 0, "Quantity, a positive integer.")
	f.StringVar(&m.date, "date", "", "Movement date. Defaults to today.")
	f.StringVar(&m.company, "company", "", "Counterparty.")
}

func (m *movementFlags) movement() (inventory.Movement, error) {
	txType, err := inventory.ParseTxType(m.txType)
	if err != nil {
		return inventory.Movement{}, err
	}
	date := m.date
	if date == "" {
		date = time.Now().Format(time.DateOnly)
	}
	return inventory.Movement{
		Type:      txType,
		ProductID: inventory.ProductID(m.productID),
		Quantity:  m.quantity,
		Date:      date,
		Company:   m.company,
	}, nil
}

type recordCmd struct {
	movementFlags
}

func (*recordCmd) Name() string     { return "record" }
func (*recordCmd) Synopsis() string { return "record an inbound or outbound movement" }
func (*recordCmd) Usage() string {
	return `stockctl record -type in|out -product <id> -qty <n> [-date <date>] [-company <name>]
`
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *recordCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, err := c.movement()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		item, err := ledger.Record(ctx, m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error recording movement: %v\n", err)
			return subcommands.ExitFailure
		}
		p, err := ledger.Product(ctx, item.ProductID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Recorded #%d: %s now at %d\n", item.ID, p.Name, p.Stock)
		return subcommands.ExitSuccess
	})
}

type editTxCmd struct {
	movementFlags
}

func (*editTxCmd) Name() string     { return "edit-tx" }
func (*editTxCmd) Synopsis() string { return "rewrite a recorded movement" }
func (*editTxCmd) Usage() string {
	return `stockctl edit-tx -type in|out -product <id> -qty <n> [-date <date>] [-company <name>] <history-id>

  Undoes the original movement on its original product, then applies the
  new one. The record keeps its id and position.
`
}

func (c *editTxCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *editTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := parseID(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	m, err := c.movement()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		res, err := ledger.Edit(ctx, inventory.HistoryID(id), m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error editing movement: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Edited #%d (reversed: %t, applied: %t)\n", res.Item.ID, res.Reversed, res.Applied)
		return subcommands.ExitSuccess
	})
}

type deleteTxCmd struct{}

func (*deleteTxCmd) Name() string     { return "delete-tx" }
func (*deleteTxCmd) Synopsis() string { return "delete a movement and reverse its stock effect" }
func (*deleteTxCmd) Usage() string {
	return `stockctl delete-tx <history-id>
`
}

func (*deleteTxCmd) SetFlags(*flag.FlagSet) {}

func (c *deleteTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := parseID(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		res, err := ledger.DeleteTransaction(ctx, inventory.HistoryID(id))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting movement: %v\n", err)
			return subcommands.ExitFailure
		}
		if !res.Reversed {
			fmt.Printf("Deleted #%d; product %d no longer exists, stock unchanged\n", id, res.Item.ProductID)
			return subcommands.ExitSuccess
		}
		fmt.Printf("Deleted #%d and reversed %+d on product %d\n", id, res.Item.Delta(), res.Item.ProductID)
		return subcommands.ExitSuccess
	})
}

type summaryCmd struct {
	days int
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display stock totals and recent activity" }
func (*summaryCmd) Usage() string {
	return `stockctl summary [-days <n>]
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", inventory.DefaultActivityDays, "Number of recent movement dates to show.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		snap, err := ledger.Snapshot(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderSummary(inventory.Summarize(snap.Products, snap.History, c.days)))
		return subcommands.ExitSuccess
	})
}
