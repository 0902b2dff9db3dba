/*
stockctl - Command-line access to the stock ledger

PURPOSE:
  Operates directly on the SQLite database used by the server: imports and
  exports catalog CSV files, lists products and history, records and edits
  movements, and prints the dashboard summary. Tables are rendered as
  Markdown through glamour; -raw prints the Markdown source instead.

GLOBAL FLAGS:
  -db     SQLite database path (STOCK_DB, default: stock.db)
  -raw    Print Markdown without terminal styling

EXAMPLES:
  stockctl import inventory.csv
  stockctl list -q 모니터 -sort stock -desc
  stockctl record -type out -product 5 -qty 2 -company "스타트업 A사"
  stockctl export -lang en -o stock.csv
*/
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/warp/stock-ledger/config"
)

var (
	dbPath    = flag.String("db", config.Load().DBPath, "SQLite database path")
	rawOutput = flag.Bool("raw", false, "print Markdown without terminal styling")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&importCmd{}, "csv")
	c.Register(&exportCmd{}, "csv")

	c.Register(&listCmd{}, "catalog")
	c.Register(&productCmd{}, "catalog")
	c.Register(&deleteProductCmd{}, "catalog")
	c.Register(&seedCmd{}, "catalog")

	c.Register(&historyCmd{}, "history")
	c.Register(&recordCmd{}, "history")
	c.Register(&editTxCmd{}, "history")
	c.Register(&deleteTxCmd{}, "history")

	c.Register(&summaryCmd{}, "reports")
}
