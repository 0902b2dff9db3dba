package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/store/sqlite"
)

// As a CLI the process is short lived, so every command opens the database,
// does its work and closes it again.

// openLedger opens the SQLite store at -db and wraps it in a ledger. The
// returned close function must be called once the command is done.
func openLedger() (*inventory.Ledger, func(), error) {
	store, err := sqlite.New(*dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", *dbPath, err)
	}
	return inventory.NewLedger(store), func() { store.Close() }, nil
}

// withLedger runs fn against an open ledger and turns setup failures into an
// exit status.
func withLedger(fn func(*inventory.Ledger) subcommands.ExitStatus) subcommands.ExitStatus {
	ledger, closeFn, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeFn()
	return fn(ledger)
}

// printMarkdown renders md for the terminal, or prints it verbatim with -raw.
func printMarkdown(md string) {
	if *rawOutput {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// parseID reads the single positional id argument of a command.
func parseID(f interface{ Args() []string }) (int64, error) {
	if len(f.Args()) != 1 {
		return 0, fmt.Errorf("expected exactly one id argument, got %d", len(f.Args()))
	}
	id, err := strconv.ParseInt(f.Args()[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", f.Args()[0], err)
	}
	return id, nil
}
