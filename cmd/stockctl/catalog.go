package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/warp/stock-ledger/api"
	"github.com/warp/stock-ledger/inventory"
)

type listCmd struct {
	query        string
	sort         string
	desc         bool
	low          bool
	categoryFold bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list products" }
func (*listCmd) Usage() string {
	return `stockctl list [-q <term>] [-sort <field>] [-desc] [-low] [-category-fold]

  Lists the catalog. -q matches name and code ignoring case, and category
  as typed unless -category-fold is set.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Search term.")
	f.StringVar(&c.sort, "sort", "", "Sort field: category, code, name, stock or safetyStock.")
	f.BoolVar(&c.desc, "desc", false, "Sort descending.")
	f.BoolVar(&c.low, "low", false, "Only products below their safety stock.")
	f.BoolVar(&c.categoryFold, "category-fold", false, "Match category ignoring case.")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := inventory.ParseSortKey(c.sort)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	state := inventory.SortState{Key: key}
	if c.desc {
		state.Direction = inventory.Descending
	}
	opts := inventory.DefaultFilterOptions
	opts.CaseSensitiveCategory = !c.categoryFold

	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		products, err := ledger.Products(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing products: %v\n", err)
			return subcommands.ExitFailure
		}
		view := inventory.FilterAndSort(products, c.query, state, opts)
		if c.low {
			view = inventory.LowStock(view)
		}
		printMarkdown(renderProducts(view))
		return subcommands.ExitSuccess
	})
}

type productCmd struct {
	id          int64
	code        string
	name        string
	category    string
	stock       int
	safetyStock int
}

func (*productCmd) Name() string     { return "product" }
func (*productCmd) Synopsis() string { return "create or overwrite a product" }
func (*productCmd) Usage() string {
	return `stockctl product -code <code> -name <name> [-category <c>] [-stock <n>] [-safety <n>] [-id <id>]

  Without -id a new product is created. With -id every field of that product
  is overwritten; setting -stock re-bases it without touching history.
`
}

func (c *productCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", -1, "Product to overwrite. Omit to create.")
	f.StringVar(&c.code, "code", "", "Product code (required).")
	f.StringVar(&c.name, "name", "", "Product name (required).")
	f.StringVar(&c.category, "category", "", "Category.")
	f.IntVar(&c.stock, "stock", 0, "Current stock.")
	f.IntVar(&c.safetyStock, "safety", 0, "Safety stock.")
}

func (c *productCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	editing := false
	f.Visit(func(fl *flag.Flag) {
		if fl.Name == "id" {
			editing = true
		}
	})

	draft := inventory.ProductDraft{
		Editing:     editing,
		ID:          inventory.ProductID(c.id),
		Code:        c.code,
		Name:        c.name,
		Category:    c.category,
		Stock:       c.stock,
		SafetyStock: c.safetyStock,
	}

	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		p, err := ledger.UpsertProduct(ctx, draft)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving product: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderProducts([]inventory.Product{p}))
		return subcommands.ExitSuccess
	})
}

type deleteProductCmd struct{}

func (*deleteProductCmd) Name() string     { return "delete-product" }
func (*deleteProductCmd) Synopsis() string { return "remove a product, keeping its history" }
func (*deleteProductCmd) Usage() string {
	return `stockctl delete-product <id>

  Removes the product. Its movements stay in history under the last-known
  product name.
`
}

func (*deleteProductCmd) SetFlags(*flag.FlagSet) {}

func (c *deleteProductCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := parseID(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		if err := ledger.DeleteProduct(ctx, inventory.ProductID(id)); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting product: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Deleted product %d\n", id)
		return subcommands.ExitSuccess
	})
}

type seedCmd struct {
	force bool
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "load a demo scenario" }
func (*seedCmd) Usage() string {
	return `stockctl seed [-force] <scenario>

  Loads demo, orphans or empty. Without -force only an empty catalog is
  seeded.
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "Replace existing data.")
}

func (c *seedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected one scenario name")
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)

	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		if c.force {
			snap, ok := api.ScenarioSnapshot(name)
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: unknown scenario %q\n", name)
				return subcommands.ExitUsageError
			}
			if err := ledger.Load(ctx, snap); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading scenario: %v\n", err)
				return subcommands.ExitFailure
			}
			fmt.Printf("Loaded scenario %s\n", name)
			return subcommands.ExitSuccess
		}

		loaded, err := api.Seed(ctx, ledger, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding: %v\n", err)
			return subcommands.ExitFailure
		}
		if !loaded {
			fmt.Println("Catalog is not empty; use -force to replace it")
			return subcommands.ExitSuccess
		}
		fmt.Printf("Loaded scenario %s\n", name)
		return subcommands.ExitSuccess
	})
}
