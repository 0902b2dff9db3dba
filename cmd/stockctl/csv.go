package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/warp/stock-ledger/csvio"
	"github.com/warp/stock-ledger/inventory"
)

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "merge a catalog CSV file by product code" }
func (*importCmd) Usage() string {
	return `stockctl import <file.csv>

  Reads category,code,name,stock,safetyStock[,status] rows. Existing codes
  are overwritten in place and keep their id; new codes are appended.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected one CSV file")
		return subcommands.ExitUsageError
	}
	raw, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		res, err := csvio.NewImporter(ledger).Import(ctx, string(raw))
		if errors.Is(err, inventory.ErrEmptyImport) {
			fmt.Fprintf(os.Stderr, "Nothing to import: %d rows failed\n", res.Failed)
			return subcommands.ExitFailure
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", f.Arg(0), err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderImport(res))
		return subcommands.ExitSuccess
	})
}

type exportCmd struct {
	output string
	lang   string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the catalog as CSV" }
func (*exportCmd) Usage() string {
	return `stockctl export [-o <file>] [-lang ko|en]

  Writes the catalog with a byte-order mark and a localized header. With -o
  set to "auto" the file is named after today's date.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", `Output file. Empty writes to stdout, "auto" picks a dated name.`)
	f.StringVar(&c.lang, "lang", "ko", "Header language (ko or en).")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	labels := csvio.LabelsFor(c.lang)

	return withLedger(func(ledger *inventory.Ledger) subcommands.ExitStatus {
		products, err := ledger.Products(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing products: %v\n", err)
			return subcommands.ExitFailure
		}

		if c.output == "" {
			if err := csvio.Export(os.Stdout, products, labels); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return subcommands.ExitFailure
			}
			return subcommands.ExitSuccess
		}

		name := c.output
		if name == "auto" {
			name = csvio.ExportFilename(labels.FilePrefix, time.Now())
		}
		out, err := os.Create(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
		if err := csvio.Export(out, products, labels); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Exported %d products to %s\n", len(products), name)
		return subcommands.ExitSuccess
	})
}
