package csvio

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/warp/stock-ledger/inventory"
)

// Importer merges CSV payloads into a ledger.
type Importer struct {
	Ledger *inventory.Ledger

	// Logger receives one summary line per batch. Nil means log.Default().
	Logger *log.Logger
}

func NewImporter(ledger *inventory.Ledger) *Importer {
	return &Importer{Ledger: ledger}
}

// Result summarizes one import. Success counts accepted rows, Failed counts
// rejected non-blank rows. Added and Updated split Success by whether the code
// was new to the catalog.
type Result struct {
	BatchID    string
	Success    int
	Failed     int
	Added      int
	Updated    int
	Rejections []Rejection
}

// Import parses raw and merges the accepted rows by product code. When no
// row is accepted the catalog is left untouched and the returned error wraps
// inventory.ErrEmptyImport; the Result still carries the failure count.
func (im *Importer) Import(ctx context.Context, raw string) (Result, error) {
	res := Result{BatchID: uuid.NewString()}

	batch, err := Parse(raw)
	if err != nil {
		return res, err
	}
	res.Failed = batch.Failed
	res.Rejections = batch.Rejections

	if len(batch.Rows) == 0 {
		return res, fmt.Errorf("%w: %d rows rejected", inventory.ErrEmptyImport, batch.Failed)
	}

	merged, err := im.Ledger.Merge(ctx, batch.Rows)
	if err != nil {
		return res, fmt.Errorf("import %s: %w", res.BatchID, err)
	}
	res.Success = len(batch.Rows)
	res.Added = merged.Added
	res.Updated = merged.Updated

	im.logger().Printf("csvio: batch %s imported %d rows (%d added, %d updated, %d failed)",
		res.BatchID, res.Success, res.Added, res.Updated, res.Failed)
	return res, nil
}

func (im *Importer) logger() *log.Logger {
	if im.Logger != nil {
		return im.Logger
	}
	return log.Default()
}
