/*
ledger.go - Stock ledger engine

PURPOSE:
  The Ledger is the only writer of product stock. Every operation that
  moves stock runs inside one store transaction, so nobody ever observes a
  stock value that has been reversed but not yet re-applied.

OPERATIONS:
  Record:            Prepend a movement and apply its signed delta
  Edit:              Reverse the old delta on the old product, apply the new
                     delta on the new product, replace the record in place
  DeleteTransaction: Reverse the record's delta, then remove it
  DeleteProduct:     Remove the product, keep its history (orphans)
  UpsertProduct:     Create or overwrite a catalog entry
  Merge:             Upsert a batch of import rows by product code
  Load:              Replace the whole state (seeding)

ORPHAN TOLERANCE:
  Edit and DeleteTransaction skip whichever side references a product that
  no longer exists and still succeed. Record is the exception: recording
  against a missing product is a hard no-op.

EXAMPLE FLOW:
  A stock 50, B stock 20.
  1. Record inbound 5 on A:       A=55           history [#1 in 5 A]
  2. Edit #1 to outbound 5 on B:  A=50, B=15     history [#1 out 5 B]
  3. DeleteTransaction #1:        B=20           history []

ID ALLOCATION:
  New ids are max(existing ids, 0) + 1 within their own id space. For
  products, ids still referenced by history count as existing, so deleting
  the newest product never frees its id for reuse. Product and history ids
  may overlap with each other.

SEE ALSO:
  - store.go: TxStore used for atomicity
  - invariant.go: Helpers to check stock against history
*/
package inventory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// =============================================================================
// OBSERVERS - Notified after a successful commit
// =============================================================================

// Change describes the catalog entries touched by one committed operation.
type Change struct {
	Updated []Product
	Removed []ProductID
}

func (c Change) empty() bool { return len(c.Updated) == 0 && len(c.Removed) == 0 }

// Observer receives committed catalog changes. A failing observer is logged
// and never rolls the ledger back.
type Observer interface {
	Sync(ctx context.Context, change Change) error
}

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	store     TxStore
	observers []Observer

	// Logger receives observer failures. Nil means log.Default().
	Logger *log.Logger

	mu sync.Mutex
}

func NewLedger(store TxStore) *Ledger {
	return &Ledger{store: store}
}

// Observe registers o for every subsequent committed change.
func (l *Ledger) Observe(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

type EditResult struct {
	Item     HistoryItem
	Reversed bool // the original product existed and was reverted
	Applied  bool // the new product existed and received the new delta
}

type DeleteResult struct {
	Item     HistoryItem
	Reversed bool
}

type MergeResult struct {
	Added   int
	Updated int
}

// =============================================================================
// READS
// =============================================================================

func (l *Ledger) Products(ctx context.Context) ([]Product, error) {
	return l.store.ListProducts(ctx)
}

func (l *Ledger) History(ctx context.Context) ([]HistoryItem, error) {
	return l.store.ListHistory(ctx)
}

func (l *Ledger) Product(ctx context.Context, id ProductID) (Product, error) {
	p, err := l.store.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if p == nil {
		return Product{}, &ProductNotFoundError{ID: id}
	}
	return *p, nil
}

// Snapshot returns the whole state as seen by one caller.
func (l *Ledger) Snapshot(ctx context.Context) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	products, err := l.store.ListProducts(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	history, err := l.store.ListHistory(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Products: products, History: history}, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// Record prepends a new movement and applies its delta to the product.
func (l *Ledger) Record(ctx context.Context, m Movement) (HistoryItem, error) {
	if err := validateMovement(m); err != nil {
		return HistoryItem{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var item HistoryItem
	touched := newTouchSet()
	err := l.store.WithTx(ctx, func(s Store) error {
		p, err := touched.load(ctx, s, m.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return &ProductNotFoundError{ID: m.ProductID}
		}

		maxID, err := s.MaxHistoryID(ctx)
		if err != nil {
			return err
		}

		p.Stock += m.delta()
		item = HistoryItem{
			ID:          nextHistoryID(maxID),
			Type:        m.Type,
			Date:        m.Date,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    m.Quantity,
			Company:     m.company(),
		}

		if err := touched.flush(ctx, s); err != nil {
			return err
		}
		return s.PrependHistory(ctx, item)
	})
	if err != nil {
		return HistoryItem{}, err
	}

	l.notify(ctx, Change{Updated: touched.products()})
	return item, nil
}

// Edit rewrites the record with the given id. The original delta is undone
// on the original product before the new delta lands on m.ProductID, so
// moving a record between products is exact. A missing product on either
// side is skipped.
func (l *Ledger) Edit(ctx context.Context, id HistoryID, m Movement) (EditResult, error) {
	if err := validateMovement(m); err != nil {
		return EditResult{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var res EditResult
	touched := newTouchSet()
	err := l.store.WithTx(ctx, func(s Store) error {
		old, err := s.GetHistory(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return &HistoryNotFoundError{ID: id}
		}

		// Phase 1: undo exactly what the original record did.
		orig, err := touched.load(ctx, s, old.ProductID)
		if err != nil {
			return err
		}
		if orig != nil {
			orig.Stock -= old.Delta()
			res.Reversed = true
		}

		// Phase 2: apply the new delta.
		name := old.ProductName
		target, err := touched.load(ctx, s, m.ProductID)
		if err != nil {
			return err
		}
		if target != nil {
			target.Stock += m.delta()
			name = target.Name
			res.Applied = true
		}

		res.Item = HistoryItem{
			ID:          old.ID,
			Type:        m.Type,
			Date:        m.Date,
			ProductID:   m.ProductID,
			ProductName: name,
			Quantity:    m.Quantity,
			Company:     m.company(),
		}

		if err := touched.flush(ctx, s); err != nil {
			return err
		}
		return s.ReplaceHistory(ctx, res.Item)
	})
	if err != nil {
		return EditResult{}, err
	}

	l.notify(ctx, Change{Updated: touched.products()})
	return res, nil
}

// DeleteTransaction reverses the record's delta if its product still exists
// and removes the record.
func (l *Ledger) DeleteTransaction(ctx context.Context, id HistoryID) (DeleteResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res DeleteResult
	touched := newTouchSet()
	err := l.store.WithTx(ctx, func(s Store) error {
		old, err := s.GetHistory(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return &HistoryNotFoundError{ID: id}
		}
		res.Item = *old

		p, err := touched.load(ctx, s, old.ProductID)
		if err != nil {
			return err
		}
		if p != nil {
			p.Stock -= old.Delta()
			res.Reversed = true
		}

		if err := touched.flush(ctx, s); err != nil {
			return err
		}
		return s.DeleteHistory(ctx, id)
	})
	if err != nil {
		return DeleteResult{}, err
	}

	l.notify(ctx, Change{Updated: touched.products()})
	return res, nil
}

// =============================================================================
// CATALOG
// =============================================================================

// DeleteProduct removes a product. Its history records are kept and become
// orphans that still display the last-known product name.
func (l *Ledger) DeleteProduct(ctx context.Context, id ProductID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.store.WithTx(ctx, func(s Store) error {
		p, err := s.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return &ProductNotFoundError{ID: id}
		}
		return s.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}

	l.notify(ctx, Change{Removed: []ProductID{id}})
	return nil
}

// UpsertProduct creates a product (Editing false) or overwrites every
// editable field of an existing one (Editing true). Overwriting stock
// re-bases the product; history is not touched.
func (l *Ledger) UpsertProduct(ctx context.Context, d ProductDraft) (Product, error) {
	if strings.TrimSpace(d.Code) == "" || strings.TrimSpace(d.Name) == "" {
		return Product{}, ErrInvalidProduct
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var saved Product
	err := l.store.WithTx(ctx, func(s Store) error {
		if d.Editing {
			existing, err := s.GetProduct(ctx, d.ID)
			if err != nil {
				return err
			}
			if existing == nil {
				return &ProductNotFoundError{ID: d.ID}
			}
			saved = *existing
		} else {
			id, err := freshProductID(ctx, s)
			if err != nil {
				return err
			}
			saved = Product{ID: id}
		}

		saved.Code = d.Code
		saved.Name = d.Name
		saved.Category = d.Category
		saved.Stock = d.Stock
		saved.SafetyStock = d.SafetyStock
		return s.SaveProduct(ctx, saved)
	})
	if err != nil {
		return Product{}, err
	}

	l.notify(ctx, Change{Updated: []Product{saved}})
	return saved, nil
}

// Merge upserts import rows by product code. Existing codes keep their id,
// so history references stay valid; new codes get consecutive ids starting
// above every live or referenced product id and are appended in row order.
// When the catalog already holds the same code twice the later product wins.
func (l *Ledger) Merge(ctx context.Context, rows []ProductRow) (MergeResult, error) {
	if len(rows) == 0 {
		return MergeResult{}, ErrEmptyImport
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var res MergeResult
	touched := newTouchSet()
	err := l.store.WithTx(ctx, func(s Store) error {
		products, err := s.ListProducts(ctx)
		if err != nil {
			return err
		}
		byCode := make(map[string]ProductID, len(products))
		for _, p := range products {
			byCode[p.Code] = p.ID
		}

		next, err := freshProductID(ctx, s)
		if err != nil {
			return err
		}

		for _, row := range rows {
			if id, ok := byCode[row.Code]; ok {
				p, err := touched.load(ctx, s, id)
				if err != nil {
					return err
				}
				if p == nil {
					return fmt.Errorf("merge: product %d vanished during import", id)
				}
				p.Name = row.Name
				p.Category = row.Category
				p.Stock = row.Stock
				p.SafetyStock = row.SafetyStock
				res.Updated++
				continue
			}

			touched.add(Product{
				ID:          next,
				Code:        row.Code,
				Name:        row.Name,
				Category:    row.Category,
				Stock:       row.Stock,
				SafetyStock: row.SafetyStock,
			})
			byCode[row.Code] = next
			next++
			res.Added++
		}

		return touched.flush(ctx, s)
	})
	if err != nil {
		return MergeResult{}, err
	}

	l.notify(ctx, Change{Updated: touched.products()})
	return res, nil
}

// Load replaces the entire state with snap. History is given newest first.
func (l *Ledger) Load(ctx context.Context, snap Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed []ProductID
	err := l.store.WithTx(ctx, func(s Store) error {
		before, err := s.ListProducts(ctx)
		if err != nil {
			return err
		}
		keep := make(map[ProductID]bool, len(snap.Products))
		for _, p := range snap.Products {
			keep[p.ID] = true
		}
		for _, p := range before {
			if !keep[p.ID] {
				removed = append(removed, p.ID)
			}
		}

		if err := s.Reset(ctx); err != nil {
			return err
		}
		for _, p := range snap.Products {
			if err := s.SaveProduct(ctx, p); err != nil {
				return err
			}
		}
		for i := len(snap.History) - 1; i >= 0; i-- {
			if err := s.PrependHistory(ctx, snap.History[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	updated := append([]Product(nil), snap.Products...)
	l.notify(ctx, Change{Updated: updated, Removed: removed})
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func validateMovement(m Movement) error {
	if !m.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTxType, m.Type)
	}
	if m.Quantity <= 0 {
		return &InvalidQuantityError{Quantity: m.Quantity}
	}
	return nil
}

// freshProductID returns an id above every live product and every product
// still referenced by history, so a new product never adopts the orphaned
// records of a deleted one.
func freshProductID(ctx context.Context, s Store) (ProductID, error) {
	max, err := s.MaxProductID(ctx)
	if err != nil {
		return 0, err
	}
	history, err := s.ListHistory(ctx)
	if err != nil {
		return 0, err
	}
	if ref, ok := MaxReferencedProductID(history); ok && ref > max {
		max = ref
	}
	if max < 0 {
		max = 0
	}
	return max + 1, nil
}

func nextHistoryID(max HistoryID) HistoryID {
	if max < 0 {
		max = 0
	}
	return max + 1
}

func (l *Ledger) notify(ctx context.Context, change Change) {
	if change.empty() {
		return
	}
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	for _, o := range l.observers {
		if err := o.Sync(ctx, change); err != nil {
			logger.Printf("inventory: observer sync failed: %v", err)
		}
	}
}

// touchSet collects the products one operation modifies so each is loaded
// once and written once, in first-touch order.
type touchSet struct {
	order []ProductID
	byID  map[ProductID]*Product
}

func newTouchSet() *touchSet {
	return &touchSet{byID: make(map[ProductID]*Product)}
}

// load returns nil, nil when the product does not exist.
func (t *touchSet) load(ctx context.Context, s Store, id ProductID) (*Product, error) {
	if p, ok := t.byID[id]; ok {
		return p, nil
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		t.order = append(t.order, id)
		t.byID[id] = p
	}
	return p, nil
}

func (t *touchSet) add(p Product) {
	t.order = append(t.order, p.ID)
	t.byID[p.ID] = &p
}

func (t *touchSet) flush(ctx context.Context, s Store) error {
	for _, id := range t.order {
		if err := s.SaveProduct(ctx, *t.byID[id]); err != nil {
			return err
		}
	}
	return nil
}

func (t *touchSet) products() []Product {
	out := make([]Product, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.byID[id])
	}
	return out
}
