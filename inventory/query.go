/*
query.go - Read-only views over the catalog

PURPOSE:
  Filtering, sorting and the low-stock predicate used by list screens,
  exports and the dashboard. Every function here is pure: it never mutates
  its input and never touches the store.

FILTER:
  A product matches when the lowercased term is a substring of the
  lowercased name or code, or when the term is a substring of the
  category. Category matching is case-sensitive by default because that is
  what the catalog screens have always done; FilterOptions lets callers
  opt into case-insensitive category matching.

SORT:
  Sort keys are an enum mapped to typed comparisons. Text fields compare
  case-insensitively, quantity fields numerically. Sorting is stable and
  SortNone leaves the input order untouched.

TOGGLE:
  Selecting the current key while ascending flips to descending. Any other
  selection (a new key, or the current key while descending) is ascending.
*/
package inventory

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// =============================================================================
// SORT KEYS
// =============================================================================

type SortKey int

const (
	SortNone SortKey = iota
	SortCategory
	SortCode
	SortName
	SortStock
	SortSafetyStock
)

var sortKeyNames = map[SortKey]string{
	SortNone:        "",
	SortCategory:    "category",
	SortCode:        "code",
	SortName:        "name",
	SortStock:       "stock",
	SortSafetyStock: "safetyStock",
}

func (k SortKey) String() string { return sortKeyNames[k] }

// ParseSortKey maps a field name to its key. Empty means SortNone.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "category":
		return SortCategory, nil
	case "code":
		return SortCode, nil
	case "name":
		return SortName, nil
	case "stock":
		return SortStock, nil
	case "safetystock", "safety_stock":
		return SortSafetyStock, nil
	}
	return SortNone, fmt.Errorf("unknown sort key %q", s)
}

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("unknown sort direction %q", s)
}

// SortState is the current sort selection of a list view.
type SortState struct {
	Key       SortKey
	Direction Direction
}

// Toggle returns the state after the user selects key.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key && s.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// compareBy returns the typed comparison for a key, or nil for SortNone.
func compareBy(key SortKey) func(a, b Product) int {
	text := func(field func(Product) string) func(a, b Product) int {
		return func(a, b Product) int {
			return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
		}
	}
	number := func(field func(Product) int) func(a, b Product) int {
		return func(a, b Product) int { return cmp.Compare(field(a), field(b)) }
	}

	switch key {
	case SortCategory:
		return text(func(p Product) string { return p.Category })
	case SortCode:
		return text(func(p Product) string { return p.Code })
	case SortName:
		return text(func(p Product) string { return p.Name })
	case SortStock:
		return number(func(p Product) int { return p.Stock })
	case SortSafetyStock:
		return number(func(p Product) int { return p.SafetyStock })
	}
	return nil
}

// =============================================================================
// FILTER / SORT
// =============================================================================

type FilterOptions struct {
	// CaseSensitiveCategory keeps category matching case-sensitive while
	// name and code matching ignore case. Pending product-owner confirmation.
	CaseSensitiveCategory bool
}

var DefaultFilterOptions = FilterOptions{CaseSensitiveCategory: true}

// Matches reports whether p matches the search term.
func (o FilterOptions) Matches(p Product, term string) bool {
	lower := strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Name), lower) ||
		strings.Contains(strings.ToLower(p.Code), lower) {
		return true
	}
	if o.CaseSensitiveCategory {
		return strings.Contains(p.Category, term)
	}
	return strings.Contains(strings.ToLower(p.Category), lower)
}

// Filter returns the matching products in their original order.
func Filter(products []Product, term string, opts FilterOptions) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if opts.Matches(p, term) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a stably sorted copy of products.
func Sort(products []Product, state SortState) []Product {
	out := slices.Clone(products)
	compare := compareBy(state.Key)
	if compare == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b Product) int {
		c := compare(a, b)
		if state.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}

func FilterAndSort(products []Product, term string, state SortState, opts FilterOptions) []Product {
	return Sort(Filter(products, term, opts), state)
}

// LowStock returns the products below their safety threshold.
func LowStock(products []Product) []Product {
	var out []Product
	for _, p := range products {
		if p.IsLow() {
			out = append(out, p)
		}
	}
	return out
}
