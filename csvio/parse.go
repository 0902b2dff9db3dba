/*
Package csvio reads and writes the catalog CSV format.

FORMAT:
  Optional UTF-8 byte-order mark, one header line, then one product per
  line:

    category,code,name,stock,safetyStock[,status]

  The status column is written on export and ignored on import; it is
  always recomputed from stock and safetyStock.

QUOTING CONTRACT (import):
  - A double quote toggles quoted mode; it is never part of the value.
  - Inside quoted mode, a doubled quote ("") is one literal quote.
  - Commas split fields only outside quoted mode.
  - Every field is trimmed.
  - Embedded newlines are not supported: the payload is split on \n
    before any field is parsed.

ROW VALIDATION:
  A row fails when it has fewer than 5 fields, an empty code, an empty
  name, or a stock value with no leading integer. A safetyStock value with
  no leading integer becomes 0. Blank lines are skipped and not counted.

NUMBERS:
  Integers are read the way spreadsheet exports tend to need: optional
  sign, then the longest run of digits ("12abc" is 12, "7.9" is 7).

SEE ALSO:
  - import.go: Merging a parsed batch into the ledger
  - export.go: Writing the catalog
*/
package csvio

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/warp/stock-ledger/inventory"
)

const bom = "\uFEFF"

// minColumns is category, code, name, stock, safetyStock.
const minColumns = 5

// Batch is the outcome of parsing one payload.
type Batch struct {
	Rows       []inventory.ProductRow
	Failed     int
	Rejections []Rejection
}

// Rejection explains why one line was counted as failed. Line is 1-based
// and counts the header.
type Rejection struct {
	Line   int
	Reason string
}

// Parse splits raw into validated rows. It returns an error wrapping
// inventory.ErrEmptyImport when raw has no data line at all.
func Parse(raw string) (Batch, error) {
	raw = strings.TrimPrefix(raw, bom)
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 {
		return Batch{}, fmt.Errorf("%w: no data rows", inventory.ErrEmptyImport)
	}

	var b Batch
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, reason := parseRow(SplitLine(line))
		if reason != "" {
			b.Failed++
			b.Rejections = append(b.Rejections, Rejection{Line: i + 1, Reason: reason})
			continue
		}
		b.Rows = append(b.Rows, row)
	}
	return b, nil
}

func parseRow(cols []string) (inventory.ProductRow, string) {
	if len(cols) < minColumns {
		return inventory.ProductRow{}, fmt.Sprintf("expected at least %d columns, got %d", minColumns, len(cols))
	}
	row := inventory.ProductRow{
		Category: cols[0],
		Code:     cols[1],
		Name:     cols[2],
	}
	if row.Code == "" {
		return inventory.ProductRow{}, "empty code"
	}
	if row.Name == "" {
		return inventory.ProductRow{}, "empty name"
	}
	stock, ok := ParseInt(cols[3])
	if !ok {
		return inventory.ProductRow{}, fmt.Sprintf("invalid stock %q", cols[3])
	}
	row.Stock = stock
	row.SafetyStock, _ = ParseInt(cols[4])
	return row, ""
}

// SplitLine tokenizes one CSV line per the quoting contract.
func SplitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuote := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"' && inQuote && i+1 < len(runes) && runes[i+1] == '"':
			current.WriteRune('"')
			i++
		case c == '"':
			inQuote = !inQuote
		case c == ',' && !inQuote:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

// ParseInt reads an optional sign and the longest digit prefix of s after
// leading whitespace. ok is false when there are no digits or the value
// overflows int.
func ParseInt(s string) (n int, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}
