package csvio

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/warp/stock-ledger/inventory"
)

// Labels are the human-facing strings of an export: the header row and the
// status column values.
type Labels struct {
	Category    string
	Code        string
	Name        string
	Stock       string
	SafetyStock string
	Status      string

	Low    string
	Normal string

	// FilePrefix is the default export file name prefix.
	FilePrefix string
}

var KoreanLabels = Labels{
	Category:    "카테고리",
	Code:        "제품코드",
	Name:        "제품명",
	Stock:       "현재재고",
	SafetyStock: "적정재고",
	Status:      "상태",
	Low:         "부족",
	Normal:      "정상",
	FilePrefix:  "재고현황",
}

var EnglishLabels = Labels{
	Category:    "Category",
	Code:        "Code",
	Name:        "Name",
	Stock:       "Stock",
	SafetyStock: "SafetyStock",
	Status:      "Status",
	Low:         "Low",
	Normal:      "Normal",
	FilePrefix:  "stock_status",
}

// LabelsFor maps a language tag to its labels. Unknown tags get Korean.
func LabelsFor(lang string) Labels {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "en", "en-us", "english":
		return EnglishLabels
	}
	return KoreanLabels
}

func (l Labels) status(p inventory.Product) string {
	if p.IsLow() {
		return l.Low
	}
	return l.Normal
}

// Export writes products in the catalog CSV format: a BOM, the header, then
// one line per product joined by \n with no trailing newline. The name field
// is always quoted; category and code are quoted when they hold a comma or a
// quote. Status is computed from the product at export time.
func Export(w io.Writer, products []inventory.Product, labels Labels) error {
	lines := make([]string, 0, len(products)+1)
	lines = append(lines, strings.Join([]string{
		labels.Category,
		labels.Code,
		labels.Name,
		labels.Stock,
		labels.SafetyStock,
		labels.Status,
	}, ","))

	for _, p := range products {
		lines = append(lines, strings.Join([]string{
			quoteIfNeeded(p.Category),
			quoteIfNeeded(p.Code),
			quote(p.Name),
			strconv.Itoa(p.Stock),
			strconv.Itoa(p.SafetyStock),
			labels.status(p),
		}, ","))
	}

	if _, err := io.WriteString(w, bom+strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// quoteIfNeeded quotes fields that would otherwise split or lose a quote on
// re-import.
func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, `,"`) {
		return quote(s)
	}
	return s
}

// ExportFilename names an export taken on day, e.g. 재고현황_2024-03-01.csv.
func ExportFilename(prefix string, day time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, day.Format(time.DateOnly))
}
