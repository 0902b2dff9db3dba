package main

import (
	"fmt"
	"strings"

	"github.com/warp/stock-ledger/csvio"
	"github.com/warp/stock-ledger/inventory"
)

// mdCell escapes the characters that would break a Markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// renderProducts writes the catalog as a Markdown table.
func renderProducts(products []inventory.Product) string {
	var b strings.Builder
	b.WriteString("| ID | Category | Code | Name | Stock | Safety | Status |\n")
	b.WriteString("|---:|---|---|---|---:|---:|---|\n")
	for _, p := range products {
		status := "normal"
		if p.IsLow() {
			status = "**low**"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %d | %d | %s |\n",
			p.ID, mdCell(p.Category), mdCell(p.Code), mdCell(p.Name), p.Stock, p.SafetyStock, status)
	}
	if len(products) == 0 {
		b.WriteString("\n_No products._\n")
	}
	return b.String()
}

// renderHistory writes the movement log, newest first. Records whose product
// has been deleted are marked as orphaned.
func renderHistory(history []inventory.HistoryItem, products []inventory.Product) string {
	orphans := make(map[inventory.HistoryID]bool)
	for _, h := range inventory.Orphans(products, history) {
		orphans[h.ID] = true
	}

	var b strings.Builder
	b.WriteString("| ID | Date | Type | Product | Qty | Company |\n")
	b.WriteString("|---:|---|---|---|---:|---|\n")
	for _, h := range history {
		name := mdCell(h.ProductName)
		if orphans[h.ID] {
			name += " _(deleted)_"
		}
		qty := fmt.Sprintf("+%d", h.Quantity)
		if h.Type == inventory.TxOutbound {
			qty = fmt.Sprintf("-%d", h.Quantity)
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			h.ID, mdCell(h.Date), h.Type, name, qty, mdCell(h.Company))
	}
	if len(history) == 0 {
		b.WriteString("\n_No movements._\n")
	}
	return b.String()
}

func renderSummary(s inventory.Summary) string {
	var b strings.Builder
	b.WriteString("# Stock summary\n\n")
	fmt.Fprintf(&b, "- Products: **%d**\n", s.TotalProducts)
	fmt.Fprintf(&b, "- Total stock: **%d**\n", s.TotalStock)
	fmt.Fprintf(&b, "- Below safety stock: **%d**\n", s.LowStockCount)

	if len(s.Categories) > 0 {
		b.WriteString("\n## Categories\n\n| Category | Stock | Share |\n|---|---:|---:|\n")
		for _, c := range s.Categories {
			fmt.Fprintf(&b, "| %s | %d | %s%% |\n", mdCell(c.Name), c.Stock, c.Share.StringFixed(1))
		}
	}
	if len(s.Activity) > 0 {
		b.WriteString("\n## Recent activity\n\n| Date | In | Out |\n|---|---:|---:|\n")
		for _, a := range s.Activity {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", mdCell(a.Date), a.Inbound, a.Outbound)
		}
	}
	return b.String()
}

func renderImport(res csvio.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported **%d** rows (%d added, %d updated), **%d** failed. Batch `%s`.\n",
		res.Success, res.Added, res.Updated, res.Failed, res.BatchID)
	if len(res.Rejections) > 0 {
		b.WriteString("\n| Line | Reason |\n|---:|---|\n")
		for _, r := range res.Rejections {
			fmt.Fprintf(&b, "| %d | %s |\n", r.Line, mdCell(r.Reason))
		}
	}
	return b.String()
}
