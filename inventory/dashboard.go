package inventory

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// DefaultActivityDays is how many distinct history dates Summarize reports.
const DefaultActivityDays = 7

type Summary struct {
	TotalProducts int
	TotalStock    int
	LowStockCount int
	Categories    []CategoryStock
	Activity      []DailyActivity
}

// CategoryStock is the stock held in one category. Share is the percentage
// of total stock, rounded to one decimal place.
type CategoryStock struct {
	Name  string
	Stock int
	Share decimal.Decimal
}

type DailyActivity struct {
	Date     string
	Inbound  int
	Outbound int
}

// Summarize computes the dashboard figures. Categories are ordered by stock,
// largest first, ties in first-seen order. Activity covers the most recent
// `days` distinct dates in ascending date order; days <= 0 uses the default.
func Summarize(products []Product, history []HistoryItem, days int) Summary {
	if days <= 0 {
		days = DefaultActivityDays
	}

	var s Summary
	s.TotalProducts = len(products)

	index := make(map[string]int)
	for _, p := range products {
		s.TotalStock += p.Stock
		if p.IsLow() {
			s.LowStockCount++
		}
		i, ok := index[p.Category]
		if !ok {
			i = len(s.Categories)
			index[p.Category] = i
			s.Categories = append(s.Categories, CategoryStock{Name: p.Category})
		}
		s.Categories[i].Stock += p.Stock
	}

	total := decimal.NewFromInt(int64(s.TotalStock))
	hundred := decimal.NewFromInt(100)
	for i := range s.Categories {
		if s.TotalStock <= 0 {
			s.Categories[i].Share = decimal.Zero
			continue
		}
		s.Categories[i].Share = decimal.NewFromInt(int64(s.Categories[i].Stock)).
			Mul(hundred).
			Div(total).
			Round(1)
	}
	slices.SortStableFunc(s.Categories, func(a, b CategoryStock) int {
		return cmp.Compare(b.Stock, a.Stock)
	})

	byDate := make(map[string]*DailyActivity)
	var dates []string
	for _, h := range history {
		d, ok := byDate[h.Date]
		if !ok {
			d = &DailyActivity{Date: h.Date}
			byDate[h.Date] = d
			dates = append(dates, h.Date)
		}
		if h.Type == TxInbound {
			d.Inbound += h.Quantity
		} else {
			d.Outbound += h.Quantity
		}
	}
	slices.Sort(dates)
	if len(dates) > days {
		dates = dates[len(dates)-days:]
	}
	for _, date := range dates {
		s.Activity = append(s.Activity, *byDate[date])
	}

	return s
}
