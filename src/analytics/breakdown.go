package analytics

import (
	"fmt"
	"sort"
	"spendtracker/src/models"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#6c757d"
)

// Metric selects which amount a category breakdown sums.
type Metric string

const (
	MetricDebited  Metric = "debited"
	MetricCredited Metric = "credited"
	MetricNet      Metric = "net"
)

// ParseMetric maps the empty string to MetricDebited, the expense view.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debited", "expense", "spent":
		return MetricDebited, nil
	case "credited", "income":
		return MetricCredited, nil
	case "net":
		return MetricNet, nil
	}
	return "", fmt.Errorf("invalid metric %q, expected debited, credited or net", s)
}

func (m Metric) amount(t models.Transaction) decimal.Decimal {
	switch m {
	case MetricCredited:
		return t.Credited
	case MetricNet:
		return t.Credited.Sub(t.Debited)
	}
	return t.Debited
}

// CategoryTotal is one slice of a category breakdown. CategoryID is nil for
// the Uncategorized bucket.
type CategoryTotal struct {
	CategoryID       *int64           `json:"category_id"`
	CategoryName     string           `json:"category_name"`
	Color            string           `json:"category_color"`
	Total            decimal.Decimal  `json:"total_amount"`
	TotalDebited     decimal.Decimal  `json:"total_spent"`
	TotalCredited    decimal.Decimal  `json:"total_credited"`
	TransactionCount int              `json:"transaction_count"`
	Share            *decimal.Decimal `json:"share,omitempty"`
}

// BreakdownByCategory sums metric per category. Only categories with at least
// one transaction appear. Transactions without a category, or pointing at a
// category missing from categories, land in Uncategorized. Entries are ordered
// by total descending, then category id ascending with Uncategorized last.
func BreakdownByCategory(txns []models.Transaction, categories []models.Category, metric Metric) []CategoryTotal {
	known := make(map[int64]models.Category, len(categories))
	for _, c := range categories {
		known[c.ID] = c
	}

	buckets := make(map[int64]*CategoryTotal)
	var uncategorized *CategoryTotal
	for _, t := range txns {
		var entry *CategoryTotal
		cat, ok := models.Category{}, false
		if t.CategoryID != nil {
			cat, ok = known[*t.CategoryID]
		}
		if ok {
			entry = buckets[cat.ID]
			if entry == nil {
				id := cat.ID
				entry = &CategoryTotal{CategoryID: &id, CategoryName: cat.Name, Color: cat.Color}
				buckets[cat.ID] = entry
			}
		} else {
			if uncategorized == nil {
				uncategorized = &CategoryTotal{CategoryName: UncategorizedName, Color: UncategorizedColor}
			}
			entry = uncategorized
		}
		entry.Total = entry.Total.Add(metric.amount(t))
		entry.TotalDebited = entry.TotalDebited.Add(t.Debited)
		entry.TotalCredited = entry.TotalCredited.Add(t.Credited)
		entry.TransactionCount++
	}

	out := make([]CategoryTotal, 0, len(buckets)+1)
	for _, e := range buckets {
		out = append(out, *e)
	}
	if uncategorized != nil {
		out = append(out, *uncategorized)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		a, b := out[i].CategoryID, out[j].CategoryID
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return *a < *b
	})

	sum := decimal.Zero
	for _, e := range out {
		sum = sum.Add(e.Total)
	}
	if !sum.IsZero() {
		for i := range out {
			share := out[i].Total.Mul(hundred).DivRound(sum, 2)
			out[i].Share = &share
		}
	}
	return out
}
