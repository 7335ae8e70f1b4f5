package analytics

import (
	"fmt"
	"sort"
	"spendtracker/src/models"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// MonthTotal is the credited/debited total of one calendar month.
type MonthTotal struct {
	Month            string          `json:"month"`
	Credited         decimal.Decimal `json:"credited"`
	Debited          decimal.Decimal `json:"debited"`
	Net              decimal.Decimal `json:"net"`
	TransactionCount int             `json:"transaction_count"`
}

// MonthKey renders the year-month bucket of d, e.g. "2025-01".
func MonthKey(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}

// TrendByMonth buckets txns by calendar month. Months without transactions
// are not emitted. Entries are in ascending month order.
func TrendByMonth(txns []models.Transaction) []MonthTotal {
	buckets := make(map[string]*MonthTotal)
	for _, t := range txns {
		key := MonthKey(t.Date)
		m := buckets[key]
		if m == nil {
			m = &MonthTotal{Month: key}
			buckets[key] = m
		}
		m.Credited = m.Credited.Add(t.Credited)
		m.Debited = m.Debited.Add(t.Debited)
		m.TransactionCount++
	}

	out := make([]MonthTotal, 0, len(buckets))
	for _, m := range buckets {
		m.Net = m.Credited.Sub(m.Debited)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
