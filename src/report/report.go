// Package report runs the dashboard pipeline: resolve the period selection,
// filter the ledger, aggregate it and format every amount for display.
package report

import (
	"spendtracker/src/analytics"
	"spendtracker/src/currency"
	"spendtracker/src/models"
	"spendtracker/src/period"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type Input struct {
	Transactions []models.Transaction
	Categories   []models.Category
	Selection    period.Selection
	Category     analytics.CategorySelector
	Today        civil.Date
	WeekStart    time.Weekday
	Metric       analytics.Metric
	Currency     string
	Formatter    *currency.Formatter
}

type Report struct {
	Selection period.Selection          `json:"selection"`
	Range     period.DateRange          `json:"range"`
	Label     string                    `json:"label"`
	Category  string                    `json:"category_id"`
	Query     string                    `json:"query"`
	Currency  string                    `json:"currency"`
	Summary   analytics.Summary         `json:"summary"`
	Breakdown []analytics.CategoryTotal `json:"breakdown"`
	Trend     []analytics.MonthTotal    `json:"trend"`
	Formatted Formatted                 `json:"formatted"`
}

// Formatted carries the display strings of every amount in a Report.
// Breakdown and Trend are index-aligned with the report's slices.
type Formatted struct {
	Summary   map[string]string   `json:"summary"`
	Breakdown []map[string]string `json:"breakdown"`
	Trend     []map[string]string `json:"trend"`
}

// Build computes a report from scratch. It never fails: a malformed custom
// range produces an empty report.
func Build(in Input) Report {
	f := in.Formatter
	if f == nil {
		f = currency.MustFormatter("en-US", currency.DefaultCode)
	}
	code := f.Code(in.Currency)
	metric := in.Metric
	if metric == "" {
		metric = analytics.MetricDebited
	}

	r := period.Resolve(in.Selection, in.Today, in.WeekStart)
	filtered := analytics.Filter(in.Transactions, in.Category, r)

	query := r.QueryValues()
	if !in.Category.IsAll() {
		query.Set(analytics.CategoryParam, in.Category.String())
	}

	out := Report{
		Selection: in.Selection,
		Range:     r,
		Label:     period.Label(in.Selection, in.Today, in.WeekStart),
		Category:  in.Category.String(),
		Query:     query.Encode(),
		Currency:  code,
		Summary:   analytics.Summarize(filtered),
		Breakdown: analytics.BreakdownByCategory(filtered, in.Categories, metric),
		Trend:     analytics.TrendByMonth(filtered),
	}
	out.Formatted = format(f, code, out)
	return out
}

func format(f *currency.Formatter, code string, r Report) Formatted {
	s := r.Summary
	out := Formatted{
		Summary: f.FormatAll(code, map[string]decimal.Decimal{
			"total_credited":  s.TotalCredited,
			"total_debited":   s.TotalDebited,
			"net_amount":      s.NetAmount,
			"current_balance": s.CurrentBalance,
		}),
		Breakdown: make([]map[string]string, 0, len(r.Breakdown)),
		Trend:     make([]map[string]string, 0, len(r.Trend)),
	}
	for _, b := range r.Breakdown {
		out.Breakdown = append(out.Breakdown, f.FormatAll(code, map[string]decimal.Decimal{
			"total_amount":   b.Total,
			"total_spent":    b.TotalDebited,
			"total_credited": b.TotalCredited,
		}))
	}
	for _, m := range r.Trend {
		out.Trend = append(out.Trend, f.FormatAll(code, map[string]decimal.Decimal{
			"credited": m.Credited,
			"debited":  m.Debited,
			"net":      m.Net,
		}))
	}
	return out
}
