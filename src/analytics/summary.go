package analytics

import (
	"spendtracker/src/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary holds the totals of a transaction set.
type Summary struct {
	TotalCredited    decimal.Decimal `json:"total_credited"`
	TotalDebited     decimal.Decimal `json:"total_debited"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	TransactionCount int             `json:"total_transactions"`

	// Both ratios are nil when nothing was credited.
	ExpenseRatio *decimal.Decimal `json:"expense_ratio,omitempty"`
	SavingsRate  *decimal.Decimal `json:"savings_rate,omitempty"`
}

// Summarize totals txns. CurrentBalance is the balance of the transaction with
// the latest date, the highest id winning among same-day rows. An empty input
// yields an all-zero summary.
func Summarize(txns []models.Transaction) Summary {
	var s Summary
	var latest *models.Transaction
	for i := range txns {
		t := &txns[i]
		s.TotalCredited = s.TotalCredited.Add(t.Credited)
		s.TotalDebited = s.TotalDebited.Add(t.Debited)
		if latest == nil || isLater(t, latest) {
			latest = t
		}
	}
	s.NetAmount = s.TotalCredited.Sub(s.TotalDebited)
	s.TransactionCount = len(txns)
	if latest != nil {
		s.CurrentBalance = latest.Balance
	}
	if !s.TotalCredited.IsZero() {
		ratio := s.TotalDebited.DivRound(s.TotalCredited, 4)
		rate := s.NetAmount.Mul(hundred).DivRound(s.TotalCredited, 2)
		s.ExpenseRatio = &ratio
		s.SavingsRate = &rate
	}
	return s
}

func isLater(a, b *models.Transaction) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c > 0
	}
	return a.ID > b.ID
}
