package analytics

import (
	"spendtracker/src/models"
	"spendtracker/src/period"

	"github.com/shopspring/decimal"
)

var (
	weeksPerYear  = decimal.NewFromInt(52)
	monthsPerYear = decimal.NewFromInt(12)
)

// ScaleLimit converts a budget amount to the length of the selected period.
// A weekly budget viewed by month is multiplied by 52/12 and a monthly one
// viewed by week by 12/52. Other modes keep the amount as is.
func ScaleLimit(amount decimal.Decimal, budgetPeriod string, mode period.Mode) decimal.Decimal {
	switch {
	case mode == period.ModeMonthly && budgetPeriod == models.BudgetWeekly:
		return amount.Mul(weeksPerYear).DivRound(monthsPerYear, 2)
	case mode == period.ModeWeekly && budgetPeriod == models.BudgetMonthly:
		return amount.Mul(monthsPerYear).DivRound(weeksPerYear, 2)
	default:
		return amount
	}
}

// BudgetProgress compares every budget with the debited total of its
// category in txns, which must already be limited to the selected range.
// Results follow the order of budgets.
func BudgetProgress(budgets []models.Budget, categories []models.Category, txns []models.Transaction, mode period.Mode) []models.BudgetProgress {
	spent := make(map[int64]decimal.Decimal)
	for _, t := range txns {
		if t.CategoryID == nil {
			continue
		}
		spent[*t.CategoryID] = spent[*t.CategoryID].Add(t.Debited)
	}

	byID := make(map[int64]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	out := make([]models.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		limit := ScaleLimit(b.Amount, b.Period, mode)
		s := spent[b.CategoryID]
		p := models.BudgetProgress{
			Budget:       b,
			CategoryName: UncategorizedName,
			Color:        UncategorizedColor,
			Limit:        limit,
			Spent:        s,
			Remaining:    limit.Sub(s),
			OverBudget:   s.GreaterThan(limit),
		}
		if c, ok := byID[b.CategoryID]; ok {
			p.CategoryName = c.Name
			p.Color = c.Color
		}
		if !limit.IsZero() {
			pct := s.Mul(hundred).DivRound(limit, 2)
			p.PercentUsed = &pct
		}
		out = append(out, p)
	}
	return out
}
