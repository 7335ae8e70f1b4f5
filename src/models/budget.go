package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	BudgetWeekly  = "weekly"
	BudgetMonthly = "monthly"
)

// Budget is a spending limit for one category.
type Budget struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	CategoryID int64           `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Period     string          `json:"period"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BudgetProgress compares a budget with what was spent in a date range.
// Limit is the budget amount scaled to the length of the range.
type BudgetProgress struct {
	Budget       Budget            `json:"budget"`
	CategoryName string            `json:"category_name"`
	Color        string            `json:"color"`
	Limit        decimal.Decimal   `json:"limit"`
	Spent        decimal.Decimal   `json:"spent"`
	Remaining    decimal.Decimal   `json:"remaining"`
	PercentUsed  *decimal.Decimal  `json:"percent_used,omitempty"`
	OverBudget   bool              `json:"over_budget"`
	Formatted    map[string]string `json:"formatted"`
}
