package util

import (
	"errors"
	"fmt"
	"regexp"
	"spendtracker/src/models"
	"spendtracker/src/period"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	DefaultCategoryColor = "#007bff"
	DefaultCategoryIcon  = "category"

	maxCategoryName   = 50
	maxDescription    = 255
	maxRuleName       = 100
	maxAmountDecimals = 2
)

var (
	// MaxAmount is the largest value a NUMERIC(14,2) amount column holds.
	MaxAmount = decimal.RequireFromString("999999999999.99")

	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	lowerPattern = regexp.MustCompile("[a-z]")
	upperPattern = regexp.MustCompile("[A-Z]")
	digitPattern = regexp.MustCompile("[0-9]")
)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidateUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= 3 && n <= 30
}

// ValidatePassword requires at least 8 characters mixing lower case, upper
// case and digits.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	return lowerPattern.MatchString(password) &&
		upperPattern.MatchString(password) &&
		digitPattern.MatchString(password)
}

func ValidateColor(color string) bool {
	return colorPattern.MatchString(color)
}

// NormalizeCategory trims the request, fills defaults and validates it.
func NormalizeCategory(req *models.CreateCategoryRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Color = strings.TrimSpace(req.Color)
	req.Icon = strings.TrimSpace(req.Icon)

	if req.Name == "" {
		return errors.New("category name is required")
	}
	if utf8.RuneCountInString(req.Name) > maxCategoryName {
		return fmt.Errorf("category name must be at most %d characters", maxCategoryName)
	}
	if req.Color == "" {
		req.Color = DefaultCategoryColor
	}
	if !ValidateColor(req.Color) {
		return errors.New("color must look like #RRGGBB")
	}
	if req.Icon == "" {
		req.Icon = DefaultCategoryIcon
	}
	return nil
}

// ValidateAmount checks that d is non-negative with at most two decimals.
func ValidateAmount(name string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%s cannot be negative", name)
	}
	if d.GreaterThan(MaxAmount) {
		return fmt.Errorf("%s cannot exceed %s", name, MaxAmount.StringFixed(maxAmountDecimals))
	}
	if !d.Equal(d.Round(maxAmountDecimals)) {
		return fmt.Errorf("%s has more than %d decimal places", name, maxAmountDecimals)
	}
	return nil
}

// ParseTransactionRequest validates req and returns the transaction it
// describes for userID.
func ParseTransactionRequest(userID int64, req models.TransactionRequest) (models.Transaction, error) {
	desc := strings.TrimSpace(req.Description)
	if req.Date == "" || desc == "" {
		return models.Transaction{}, errors.New("date and description are required")
	}
	if utf8.RuneCountInString(desc) > maxDescription {
		return models.Transaction{}, fmt.Errorf("description must be at most %d characters", maxDescription)
	}
	date, err := period.ParseDate(req.Date)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := ValidateAmount("credited", req.Credited); err != nil {
		return models.Transaction{}, err
	}
	if err := ValidateAmount("debited", req.Debited); err != nil {
		return models.Transaction{}, err
	}
	if req.Credited.IsZero() && req.Debited.IsZero() {
		return models.Transaction{}, errors.New("either credited or debited amount must be greater than 0")
	}
	return models.Transaction{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Date:        date,
		Description: desc,
		Credited:    req.Credited,
		Debited:     req.Debited,
		Notes:       strings.TrimSpace(req.Notes),
	}, nil
}

// ValidateBudget checks the amount and period of b.
func ValidateBudget(b models.Budget) error {
	if b.CategoryID <= 0 {
		return errors.New("category_id is required")
	}
	if err := ValidateAmount("amount", b.Amount); err != nil {
		return err
	}
	switch b.Period {
	case models.BudgetWeekly, models.BudgetMonthly:
		return nil
	default:
		return fmt.Errorf("period must be %q or %q", models.BudgetWeekly, models.BudgetMonthly)
	}
}

// ValidateRuleName trims name and checks its length.
func ValidateRuleName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("rule name is required")
	}
	if utf8.RuneCountInString(name) > maxRuleName {
		return "", fmt.Errorf("rule name must be at most %d characters", maxRuleName)
	}
	return name, nil
}
