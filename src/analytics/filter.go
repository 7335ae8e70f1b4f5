package analytics

import (
	"fmt"
	"spendtracker/src/models"
	"spendtracker/src/period"
	"strconv"
	"strings"
)

// CategoryParam is the query parameter carrying a CategorySelector.
const CategoryParam = "category_id"

// CategorySelector picks either every category or exactly one. The zero value
// selects every category.
type CategorySelector struct {
	id  int64
	set bool
}

var AllCategories = CategorySelector{}

// OnlyCategory selects transactions assigned to id.
func OnlyCategory(id int64) CategorySelector {
	return CategorySelector{id: id, set: true}
}

// ParseCategorySelector accepts "all", the empty string or a numeric id.
func ParseCategorySelector(s string) (CategorySelector, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllCategories, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return CategorySelector{}, fmt.Errorf("invalid category id %q", s)
	}
	return OnlyCategory(id), nil
}

func (c CategorySelector) IsAll() bool {
	return !c.set
}

// ID returns the selected category id, or false when every category is selected.
func (c CategorySelector) ID() (int64, bool) {
	return c.id, c.set
}

func (c CategorySelector) String() string {
	if !c.set {
		return "all"
	}
	return strconv.FormatInt(c.id, 10)
}

// Matches reports whether t belongs to the selection. Uncategorized
// transactions only match AllCategories.
func (c CategorySelector) Matches(t models.Transaction) bool {
	if !c.set {
		return true
	}
	return t.CategoryID != nil && *t.CategoryID == c.id
}

// Filter keeps the transactions matching both the category selection and the
// date range, in their original order. txns is never modified. A malformed
// range yields an empty result.
func Filter(txns []models.Transaction, category CategorySelector, r period.DateRange) []models.Transaction {
	out := make([]models.Transaction, 0, len(txns))
	if r.IsMalformed() {
		return out
	}
	for _, t := range txns {
		if category.Matches(t) && r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
