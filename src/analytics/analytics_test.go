package analytics

import (
	"spendtracker/src/models"
	"spendtracker/src/period"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(id int64, day string, cat *int64, credited, debited, balance string) models.Transaction {
	d, err := civil.ParseDate(day)
	if err != nil {
		panic(err)
	}
	t := models.Transaction{ID: id, Date: d, CategoryID: cat, Description: "t"}
	if credited != "" {
		t.Credited = dec(credited)
	}
	if debited != "" {
		t.Debited = dec(debited)
	}
	if balance != "" {
		t.Balance = dec(balance)
	}
	return t
}

func mustRange(t *testing.T, from, to string) period.DateRange {
	t.Helper()
	r, err := period.ParseDateRange(from, to)
	require.NoError(t, err)
	return r
}

func sample() []models.Transaction {
	return []models.Transaction{
		txn(1, "2025-01-05", ptr(int64(1)), "1000", "", "1000"),
		txn(2, "2025-01-20", ptr(int64(2)), "", "300", "700"),
		txn(3, "2025-02-02", ptr(int64(2)), "", "50.25", "649.75"),
		txn(4, "2025-02-10", nil, "", "20", "629.75"),
		txn(5, "2025-02-10", ptr(int64(99)), "", "9.75", "620"),
	}
}

func categories() []models.Category {
	return []models.Category{
		{ID: 1, Name: "Salary", Color: "#28a745"},
		{ID: 2, Name: "Groceries", Color: "#ffc107"},
		{ID: 3, Name: "Rent", Color: "#dc3545"},
	}
}

func TestParseCategorySelector(t *testing.T) {
	for _, in := range []string{"", "all", "ALL"} {
		c, err := ParseCategorySelector(in)
		require.NoError(t, err)
		assert.True(t, c.IsAll())
		assert.Equal(t, "all", c.String())
	}

	c, err := ParseCategorySelector("42")
	require.NoError(t, err)
	id, ok := c.ID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "42", c.String())

	_, err = ParseCategorySelector("groceries")
	assert.Error(t, err)
}

func TestFilterAllUnboundedReturnsEverything(t *testing.T) {
	txns := sample()
	got := Filter(txns, AllCategories, period.DateRange{})
	assert.Equal(t, txns, got)
}

func TestFilterByCategoryAndRange(t *testing.T) {
	txns := sample()
	got := Filter(txns, OnlyCategory(2), mustRange(t, "2025-01-01", "2025-01-31"))
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	got = Filter(txns, AllCategories, mustRange(t, "2025-02-01", ""))
	assert.Equal(t, []int64{3, 4, 5}, ids(got))

	got = Filter(txns, AllCategories, mustRange(t, "", "2025-01-05"))
	assert.Equal(t, []int64{1}, ids(got))
}

func TestFilterUncategorizedOnlyMatchesAll(t *testing.T) {
	got := Filter(sample(), OnlyCategory(0), period.DateRange{})
	assert.Empty(t, got)
}

func TestFilterMalformedRangeIsEmpty(t *testing.T) {
	got := Filter(sample(), AllCategories, mustRange(t, "2025-02-01", "2025-01-01"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterPreservesOrderAndInput(t *testing.T) {
	txns := []models.Transaction{
		txn(9, "2025-03-01", nil, "1", "", ""),
		txn(2, "2025-01-01", nil, "1", "", ""),
		txn(5, "2025-02-01", nil, "1", "", ""),
	}
	before := append([]models.Transaction(nil), txns...)
	got := Filter(txns, AllCategories, mustRange(t, "2025-01-15", ""))
	assert.Equal(t, []int64{9, 5}, ids(got))
	assert.Equal(t, before, txns)
}

func TestSummarizeScenario(t *testing.T) {
	txns := Filter(sample(), AllCategories, period.MonthBounds(civil.Date{Year: 2025, Month: 1, Day: 15}))
	s := Summarize(txns)
	assert.True(t, s.TotalCredited.Equal(dec("1000")))
	assert.True(t, s.TotalDebited.Equal(dec("300")))
	assert.True(t, s.NetAmount.Equal(dec("700")))
	assert.True(t, s.CurrentBalance.Equal(dec("700")))
	assert.Equal(t, 2, s.TransactionCount)
	require.NotNil(t, s.ExpenseRatio)
	assert.Equal(t, "0.3", s.ExpenseRatio.String())
	require.NotNil(t, s.SavingsRate)
	assert.Equal(t, "70", s.SavingsRate.String())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.TotalCredited.IsZero())
	assert.True(t, s.TotalDebited.IsZero())
	assert.True(t, s.NetAmount.IsZero())
	assert.True(t, s.CurrentBalance.IsZero())
	assert.Zero(t, s.TransactionCount)
	assert.Nil(t, s.ExpenseRatio)
	assert.Nil(t, s.SavingsRate)
}

func TestSummarizeNoIncomeOmitsRatios(t *testing.T) {
	s := Summarize([]models.Transaction{txn(1, "2025-01-01", nil, "", "10", "-10")})
	assert.Nil(t, s.ExpenseRatio)
	assert.Nil(t, s.SavingsRate)
	assert.True(t, s.NetAmount.Equal(dec("-10")))
}

func TestSummarizeLatestBalanceTieBreaksOnID(t *testing.T) {
	txns := []models.Transaction{
		txn(7, "2025-02-10", nil, "", "5", "95"),
		txn(3, "2025-02-10", nil, "", "5", "90"),
		txn(1, "2025-01-01", nil, "100", "", "100"),
	}
	assert.True(t, Summarize(txns).CurrentBalance.Equal(dec("95")))
}

func TestSummarizeNetInvariant(t *testing.T) {
	txns := sample()
	for i := 0; i <= len(txns); i++ {
		s := Summarize(txns[:i])
		assert.True(t, s.TotalCredited.Sub(s.TotalDebited).Equal(s.NetAmount))
	}
}

func TestSummarizeCountsBothSides(t *testing.T) {
	s := Summarize([]models.Transaction{txn(1, "2025-01-01", nil, "10", "4", "6")})
	assert.True(t, s.TotalCredited.Equal(dec("10")))
	assert.True(t, s.TotalDebited.Equal(dec("4")))
}

func TestBreakdownByCategory(t *testing.T) {
	got := BreakdownByCategory(sample(), categories(), MetricDebited)
	require.Len(t, got, 3)

	assert.Equal(t, "Groceries", got[0].CategoryName)
	assert.True(t, got[0].Total.Equal(dec("350.25")))
	assert.Equal(t, 2, got[0].TransactionCount)
	assert.Equal(t, "#ffc107", got[0].Color)

	assert.Equal(t, UncategorizedName, got[1].CategoryName)
	assert.Nil(t, got[1].CategoryID)
	assert.Equal(t, UncategorizedColor, got[1].Color)
	assert.True(t, got[1].Total.Equal(dec("29.75")))
	assert.Equal(t, 2, got[1].TransactionCount)

	assert.Equal(t, "Salary", got[2].CategoryName)
	assert.True(t, got[2].Total.IsZero())
	assert.True(t, got[2].TotalCredited.Equal(dec("1000")))

	// Rent has no transactions and is omitted.
	for _, e := range got {
		assert.NotEqual(t, "Rent", e.CategoryName)
	}
}

func TestBreakdownTotalsMatchSummary(t *testing.T) {
	txns := sample()
	sum := decimal.Zero
	for _, e := range BreakdownByCategory(txns, categories(), MetricDebited) {
		sum = sum.Add(e.Total)
	}
	assert.True(t, sum.Equal(Summarize(txns).TotalDebited))
}

func TestBreakdownOrderingTies(t *testing.T) {
	txns := []models.Transaction{
		txn(1, "2025-01-01", nil, "", "10", ""),
		txn(2, "2025-01-01", ptr(int64(3)), "", "10", ""),
		txn(3, "2025-01-01", ptr(int64(2)), "", "10", ""),
	}
	got := BreakdownByCategory(txns, categories(), MetricDebited)
	require.Len(t, got, 3)
	assert.Equal(t, "Groceries", got[0].CategoryName)
	assert.Equal(t, "Rent", got[1].CategoryName)
	assert.Equal(t, UncategorizedName, got[2].CategoryName)
	for _, e := range got {
		require.NotNil(t, e.Share)
		assert.Equal(t, "33.33", e.Share.String())
	}
}

func TestBreakdownUnknownCategoryWithNoCategories(t *testing.T) {
	got := BreakdownByCategory([]models.Transaction{txn(1, "2025-01-01", ptr(int64(5)), "", "12.5", "")}, nil, MetricDebited)
	require.Len(t, got, 1)
	assert.Equal(t, UncategorizedName, got[0].CategoryName)
	assert.True(t, got[0].Total.Equal(dec("12.5")))
}

func TestBreakdownMetrics(t *testing.T) {
	txns := []models.Transaction{
		txn(1, "2025-01-01", ptr(int64(1)), "100", "", ""),
		txn(2, "2025-01-02", ptr(int64(1)), "", "30", ""),
	}
	credited := BreakdownByCategory(txns, categories(), MetricCredited)
	require.Len(t, credited, 1)
	assert.True(t, credited[0].Total.Equal(dec("100")))

	net := BreakdownByCategory(txns, categories(), MetricNet)
	require.Len(t, net, 1)
	assert.True(t, net[0].Total.Equal(dec("70")))
}

func TestBreakdownZeroTotalHasNoShare(t *testing.T) {
	got := BreakdownByCategory([]models.Transaction{txn(1, "2025-01-01", ptr(int64(1)), "5", "", "")}, categories(), MetricDebited)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Share)
}

func TestBreakdownEmpty(t *testing.T) {
	got := BreakdownByCategory(nil, categories(), MetricDebited)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricDebited, m)
	m, err = ParseMetric("income")
	require.NoError(t, err)
	assert.Equal(t, MetricCredited, m)
	_, err = ParseMetric("median")
	assert.Error(t, err)
}

func TestTrendByMonth(t *testing.T) {
	txns := append(sample(), txn(6, "2024-11-30", nil, "40", "", ""))
	got := TrendByMonth(txns)
	require.Len(t, got, 3)

	assert.Equal(t, "2024-11", got[0].Month)
	assert.True(t, got[0].Net.Equal(dec("40")))

	assert.Equal(t, "2025-01", got[1].Month)
	assert.True(t, got[1].Credited.Equal(dec("1000")))
	assert.True(t, got[1].Debited.Equal(dec("300")))
	assert.True(t, got[1].Net.Equal(dec("700")))
	assert.Equal(t, 2, got[1].TransactionCount)

	assert.Equal(t, "2025-02", got[2].Month)
	assert.True(t, got[2].Debited.Equal(dec("80")))

	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Month, got[i].Month)
	}
}

func TestTrendByMonthNoGapFilling(t *testing.T) {
	got := TrendByMonth([]models.Transaction{
		txn(1, "2025-01-10", nil, "1", "", ""),
		txn(2, "2025-04-10", nil, "1", "", ""),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01", got[0].Month)
	assert.Equal(t, "2025-04", got[1].Month)
	assert.Empty(t, TrendByMonth(nil))
}

func ids(txns []models.Transaction) []int64 {
	out := make([]int64, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}
