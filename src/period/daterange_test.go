package period

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name      string
		day       string
		weekStart time.Weekday
		from, to  string
	}{
		{"monday start mid week", "2025-01-08", time.Monday, "2025-01-06", "2025-01-12"},
		{"monday start on monday", "2025-01-06", time.Monday, "2025-01-06", "2025-01-12"},
		{"monday start on sunday", "2025-01-12", time.Monday, "2025-01-06", "2025-01-12"},
		{"sunday start", "2025-01-08", time.Sunday, "2025-01-05", "2025-01-11"},
		{"crosses year", "2025-01-01", time.Monday, "2024-12-30", "2025-01-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := WeekBounds(date(t, tt.day), tt.weekStart)
			assert.Equal(t, tt.from, r.From.String())
			assert.Equal(t, tt.to, r.To.String())
			assert.Equal(t, 6, r.To.DaysSince(r.From))
		})
	}
}

func TestWeekBoundsAlwaysSevenDays(t *testing.T) {
	start := date(t, "2023-12-01")
	for i := 0; i < 800; i++ {
		d := start.AddDays(i)
		for ws := time.Sunday; ws <= time.Saturday; ws++ {
			r := WeekBounds(d, ws)
			require.Equal(t, 6, r.To.DaysSince(r.From))
			require.Equal(t, ws, r.From.Weekday())
			require.True(t, r.Contains(d))
		}
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		day, from, to string
	}{
		{"2025-01-15", "2025-01-01", "2025-01-31"},
		{"2025-02-28", "2025-02-01", "2025-02-28"},
		{"2024-02-10", "2024-02-01", "2024-02-29"},
		{"2025-04-01", "2025-04-01", "2025-04-30"},
		{"2025-12-31", "2025-12-01", "2025-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			r := MonthBounds(date(t, tt.day))
			assert.Equal(t, tt.from, r.From.String())
			assert.Equal(t, tt.to, r.To.String())
			span := r.To.DaysSince(r.From)
			assert.GreaterOrEqual(t, span, 27)
			assert.LessOrEqual(t, span, 30)
		})
	}
}

func TestShiftWeeks(t *testing.T) {
	d := date(t, "2025-01-08")
	assert.Equal(t, "2025-01-15", ShiftWeeks(d, 1).String())
	assert.Equal(t, "2024-12-25", ShiftWeeks(d, -2).String())
	for n := -60; n <= 60; n++ {
		assert.Equal(t, d, ShiftWeeks(ShiftWeeks(d, n), -n))
	}
}

func TestShiftMonths(t *testing.T) {
	tests := []struct {
		day  string
		n    int
		want string
	}{
		{"2025-01-15", 1, "2025-02-15"},
		{"2025-01-31", 1, "2025-02-28"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2025-03-31", -1, "2025-02-28"},
		{"2025-01-15", -1, "2024-12-15"},
		{"2025-01-15", -13, "2023-12-15"},
		{"2025-11-30", 3, "2026-02-28"},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			assert.Equal(t, tt.want, ShiftMonths(date(t, tt.day), tt.n).String())
		})
	}
}

func TestShiftMonthsReversibleAwayFromMonthEnd(t *testing.T) {
	d := date(t, "2025-01-28")
	for n := -30; n <= 30; n++ {
		assert.Equal(t, d, ShiftMonths(ShiftMonths(d, n), -n), "n=%d", n)
	}

	// Clamping loses the original day.
	end := date(t, "2025-01-31")
	assert.NotEqual(t, end, ShiftMonths(ShiftMonths(end, 1), -1))
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{From: date(t, "2025-01-06"), To: date(t, "2025-01-12")}
	assert.True(t, r.Contains(date(t, "2025-01-06")))
	assert.True(t, r.Contains(date(t, "2025-01-12")))
	assert.False(t, r.Contains(date(t, "2025-01-05")))
	assert.False(t, r.Contains(date(t, "2025-01-13")))

	assert.True(t, DateRange{}.Contains(date(t, "1999-01-01")))
	assert.True(t, DateRange{From: date(t, "2025-01-06")}.Contains(date(t, "2030-01-01")))
	assert.True(t, DateRange{To: date(t, "2025-01-06")}.Contains(date(t, "2000-01-01")))

	malformed := DateRange{From: date(t, "2025-02-01"), To: date(t, "2025-01-01")}
	assert.True(t, malformed.IsMalformed())
	assert.False(t, malformed.Contains(date(t, "2025-01-15")))
}

func TestDateRangeQueryValues(t *testing.T) {
	r := DateRange{From: date(t, "2025-01-06"), To: date(t, "2025-01-12")}
	assert.Equal(t, "from_date=2025-01-06&to_date=2025-01-12", r.QueryValues().Encode())
	assert.Equal(t, "to_date=2025-01-12", DateRange{To: r.To}.QueryValues().Encode())
	assert.Empty(t, DateRange{}.QueryValues().Encode())
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2025-01-06", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", r.From.String())
	assert.True(t, r.To.IsZero())

	_, err = ParseDateRange("01/06/2025", "")
	assert.Error(t, err)
	_, err = ParseDateRange("", "2025-02-30")
	assert.Error(t, err)
}

func TestDateRangeJSON(t *testing.T) {
	r := DateRange{From: date(t, "2025-01-06")}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"2025-01-06","to":null}`, string(b))

	var back DateRange
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r, back)
}

func TestParseWeekStart(t *testing.T) {
	d, err := ParseWeekStart("monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)

	d, err = ParseWeekStart("Sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d)

	_, err = ParseWeekStart("funday")
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2025, time.January, 7, 5, 0, 0, 0, loc)
	assert.Equal(t, "2025-01-06", Today(now).String())
}
