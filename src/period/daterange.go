package period

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Query parameter names shared by the list, analytics and export endpoints.
const (
	FromParam = "from_date"
	ToParam   = "to_date"
)

// DateRange is an inclusive span of calendar dates. A zero From or To leaves
// that side unbounded.
type DateRange struct {
	From civil.Date
	To   civil.Date
}

// Today returns the calendar date of now in UTC, the single reference zone
// for every range computation.
func Today(now time.Time) civil.Date {
	return civil.DateOf(now.UTC())
}

// IsMalformed reports whether both bounds are set and From is after To.
func (r DateRange) IsMalformed() bool {
	return !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To)
}

// IsUnbounded reports whether neither bound is set.
func (r DateRange) IsUnbounded() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether d falls inside the range. A malformed range
// contains nothing.
func (r DateRange) Contains(d civil.Date) bool {
	if r.IsMalformed() {
		return false
	}
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// QueryValues renders the range as from_date/to_date parameters. Unbounded
// sides are omitted.
func (r DateRange) QueryValues() url.Values {
	v := url.Values{}
	if !r.From.IsZero() {
		v.Set(FromParam, r.From.String())
	}
	if !r.To.IsZero() {
		v.Set(ToParam, r.To.String())
	}
	return v
}

func (r DateRange) String() string {
	from, to := "", ""
	if !r.From.IsZero() {
		from = r.From.String()
	}
	if !r.To.IsZero() {
		to = r.To.String()
	}
	return from + ".." + to
}

type dateRangeJSON struct {
	From *civil.Date `json:"from"`
	To   *civil.Date `json:"to"`
}

func (r DateRange) MarshalJSON() ([]byte, error) {
	var out dateRangeJSON
	if !r.From.IsZero() {
		out.From = &r.From
	}
	if !r.To.IsZero() {
		out.To = &r.To
	}
	return json.Marshal(out)
}

func (r *DateRange) UnmarshalJSON(data []byte) error {
	var in struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	parsed, err := ParseDateRange(in.From, in.To)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseDate parses a YYYY-MM-DD value. An empty string yields the zero date.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseDateRange builds a range from two optional YYYY-MM-DD values.
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := ParseDate(from)
	if err != nil {
		return DateRange{}, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{From: f, To: t}, nil
}

// ParseWeekStart accepts an English weekday name, case-insensitively.
func ParseWeekStart(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("invalid week start %q", s)
}

// WeekBounds returns the seven-day week containing d, starting on weekStart.
func WeekBounds(d civil.Date, weekStart time.Weekday) DateRange {
	back := (int(d.Weekday()) - int(weekStart) + 7) % 7
	from := d.AddDays(-back)
	return DateRange{From: from, To: from.AddDays(6)}
}

// MonthBounds returns the first and last day of d's calendar month.
func MonthBounds(d civil.Date) DateRange {
	first := civil.Date{Year: d.Year, Month: d.Month, Day: 1}
	return DateRange{From: first, To: first.AddMonths(1).AddDays(-1)}
}

// ShiftWeeks moves d by exactly n weeks.
func ShiftWeeks(d civil.Date, n int) civil.Date {
	return d.AddDays(7 * n)
}

// ShiftMonths moves d by n calendar months. The day is clamped to the target
// month's length, so Jan 31 shifted by one month is Feb 28 (or 29).
func ShiftMonths(d civil.Date, n int) civil.Date {
	months := d.Year*12 + int(d.Month) - 1 + n
	year := floorDiv(months, 12)
	month := time.Month(months-year*12) + 1
	day := d.Day
	if last := daysIn(year, month); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

func daysIn(year int, month time.Month) int {
	return MonthBounds(civil.Date{Year: year, Month: month, Day: 1}).To.Day
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
