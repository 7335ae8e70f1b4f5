package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

type Mode string

const (
	ModeAll     Mode = "all"
	ModeCustom  Mode = "custom"
	ModeWeekly  Mode = "weekly"
	ModeMonthly Mode = "monthly"
)

const AllTimeLabel = "All Time"

var (
	ErrInvalidMode           = errors.New("mode must be one of all, custom, weekly, monthly")
	ErrNavigationUnsupported = errors.New("navigation is only available in weekly and monthly mode")
	ErrInvalidDirection      = errors.New("direction must be -1 or 1")
	ErrNotCustom             = errors.New("a manual range can only be set in custom mode")
)

// ParseMode accepts a mode name, case-insensitively. The empty string maps to
// ModeAll. The front-end aliases "week" and "month" are accepted as well.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ModeAll, nil
	case "custom":
		return ModeCustom, nil
	case "weekly", "week":
		return ModeWeekly, nil
	case "monthly", "month":
		return ModeMonthly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Selection is the serializable period state passed through every request.
// From and To are only meaningful in custom mode, Offset only in weekly and
// monthly mode.
type Selection struct {
	Mode   Mode
	Offset int
	From   civil.Date
	To     civil.Date
}

// ParseSelection reads mode, offset, from_date and to_date from their raw
// query string values.
func ParseSelection(mode, offset, from, to string) (Selection, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return Selection{}, err
	}
	sel := Selection{Mode: m}
	if offset = strings.TrimSpace(offset); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			return Selection{}, fmt.Errorf("invalid offset %q", offset)
		}
		sel.Offset = n
	}
	if m == ModeCustom {
		r, err := ParseDateRange(from, to)
		if err != nil {
			return Selection{}, err
		}
		sel.From, sel.To = r.From, r.To
	}
	return sel.normalized(), nil
}

// normalized drops the fields the mode ignores.
func (s Selection) normalized() Selection {
	switch s.Mode {
	case ModeWeekly, ModeMonthly:
		s.From, s.To = civil.Date{}, civil.Date{}
	case ModeCustom:
		s.Offset = 0
	default:
		s.Mode = ModeAll
		s.Offset = 0
		s.From, s.To = civil.Date{}, civil.Date{}
	}
	return s
}

// Resolve computes the date range selected by s relative to today.
func Resolve(s Selection, today civil.Date, weekStart time.Weekday) DateRange {
	switch s.Mode {
	case ModeCustom:
		return DateRange{From: s.From, To: s.To}
	case ModeWeekly:
		return WeekBounds(ShiftWeeks(today, s.Offset), weekStart)
	case ModeMonthly:
		first := civil.Date{Year: today.Year, Month: today.Month, Day: 1}
		return MonthBounds(ShiftMonths(first, s.Offset))
	}
	return DateRange{}
}

// Label renders the human readable title of the period selected by s.
func Label(s Selection, today civil.Date, weekStart time.Weekday) string {
	r := Resolve(s, today, weekStart)
	switch s.Mode {
	case ModeWeekly:
		return fmt.Sprintf("%s - %s", formatDate(r.From, "Jan 02"), formatDate(r.To, "Jan 02, 2006"))
	case ModeMonthly:
		return formatDate(r.From, "January 2006")
	case ModeCustom:
		return customLabel(r)
	}
	return AllTimeLabel
}

func customLabel(r DateRange) string {
	const layout = "Jan 02, 2006"
	switch {
	case !r.From.IsZero() && !r.To.IsZero():
		return fmt.Sprintf("%s - %s", formatDate(r.From, layout), formatDate(r.To, layout))
	case !r.From.IsZero():
		return "Since " + formatDate(r.From, layout)
	case !r.To.IsZero():
		return "Until " + formatDate(r.To, layout)
	}
	return AllTimeLabel
}

func formatDate(d civil.Date, layout string) string {
	return d.In(time.UTC).Format(layout)
}

// Controller owns one Selection and applies the period transitions to it.
// A Controller is not safe for concurrent use.
type Controller struct {
	sel       Selection
	weekStart time.Weekday
}

func NewController(weekStart time.Weekday) *Controller {
	return &Controller{sel: Selection{Mode: ModeAll}, weekStart: weekStart}
}

// ControllerFrom resumes a controller from a previously serialized selection.
func ControllerFrom(sel Selection, weekStart time.Weekday) *Controller {
	return &Controller{sel: sel.normalized(), weekStart: weekStart}
}

func (c *Controller) Selection() Selection {
	return c.sel
}

func (c *Controller) WeekStart() time.Weekday {
	return c.weekStart
}

// SetMode switches mode and resets the offset. Manual dates are dropped when
// leaving custom mode, so returning to custom starts from an empty range.
func (c *Controller) SetMode(m Mode) error {
	parsed, err := ParseMode(string(m))
	if err != nil {
		return err
	}
	if parsed == ModeCustom && c.sel.Mode == ModeCustom {
		return nil
	}
	c.sel = Selection{Mode: parsed}
	return nil
}

// SetCustomRange stores the manual bounds. Either side may be zero.
func (c *Controller) SetCustomRange(from, to civil.Date) error {
	if c.sel.Mode != ModeCustom {
		return ErrNotCustom
	}
	c.sel.From, c.sel.To = from, to
	return nil
}

// Navigate moves one period backwards (-1) or forwards (+1).
func (c *Controller) Navigate(direction int) error {
	if c.sel.Mode != ModeWeekly && c.sel.Mode != ModeMonthly {
		return ErrNavigationUnsupported
	}
	if direction != -1 && direction != 1 {
		return ErrInvalidDirection
	}
	c.sel.Offset += direction
	return nil
}

func (c *Controller) CurrentRange(today civil.Date) DateRange {
	return Resolve(c.sel, today, c.weekStart)
}

func (c *Controller) CurrentLabel(today civil.Date) string {
	return Label(c.sel, today, c.weekStart)
}
