// Package currency renders money amounts for display.
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const DefaultCode = "USD"

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"CAD": "CA$",
	"AUD": "A$",
}

// Languages that write the symbol after the amount.
var suffixLanguages = map[string]bool{
	"de": true, "fr": true, "es": true, "it": true, "nl": true, "pt": true,
	"pl": true, "sv": true, "da": true, "fi": true, "nb": true, "cs": true,
}

// Formatter renders amounts with two decimals, locale digit grouping and a
// currency symbol placed per locale convention.
type Formatter struct {
	tag      language.Tag
	printer  *message.Printer
	suffix   bool
	fallback string
}

// NewFormatter builds a formatter for a BCP 47 locale such as "en-US" or
// "de-DE". defaultCode is used when Format is called with an empty code.
func NewFormatter(locale, defaultCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	if defaultCode == "" {
		defaultCode = DefaultCode
	}
	if _, err := ParseCode(defaultCode); err != nil {
		return nil, err
	}
	base, _ := tag.Base()
	return &Formatter{
		tag:      tag,
		printer:  message.NewPrinter(tag),
		suffix:   suffixLanguages[base.String()],
		fallback: strings.ToUpper(defaultCode),
	}, nil
}

// MustFormatter is NewFormatter for static configuration.
func MustFormatter(locale, defaultCode string) *Formatter {
	f, err := NewFormatter(locale, defaultCode)
	if err != nil {
		panic(err)
	}
	return f
}

var defaultFormatter = MustFormatter("en-US", DefaultCode)

// Format renders amount in code using US English conventions.
func Format(amount decimal.Decimal, code string) string {
	return defaultFormatter.Format(amount, code)
}

// ParseCode validates an ISO 4217 code and returns it upper-cased.
func ParseCode(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("invalid currency code %q", code)
	}
	return unit.String(), nil
}

func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Code returns the upper-cased code Format would use for code.
func (f *Formatter) Code(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return f.fallback
	}
	return code
}

// Format rounds amount half away from zero to two decimals. A value that
// rounds to zero is printed without a sign.
func (f *Formatter) Format(amount decimal.Decimal, code string) string {
	code = f.Code(code)
	symbol, ok := symbols[code]
	if !ok {
		symbol = code
	}

	rounded := amount.Round(2)
	digits := f.printer.Sprint(number.Decimal(rounded.Abs().InexactFloat64(), number.Scale(2)))

	sign := ""
	if rounded.Sign() < 0 {
		sign = "-"
	}
	if f.suffix {
		return sign + digits + " " + symbol
	}
	if !ok {
		return sign + symbol + " " + digits
	}
	return sign + symbol + digits
}

// FormatAll formats every amount of a named set, for responses that carry
// display strings next to raw values.
func (f *Formatter) FormatAll(code string, amounts map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(amounts))
	for k, v := range amounts {
		out[k] = f.Format(v, code)
	}
	return out
}
