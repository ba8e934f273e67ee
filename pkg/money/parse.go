package money

import (
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	amountNoise    = regexp.MustCompile(`[^0-9,.\-]`)
	numericPattern = regexp.MustCompile(`^[-+]?(?:R\$)?[-+]?(?:\d{1,3}(?:\.\d{3})+|\d+)(?:[.,]\d+)?-?$`)
)

// absentMarkers are cell values that mean "no amount" rather than zero.
var absentMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"null": {},
	"-":    {},
}

// ParseAmount converts a Brazilian-formatted currency string ("R$ 1.234,56",
// "-45,90", "1500") into a signed decimal. The boolean is false when the input
// is blank, a null marker, or does not survive cleaning.
//
// Periods are always thousand separators and the comma is the decimal mark.
// A trailing minus ("45,90-") is accepted as a debit marker.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	if _, ok := absentMarkers[strings.ToLower(s)]; ok {
		return decimal.Zero, false
	}

	s = amountNoise.ReplaceAllString(s, "")
	if strings.HasSuffix(s, "-") && !strings.HasPrefix(s, "-") {
		s = "-" + strings.TrimSuffix(s, "-")
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || s == "-" || s == "." {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// LooksNumeric reports whether a cell has the shape of a monetary value.
// Dates and free text are rejected; it is used to sniff amount columns.
func LooksNumeric(raw string) bool {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return false
	}
	return numericPattern.MatchString(s)
}

// FormatPlain renders d the way statements print it, without grouping
// ("-1500,00"). At least two decimals are shown and sub-cent digits are kept,
// so ParseAmount(FormatPlain(d)) equals d.
func FormatPlain(d decimal.Decimal) string {
	s := d.String()
	if i := strings.IndexByte(s, '.'); i < 0 || len(s)-i-1 < 2 {
		s = d.StringFixed(2)
	}
	return strings.Replace(s, ".", ",", 1)
}

// Formatter renders decimal amounts for display using go-money's formatter
// with Brazilian separators ("R$ 1.234,56", "-R$ 45,90").
type Formatter struct {
	f        *money.Formatter
	currency string
}

// NewFormatter builds a display formatter for the given symbol. An empty
// symbol falls back to "R$".
func NewFormatter(symbol string) *Formatter {
	if symbol == "" {
		symbol = "R$"
	}
	return &Formatter{
		f:        money.NewFormatter(2, ",", ".", symbol, "$ 1"),
		currency: DefaultCurrency,
	}
}

// Format renders d rounded to cents.
func (f *Formatter) Format(d decimal.Decimal) string {
	return f.f.Format(NewFromDecimal(d, f.currency).Amount())
}
