package clean

// domain.go holds field-specific cleaners for the transaction schema. These
// are pure functions invoked explicitly by the validator and the importer;
// the generic pipeline never runs them.

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Canonical transaction kinds.
const (
	KindPayment    = "payment"
	KindCharge     = "charge"
	KindAdjustment = "adjustment"
	KindRefund     = "refund"
)

// Kinds lists the canonical transaction kinds.
var Kinds = []string{KindPayment, KindCharge, KindAdjustment, KindRefund}

// kindAliases maps lowercased abbreviations and variants to canonical kinds.
var kindAliases = map[string]string{
	"payment":    KindPayment,
	"pay":        KindPayment,
	"pmt":        KindPayment,
	"paid":       KindPayment,
	"charge":     KindCharge,
	"chg":        KindCharge,
	"debit":      KindCharge,
	"fee":        KindCharge,
	"adjustment": KindAdjustment,
	"adjust":     KindAdjustment,
	"adj":        KindAdjustment,
	"refund":     KindRefund,
	"rfnd":       KindRefund,
	"rfd":        KindRefund,
	"return":     KindRefund,
}

// NormalizeKind maps a raw transaction-kind value to one of the four
// canonical kinds. Matching is case- and whitespace-insensitive and covers
// common abbreviations. Returns ok=false rather than guessing when the value
// matches nothing.
func NormalizeKind(s string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	kind, ok := kindAliases[key]
	return kind, ok
}

// currencyRegex matches leading currency symbols and spaces.
var currencyRegex = regexp.MustCompile(`[$€£¥\s]`)

// Amount cleans a monetary string into a decimal value.
//
// Currency symbols, spaces and thousands commas are stripped. A leading
// minus sign or accounting-style parentheses mark the value negative.
// Returns ok=false for anything that does not parse as a number.
func Amount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = currencyRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", "")

	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// digitRegex matches anything that is not a decimal digit.
var digitRegex = regexp.MustCompile(`\D`)

// Phone extracts the digits of a phone number, folding a leading country
// code 1 on 11-digit numbers down to the 10-digit national form.
func Phone(s string) string {
	digits := digitRegex.ReplaceAllString(s, "")
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	return digits
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name collapses whitespace runs and title-cases each word.
func Name(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// numericDateRegex matches D/M/Y or M/D/Y dates with /, - or . separators.
var numericDateRegex = regexp.MustCompile(`^(\d{1,2})([/\-.])(\d{1,2})[/\-.](\d{4})$`)

// isoishDateRegex matches year-first dates with any of the three separators.
var isoishDateRegex = regexp.MustCompile(`^(\d{4})([/\-.])(\d{1,2})[/\-.](\d{1,2})$`)

// fallbackDateLayouts are tried when the value matches neither numeric form.
var fallbackDateLayouts = []string{
	"Jan 2, 2006", "2 Jan 2006", "January 2, 2006", "20060102",
}

// AutoFormatDate reformats recognizable dates to ISO YYYY-MM-DD, leaving
// unrecognizable values unchanged.
//
// Ambiguous two-digit day/month order is resolved by the dayFirst flag:
// false reads 01/02/2024 as January 2, true as February 1. When the chosen
// interpretation is impossible (month > 12) the other order is tried before
// giving up.
func AutoFormatDate(s string, dayFirst bool) string {
	s2 := strings.TrimSpace(s)
	if s2 == "" {
		return s
	}

	// Already ISO.
	if t, err := time.Parse("2006-01-02", s2); err == nil {
		return t.Format("2006-01-02")
	}

	if m := isoishDateRegex.FindStringSubmatch(s2); m != nil {
		if t, ok := makeDate(m[1], m[3], m[4]); ok {
			return t.Format("2006-01-02")
		}
		return s
	}

	if m := numericDateRegex.FindStringSubmatch(s2); m != nil {
		first, second, year := m[1], m[3], m[4]

		month, day := first, second
		if dayFirst {
			month, day = second, first
		}

		if t, ok := makeDate(year, month, day); ok {
			return t.Format("2006-01-02")
		}
		// The chosen order was impossible; try the swapped reading.
		if t, ok := makeDate(year, day, month); ok {
			return t.Format("2006-01-02")
		}
		return s
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s2); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return s
}

// makeDate builds a date from numeric strings, rejecting out-of-range
// components rather than letting time.Date normalize them.
func makeDate(year, month, day string) (time.Time, bool) {
	y, m, d := atoi(year), atoi(month), atoi(day)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
