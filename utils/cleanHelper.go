package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Field cleaners for raw spreadsheet cells. All three are total functions:
// malformed input degrades to a zero value, it never fails the row.

var (
	currencyPattern = regexp.MustCompile(`[₹$€£,\s]`)
	alphaPattern    = regexp.MustCompile(`[a-zA-Z\s]`)
)

// CleanPrice normalizes a raw price cell to a decimal amount.
//
// Currency symbols, thousands separators and unit text are stripped first.
// A remaining "low-high" range collapses to the higher bound (price lists
// quote ranges low to high; stocking valuation takes the conservative end).
// A parenthesized amount is an accounting negative: "(50)" -> -50.
// Anything unparseable after stripping returns zero.
func CleanPrice(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	s = currencyPattern.ReplaceAllString(s, "")
	s = alphaPattern.ReplaceAllString(s, "")

	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		low, errLow := decimal.NewFromString(parts[0])
		high, errHigh := decimal.NewFromString(parts[1])
		if errLow != nil || errHigh != nil {
			return decimal.Zero
		}
		if low.GreaterThan(high) {
			return low
		}
		return high
	}

	if strings.Contains(s, "(") && strings.Contains(s, ")") {
		s = strings.ReplaceAll(s, "(", "-")
		s = strings.ReplaceAll(s, ")", "")
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return value
}

// CleanText trims surrounding whitespace; empty or missing cells become "".
func CleanText(raw string) string {
	return strings.TrimSpace(raw)
}

// CleanQuantity parses a raw quantity cell as a float and truncates to an
// integer. "12.0", "12.7" and "12" all yield 12; anything else yields 0.
func CleanQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
