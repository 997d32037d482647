// Package number extracts decimal numbers from scraped text written with
// either the English (1,234.56) or the continental (1.234,56) convention.
package number

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// token matches an optionally signed number: either grouped by thousands or
// a plain run of digits, then an optional fraction. Leftmost-longest
// matching keeps "1234.56" and "1.234567" whole.
var token = regexp.MustCompile(`[-+]?(?:\d{1,3}(?:[.,]\d{3})+|\d+)(?:[.,]\d+)?`)

func init() {
	token.Longest()
}

// Extract parses the first number found in text.
func Extract(text string) (decimal.Decimal, bool) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
	t := token.FindString(text)
	if t == "" {
		return decimal.Zero, false
	}
	return ParseFlexible(t)
}

// ParseFlexible parses a single numeric token.
//
// When both separators appear, the last one is the decimal separator and the
// other is dropped. A lone comma is a decimal separator. Otherwise commas are
// dropped.
func ParseFlexible(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
