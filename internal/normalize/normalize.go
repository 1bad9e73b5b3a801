// Package normalize implements the field standardization rules for the retail
// extracts: phone numbers, category labels, and dates.
//
// All functions are pure and total: malformed input degrades to the empty
// string ("not present"), never to an error. Callers decide whether an absent
// value is fill-able, droppable, or merely reportable.
package normalize

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// dateLayouts is the ordered list of accepted input formats. Order is
// semantically load-bearing: MM-DD-YYYY is tried before DD-MM-YYYY, so an
// ambiguous value like "03-04-2023" resolves by precedence, not detection.
var dateLayouts = []string{
	"2006-01-02", // 2024-01-15
	"02/01/2006", // 15/01/2024
	"01-02-2006", // 01-22-2024
	"02-01-2006", // 15-04-2023
	"01/02/2006", // 02/02/2024
}

var titleCaser = cases.Title(language.Und)

// Phone standardizes a raw phone value to "+91-XXXXXXXXXX".
//
// Rules, in order, over the digits-only form:
//   - exactly 10 digits: prefix +91-
//   - 12 digits starting with "91": drop the country prefix
//   - 11 digits starting with "0": drop the leading zero
//   - 10 or more digits otherwise: take the last 10
//   - anything shorter: "" (unusable)
func Phone(raw string) string {
	digits := digitsOnly(raw)

	switch {
	case len(digits) == 10:
		return "+91-" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+91-" + digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return "+91-" + digits[1:]
	case len(digits) >= 10:
		return "+91-" + digits[len(digits)-10:]
	default:
		return ""
	}
}

// Category trims and title-cases a category label ("home appliances" ->
// "Home Appliances"). Empty input stays empty.
func Category(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(s))
}

// Date converts a raw date in any accepted format to canonical "2006-01-02".
// The first matching layout in dateLayouts wins. Unparseable input returns "".
//
// Date is idempotent on its own output: the canonical form is also the first
// layout in the list.
func Date(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
