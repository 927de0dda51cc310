package core

// convert.go provides coercion helpers for user-provided spreadsheet data:
// currency symbols and thousands separators in numbers, accounting-format
// negatives, the fixed boolean vocabulary, and Excel formula artifacts.
//
// Coercion failures never raise errors here — the Normalizer falls back to
// the field default and the Validator reports the problem.

import (
	"regexp"
	"strconv"
	"strings"
)

// numericPattern validates numeric input after cleanup: integers, decimals,
// and scientific notation.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// emailPattern is the standard permissive email-format check.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="value"), and stray
// surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// ParseNumber coerces a cell value to a float64.
// Handles currency symbols, thousands separators, and accounting-format
// negatives ("(123.45)"). Returns false for empty or non-numeric input.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	if !numericPattern.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseFlag coerces a cell value using the fixed boolean vocabulary.
// yes/true/1/active/enabled/on map to true; no/false/0/inactive/disabled/off
// map to false. Anything else returns false for ok and the caller substitutes
// the field's documented default polarity.
func ParseFlag(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "active", "enabled", "on", "y", "t":
		return true, true
	case "no", "false", "0", "inactive", "disabled", "off", "n", "f":
		return false, true
	default:
		return false, false
	}
}

// ValidEmail reports whether the value passes the standard email-format
// check. Empty input is not a valid email.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// headerKey normalizes a column header for case-insensitive plain-field
// matching. Multilingual prefix detection works on the original header.
func headerKey(h string) string {
	return strings.ToLower(CleanCell(h))
}
