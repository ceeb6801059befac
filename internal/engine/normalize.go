package engine

import (
	"strconv"
	"strings"
)

// Blank sentinels spreadsheet exports use for "no revenue"
var blankTokens = map[string]bool{
	"-":   true,
	"$-":  true,
	"N/A": true,
}

// Normalize converts a raw cell value into a monetary amount. Numeric input
// passes through unchanged, blanks and recognized sentinels become 0, and
// currency-formatted strings are stripped of "$", "," and whitespace before
// parsing. Anything unparseable degrades to 0 rather than failing; every
// downstream aggregate depends on this silent-zero policy.
func Normalize(raw any) float64 {
	amount, _ := ParseCell(raw)
	return amount
}

// ParseCell normalizes a raw cell value and reports whether it was
// recognized. ok is false only for values that are neither numeric, a known
// blank sentinel, nor a parseable amount string.
func ParseCell(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" || blankTokens[s] {
			return 0, true
		}

		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case '$', ',', ' ', '\t':
				return -1
			}
			return r
		}, s)

		amount, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return amount, true
	default:
		return 0, false
	}
}
