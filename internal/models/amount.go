package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a bank-reported amount string to a decimal.
// It tolerates currency tokens, apostrophe/space thousands grouping and
// mixed decimal markers: when both '.' and ',' are present, the separator
// nearer the end of the string is the decimal marker and the other is
// stripped. A single separator type is treated as the decimal marker only
// when it occurs once near the end; otherwise it is a thousands separator.
// Unparseable input yields decimal.Zero rather than an error so a row
// survives with a degraded amount.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.ReplaceAll(raw, "\u00a0", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	for _, token := range []string{"CHF", "EUR", "USD", "$", "€"} {
		s = strings.ReplaceAll(s, token, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "'", "")

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "+")

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if isDecimalMarker(s, ",") {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dot >= 0:
		if !isDecimalMarker(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	dec, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return dec.Neg()
	}
	return dec
}

// isDecimalMarker reports whether the single separator in s reads as a
// decimal marker: it must appear exactly once with at most two digits
// trailing it.
func isDecimalMarker(s, sep string) bool {
	if strings.Count(s, sep) != 1 {
		return false
	}
	idx := strings.Index(s, sep)
	return len(s)-idx-1 <= 2
}
