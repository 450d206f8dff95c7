package validator

import (
	"strconv"
	"strings"
)

// CleanAmount strips currency symbols, thousands separators, and whitespace
// from a monetary string, leaving only digits, the decimal point, and a sign.
// Cleaning an already-clean string is a no-op.
func CleanAmount(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseAmount cleans and parses a monetary string.
func ParseAmount(s string) (float64, bool) {
	cleaned := CleanAmount(s)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// sumTolerance is the allowed absolute difference between the line-item sum
// and the stated total: at least one cent, or 1% of the total for larger
// amounts.
func sumTolerance(total float64) float64 {
	tol := 0.01 * total
	if tol < 0.01 {
		tol = 0.01
	}
	return tol
}
