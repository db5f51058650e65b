// Package price parses and formats free-form catalog price strings.
package price

import (
	"math"
	"strconv"
	"strings"
)

// Parse extracts the leading amount from a price of the shape "<number> <anything>".
// A price is numeric only when it has at least two whitespace-separated tokens and the
// first one parses as a finite float.
func Parse(s string) (float64, bool) {
	tokens := strings.Fields(s)
	if len(tokens) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Format renders "<amount> <currency>" with the shortest round-trip decimal.
func Format(amount float64, currency string) string {
	return strconv.FormatFloat(amount, 'f', -1, 64) + " " + currency
}
