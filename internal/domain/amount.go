package domain

import (
	"math"
	"strconv"
	"strings"
)

var amountCleaner = strings.NewReplacer(",", "", " ", "", "\t", "", "\u00a0", "")

// ParseAmount parses a numeric-as-text value such as "45,00,000" or
// "1 200.5". Thousands separators and spaces are ignored. Empty, non-numeric
// or non-finite input yields false.
func ParseAmount(s string) (float64, bool) {
	s = amountCleaner.Replace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
