package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// priceRe accepts an integer part with an optional one or two digit fraction,
// separated by a comma or a dot.
var priceRe = regexp.MustCompile(`^\d+([,.]\d{1,2})?$`)

// maxPriceUnits is the largest integer part whose value in cents, fraction
// included, still fits in an int64.
const maxPriceUnits = (math.MaxInt64 - 99) / 100

// SanitizePrice drops everything that is not a digit, comma or dot.
func SanitizePrice(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPrice reports whether s is in the accepted "24,95" / "24.95" format
// and small enough to be counted in cents.
func ValidPrice(s string) bool {
	_, err := ParsePrice(s)
	return err == nil
}

// NormalizePrice sanitizes s and switches a dot separator to a comma.
func NormalizePrice(s string) string {
	return strings.Replace(SanitizePrice(s), ".", ",", 1)
}

// ParsePrice converts a price string into cents.
func ParsePrice(s string) (int64, error) {
	if !priceRe.MatchString(s) {
		return 0, fmt.Errorf("parse price %q: invalid format", s)
	}
	whole, frac, _ := strings.Cut(strings.Replace(s, ".", ",", 1), ",")

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	if units > maxPriceUnits {
		return 0, fmt.Errorf("parse price %q: out of range", s)
	}

	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		cents = int64(frac[0]-'0') * 10
	default:
		cents = int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	}
	return units*100 + cents, nil
}

// FormatPrice renders cents with two decimals and a comma separator.
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d", sign, cents/100, cents%100)
}

// DisplayPrice renders a stored price with exactly two decimals ("3" -> "3,00").
// Prices that do not parse are returned unchanged.
func DisplayPrice(s string) string {
	cents, err := ParsePrice(s)
	if err != nil {
		return s
	}
	return FormatPrice(cents)
}
