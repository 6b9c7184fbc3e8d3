package extractor

import (
	// Go Internal Packages
	"regexp"
	"strings"

	// External Packages
	"github.com/shopspring/decimal"
)

const amountExpr = `([0-9][0-9,]*(?:\.[0-9]+)?)`

// currencyExpr matches the currency markers that precede an amount.
const currencyExpr = `(?:\brs\.?|₹|\binr)\s*`

var amountPattern = regexp.MustCompile(`(?i)` + currencyExpr + amountExpr)

// ExtractAmount returns the first currency amount in text. Only the first
// match is considered: when it does not parse to a positive value the
// message has no usable amount.
func ExtractAmount(text string) (decimal.Decimal, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	return parseAmount(m[1])
}

// parseAmount strips thousands separators and accepts strictly positive values.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}
