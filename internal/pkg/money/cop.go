// Package money formats Colombian peso amounts the way the storefront displays them.
package money

import (
	"strconv"
	"strings"
)

// FormatCOP renders an integer peso amount as "$1.234.567 COP".
func FormatCOP(amount int64) string {
	return "$" + Group(amount) + " COP"
}

// Group inserts '.' thousands separators (es-CO grouping).
func Group(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
