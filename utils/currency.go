package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrencyVND formats an amount as Vietnamese dong. The suffix stays
// ASCII because the receipt PDF renders with a cp1252 core font.
// Example: 50000 -> "50.000 VND"
func FormatCurrencyVND(amount float64) string {
	rounded := int64(math.Round(amount))

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	digits := fmt.Sprintf("%d", rounded)
	var groups []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{digits[start:i]}, groups...)
	}

	out := strings.Join(groups, ".") + " VND"
	if negative {
		return "-" + out
	}
	return out
}
