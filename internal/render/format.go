// Package render formats backtest results for the console and exports
// signal tables as CSV for external charting.
package render

import (
	"fmt"
	"math"
	"strings"
)

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatMoney formats a value with comma separators and two decimals.
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	s := FormatInt(int(cents/100)) + fmt.Sprintf(".%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// FormatPrice formats a price with two decimals, or "-" for zero.
func FormatPrice(p float64) string {
	if p == 0 || math.IsNaN(p) {
		return "-"
	}
	return fmt.Sprintf("%.2f", p)
}

// FormatReturn formats a percentage return with an explicit sign.
func FormatReturn(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}
