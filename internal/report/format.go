// Package report renders run results as ordered JSON and as a human-readable
// summary.
package report

import (
	"fmt"
	"math"
	"strings"
)

// FormatTurnover formats a fiat turnover value with B/M/K suffixes.
func FormatTurnover(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// FormatPrice formats a price, or "-" when the pair was never priced.
func FormatPrice(p float64, priced bool) string {
	if !priced {
		return "-"
	}
	return fmt.Sprintf("%.4f", p)
}

// FormatPercent formats a signed percentage with one decimal, dropping the
// decimal for magnitudes of 100% or more to keep width compact.
func FormatPercent(pct float64) string {
	sign := "+"
	if pct < 0 {
		sign = "-"
	}
	abs := math.Abs(pct)
	if abs >= 100 {
		return fmt.Sprintf("%s%.0f%%", sign, abs)
	}
	return fmt.Sprintf("%s%.1f%%", sign, abs)
}

// FormatMetric formats a metric value, rendering the NaN sentinel as "n/a".
func FormatMetric(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
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
