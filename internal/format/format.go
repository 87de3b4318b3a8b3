package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is shown in place of a value that has not been received yet.
const NotAvailable = "---"

// FormatCycles formats a remaining-life value in cycles.
// Example: 1204 → "1,204 cycles", 1 → "1 cycle".
func FormatCycles(n int) string {
	if n == 1 || n == -1 {
		return FormatNumber(int64(n)) + " cycle"
	}
	return FormatNumber(int64(n)) + " cycles"
}

// FormatCycleRange formats a failure window. Equal bounds collapse to one value.
// Example: (12, 24) → "12–24 cycles".
func FormatCycleRange(lo, hi int) string {
	if lo == hi {
		return FormatCycles(lo)
	}
	return FormatNumber(int64(lo)) + "–" + FormatNumber(int64(hi)) + " cycles"
}

// FormatLatency formats a latency value in milliseconds.
// Values >= 1000 ms are shown as seconds with 2 decimal places.
// Values < 1000 ms are shown as ms with 2 decimal places.
// Negative values return "---".
func FormatLatency(ms float64) string {
	if ms < 0 {
		return NotAvailable
	}
	if ms >= 1000 {
		return fmt.Sprintf("%.2f s", ms/1000)
	}
	return fmt.Sprintf("%.2f ms", ms)
}

// FormatNumber formats an integer with locale-style comma separators.
// Example: 12345678 → "12,345,678".
// Uses strconv.FormatInt directly to avoid abs64 overflow for math.MinInt64.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		// s starts with "-"; strip it, insert commas, restore sign.
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// FormatPercent formats a percentage with one decimal place.
// Example: 34.5 → "34.5%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatFraction formats a 0..1 fraction as a whole percentage.
// Example: 0.874 → "87%". NaN returns "---".
func FormatFraction(f float64) string {
	if math.IsNaN(f) {
		return NotAvailable
	}
	return fmt.Sprintf("%d%%", int(math.Round(f*100)))
}

// FormatMoney formats an amount in whole dollars with comma separators.
// Example: 142000.5 → "$142,001", -50 → "-$50".
func FormatMoney(d decimal.Decimal) string {
	s := d.Round(0).Abs().StringFixed(0)
	if d.Round(0).IsNegative() {
		return "-$" + insertCommas(s)
	}
	return "$" + insertCommas(s)
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
