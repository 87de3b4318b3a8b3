package tui

import (
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks is the 8-level block character set for sparklines.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline converts a slice of float64 values into a block sparkline
// string of exactly `width` characters, colored with the given color.
//
// Bars are scaled between the minimum and maximum of the visible values, so a
// slow decline from 190 to 160 cycles still reads as a slope.
//
// Rules:
//   - Empty values → return width spaces
//   - All values equal → every bar at mid level ('▄')
//   - Negative and non-finite values count as 0
//   - Values longer than width → use last width values
//   - Fewer values than width → left-pad with spaces
func RenderSparkline(values []float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}

	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	// Take last `width` values if the slice is longer.
	if len(values) > width {
		values = values[len(values)-width:]
	}

	clean := make([]float64, len(values))
	for i, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		clean[i] = v
	}
	lo, hi := slices.Min(clean), slices.Max(clean)

	style := lipgloss.NewStyle().Foreground(color)

	var sb strings.Builder
	// Left-pad with spaces when fewer values than width.
	sb.WriteString(strings.Repeat(" ", width-len(clean)))

	for _, v := range clean {
		idx := 3
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * 7)
		}
		// Clamp to [0, 7].
		idx = max(0, min(7, idx))
		sb.WriteRune(sparkBlocks[idx])
	}

	return style.Render(sb.String())
}
