package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/rul-go/internal/format"
)

// historySparkWidth is the width of the sync-duration sparkline in the header.
const historySparkWidth = 12

// renderHeader renders the top header bar with title, sync state, and timing info.
//
// Layout:
//
//	left:   "RUL MONITOR  <endpoint>  [VIEW]"
//	center: "⣾ SYNCING" while a batch runs, otherwise the last batch outcome
//	right:  "Last: HH:MM:SS (took)  ▂▃▅▂▁" (sync duration history)
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	endpoint := ""
	if app.client != nil {
		endpoint = app.client.BaseURL()
	}
	viewName := "SINGLE"
	if app.view == viewFleet {
		viewName = "FLEET"
	}
	left := StyleTitle.Render("RUL MONITOR") + "  " + StyleDim.Render(endpoint) + "  [" + viewName + "]"

	center := syncStatus(app)

	right := StyleDim.Render("Last: never")
	if p, ok := app.history.Last(); ok {
		ms := float64(p.Duration.Microseconds()) / 1000
		right = StyleDim.Render(fmt.Sprintf("Last: %s (%s)", p.Timestamp.Format("15:04:05"), format.FormatLatency(ms))) +
			"  " + RenderSparkline(app.history.Durations(), historySparkWidth, colorCyan)
	}

	// Build row: left + padding + center + padding + right, filling innerWidth.
	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	spacing := innerWidth - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).MaxHeight(1).Render(row)
}

// syncStatus summarises the fleet sync state in one colored indicator.
func syncStatus(app *App) string {
	if app.syncing {
		return StyleCyan.Render(app.spinner.View() + " SYNCING")
	}
	r := app.lastReport
	if r == nil {
		return StyleDim.Render("● PENDING")
	}
	failed, total := r.Failed(), len(r.Outcomes)
	switch {
	case failed == 0:
		return StyleStatusHealthy.Render("● SYNCED")
	case failed == total:
		return StyleError.Render("● OFFLINE")
	default:
		return StyleStatusWarning.Render(fmt.Sprintf("● DEGRADED %d/%d", total-failed, total))
	}
}
