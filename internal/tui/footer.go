package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const footerHint = "f1 for help  ctrl+t: switch view  ctrl+c: quit"

// renderFooter renders the key hint on the left and the activity summary on
// the right. With help toggled on it shows every binding instead.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	if app.showHelp {
		return StyleDim.Width(width).Render(helpText)
	}

	left := StyleDim.Render(footerHint)
	right := footerStatus(app)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		return StyleDim.Width(width).MaxHeight(1).Render(footerHint)
	}
	return left + strings.Repeat(" ", gap) + right
}

// footerStatus reads like "predicting · esc: dismiss · 12 engines · 3 syncs".
func footerStatus(app *App) string {
	var parts []string
	if app.predicting {
		parts = append(parts, StyleCyan.Render("predicting"))
	}
	if app.notice != nil {
		parts = append(parts, "esc: dismiss")
	}
	if app.store != nil {
		parts = append(parts, fmt.Sprintf("%d engines", app.store.Len()))
	}
	parts = append(parts, fmt.Sprintf("%d syncs", app.history.Len()))
	return StyleDim.Render(strings.Join(parts, " · "))
}
