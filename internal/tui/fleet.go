package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/rul-go/internal/engine"
	"github.com/dm/rul-go/internal/format"
	"github.com/dm/rul-go/internal/model"
)

const (
	engineCardWidth = 30 // outer width of one engine card, border included
	maxAdvisories   = 8
)

// renderFleet renders the fleet view: status counts, one card per engine,
// then the highest-priority advisories.
func renderFleet(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	entries := app.store.Entries()
	if len(entries) == 0 {
		return StyleDim.Render("No engines configured.")
	}

	parts := []string{
		renderSummary(app.store.CountsByStatus(), len(entries), width),
		StyleDim.Render(fmt.Sprintf("Monitoring %d propulsion units", len(entries))),
		renderEngineGrid(app, entries, width),
	}
	if adv := renderAdvisories(engine.CalcAdvisories(entries), width); adv != "" {
		parts = append(parts, adv)
	}
	return strings.Join(parts, "\n")
}

// renderSummary renders the 4-stat status bar.
// Wide terminals (>= 80 cols): all 4 cards in a single horizontal row.
// Narrow terminals (< 80 cols): 2x2 grid.
func renderSummary(c model.StatusCounts, total, width int) string {
	narrowMode := width < 80

	var cardWidth int
	if narrowMode {
		cardWidth = max(10, (width-4)/2)
	} else {
		cardWidth = max(8, (width-8)/4)
	}

	card := func(value int, label string, fg lipgloss.Color) string {
		return StyleSummaryCard.
			Foreground(fg).
			Width(cardWidth).
			Render(fmt.Sprintf("%d", value) + "\n" + label)
	}

	cards := []string{
		card(total, "Engines", colorBlue),
		card(c.Healthy, "Healthy", colorGreen),
		card(c.Warning, "Warning", colorYellow),
		card(c.Critical, "Critical", colorRed),
	}

	if narrowMode {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3])
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderEngineGrid lays the engine cards out in as many columns as fit.
func renderEngineGrid(app *App, entries []model.FleetEntry, width int) string {
	perRow := max(1, width/engineCardWidth)

	var rows []string
	for start := 0; start < len(entries); start += perRow {
		end := min(start+perRow, len(entries))
		cards := make([]string, 0, end-start)
		for _, e := range entries[start:end] {
			cards = append(cards, renderEngineCard(e, app.syncing))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderEngineCard renders one engine.
//
// Layout (inside a rounded border):
//
//	╭────────────────────────────╮
//	│ ENG-1001          ● HEALTHY │
//	│ RUL 142 cycles   92% health │
//	│ ▇▇▆▆▅▅▄▄▃▃ Stable          │
//	╰────────────────────────────╯
func renderEngineCard(e model.FleetEntry, syncing bool) string {
	inner := engineCardWidth - 4 // border and padding
	style := StyleEngineCard.Width(engineCardWidth - 2)

	id := StyleTitle.Render(e.EngineID)

	if !e.HasResult() {
		var body string
		switch {
		case syncing:
			body = StyleCyan.Render("Syncing " + e.EngineID + "...")
		case e.LastErr != nil:
			body = StyleError.Render("No data: sync failed")
		default:
			body = StyleDim.Render("No data")
		}
		return style.Render(lipgloss.JoinVertical(lipgloss.Left, id, body, ""))
	}

	r := e.Result
	status := StatusStyle(r.Status).Render("● " + strings.ToUpper(orUnknown(r.Status)))
	if e.Stale() {
		status = StyleYellow.Render("(stale) ") + status
		style = style.BorderForeground(colorYellow)
	} else if statusSeverity(r.Status) == severityCritical {
		style = style.BorderForeground(colorRed)
	}
	titleGap := max(1, inner-lipgloss.Width(id)-lipgloss.Width(status))
	title := id + strings.Repeat(" ", titleGap) + status

	rul := lipgloss.NewStyle().Bold(true).
		Foreground(severityFg(rulSeverity(float64(r.PredictedRUL)))).
		Render("RUL " + format.FormatCycles(r.PredictedRUL))
	health := StyleDim.Render(fmt.Sprintf("%.0f%% health", r.HealthPercent))
	statsGap := max(1, inner-lipgloss.Width(rul)-lipgloss.Width(health))
	stats := rul + strings.Repeat(" ", statsGap) + health

	trend := model.RULTrend(r.RULHistory)
	trendText := trend.String()
	spark := RenderSparkline(r.RULHistory, max(4, inner-len(trendText)-1), statusColor(r.Status))
	trendStyle := StyleDim
	if trend == model.TrendDecaying {
		trendStyle = StyleRed
	}
	history := spark + " " + trendStyle.Render(trendText)

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, stats, history))
}

// renderAdvisories lists the highest-priority advisories, or "" when there
// are none.
func renderAdvisories(advs []model.Advisory, width int) string {
	if len(advs) == 0 {
		return ""
	}
	lines := []string{StyleLabel.Render("Advisories")}
	for i, a := range advs {
		if i == maxAdvisories {
			lines = append(lines, StyleDim.Render(fmt.Sprintf("  ... %d more", len(advs)-maxAdvisories)))
			break
		}
		marker := severityToStyle(advisorySeverity(a.Severity)).Render("●")
		line := fmt.Sprintf("%s [%s] %s: %s", marker, a.EngineID, a.Title, a.Detail)
		lines = append(lines, lipgloss.NewStyle().MaxWidth(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

// renderMiniBar renders a mini progress bar using Unicode block characters.
// Fills proportionally using "█" (U+2588) for filled and "░" (U+2591) for empty cells.
func renderMiniBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 || math.IsNaN(percent) {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
