package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/format"
	"github.com/dm/rul-go/internal/model"
	"github.com/dm/rul-go/internal/telemetry"
)

// maxSensorRows caps the top-sensor list in the result panel.
const maxSensorRows = 5

// renderSingle renders the single-engine diagnostics view: the input panel
// followed by the current prediction, if any.
func renderSingle(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	idLabel := StyleLabel.Render("Engine ID")
	telLabel := StyleLabel.Render(fmt.Sprintf("Telemetry (%d cycles × %d sensors)", telemetry.Rows, telemetry.Cols))

	input := lipgloss.JoinVertical(lipgloss.Left,
		idLabel,
		app.engineID.View(),
		"",
		telLabel,
		app.telemetry.View(),
		renderShapeCounter(app.telemetry.Value()),
	)

	parts := []string{input}
	if app.predicting {
		parts = append(parts, StyleCyan.Render(app.spinner.View()+" Running inference..."))
	}
	if id, r := app.store.Current(); r != nil {
		parts = append(parts, renderResult(id, r, width))
	} else if !app.predicting {
		parts = append(parts, StyleDim.Render("No prediction yet. ctrl+g generates sample telemetry, ctrl+p submits it."))
	}
	return strings.Join(parts, "\n")
}

// renderShapeCounter shows the live row and sensor count of the buffer,
// green once it matches the 30×24 window.
func renderShapeCounter(raw string) string {
	s := telemetry.Inspect(raw)
	text := fmt.Sprintf("rows: %d/%d  sensors: %d/%d", s.Rows, telemetry.Rows, s.Cols, telemetry.Cols)
	switch {
	case s.Valid():
		return StyleGreen.Render(text + "  ✓")
	case s.Rows == 0:
		return StyleDim.Render(text)
	default:
		return StyleYellow.Render(text)
	}
}

// renderResult renders a prediction as a bordered panel.
func renderResult(engineID string, r *client.PredictionResult, width int) string {
	barWidth := 20

	status := StatusStyle(r.Status).Render("● " + strings.ToUpper(orUnknown(r.Status)))
	title := StyleTitle.Render("Engine: "+orUnknown(engineID)) + "  " + status

	rulSev := rulSeverity(float64(r.PredictedRUL))
	rulLine := StyleLabel.Render("Remaining life ") +
		lipgloss.NewStyle().Bold(true).Foreground(severityFg(rulSev)).Render(format.FormatCycles(r.PredictedRUL)) +
		StyleDim.Render("  failure window "+format.FormatCycleRange(r.TimeToFailure.Min, r.TimeToFailure.Max))

	healthLine := StyleLabel.Render("Health         ") +
		lipgloss.NewStyle().Foreground(severityFg(statusSeverity(r.Status))).Render(renderMiniBar(r.HealthPercent, barWidth)) +
		" " + format.FormatPercent(r.HealthPercent) + "  grade " + r.HealthGrade

	riskLine := StyleLabel.Render("Risk           ") +
		severityToStyle(riskSeverity(r.RiskScore)).Render(format.FormatFraction(r.RiskScore)) +
		StyleLabel.Render("   Confidence ") +
		severityToStyle(confidenceSeverity(r.Confidence)).Render(format.FormatFraction(r.Confidence))

	actionLine := StyleLabel.Render("Action         ") + orDash(r.MaintenanceAction)

	cost := r.MaintenanceCost
	costLine := StyleLabel.Render("Cost           ") +
		"preventive " + format.FormatMoney(cost.Preventive) +
		"  reactive " + format.FormatMoney(cost.Reactive) +
		"  savings " + StyleGreen.Render(format.FormatMoney(cost.Savings))

	trend := model.RULTrend(r.RULHistory)
	trendStyle := StyleDim
	if trend == model.TrendDecaying {
		trendStyle = StyleRed
	}
	historyLine := StyleLabel.Render("RUL history    ") +
		RenderSparkline(r.RULHistory, 30, statusColor(r.Status)) + "  " + trendStyle.Render(trend.String())

	lines := []string{title, "", rulLine, healthLine, riskLine, actionLine, costLine, historyLine}

	if len(r.TopSensors) > 0 {
		lines = append(lines, "", StyleLabel.Render("Top sensors"))
		for i, s := range r.TopSensors {
			if i == maxSensorRows {
				break
			}
			lines = append(lines, fmt.Sprintf("  %-12s %s %s",
				s.Sensor, StyleBlue.Render(renderMiniBar(s.Impact*100, barWidth)), format.FormatFraction(s.Impact)))
		}
	}

	return StylePanel.Width(max(40, width-4)).Render(strings.Join(lines, "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
