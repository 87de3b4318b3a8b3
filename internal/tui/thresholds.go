package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/model"
)

// severity represents the alert level for a displayed value.
type severity int

const (
	severityNormal   severity = iota
	severityWarning           // yellow
	severityCritical          // red
)

// rulSeverity returns Critical below the critical RUL threshold (30 cycles)
// and Warning below 75 cycles.
func rulSeverity(rul float64) severity {
	switch {
	case rul < model.CriticalRUL:
		return severityCritical
	case rul < 75:
		return severityWarning
	default:
		return severityNormal
	}
}

// riskSeverity returns Warning from a 0.5 risk score and Critical from 0.8.
func riskSeverity(risk float64) severity {
	switch {
	case risk >= 0.8:
		return severityCritical
	case risk >= 0.5:
		return severityWarning
	default:
		return severityNormal
	}
}

// confidenceSeverity returns Warning when model confidence is below 0.5.
func confidenceSeverity(conf float64) severity {
	if conf < 0.5 {
		return severityWarning
	}
	return severityNormal
}

// statusSeverity maps an engine status string to a severity.
func statusSeverity(status string) severity {
	switch status {
	case client.StatusCritical:
		return severityCritical
	case client.StatusWarning:
		return severityWarning
	default:
		return severityNormal
	}
}

// advisorySeverity maps an advisory level onto the display severity.
func advisorySeverity(s model.AdvisorySeverity) severity {
	switch s {
	case model.SeverityCritical:
		return severityCritical
	case model.SeverityWarning:
		return severityWarning
	default:
		return severityNormal
	}
}

// severityToStyle maps a severity level to the appropriate lipgloss style.
func severityToStyle(s severity) lipgloss.Style {
	switch s {
	case severityWarning:
		return StyleYellow
	case severityCritical:
		return StyleRed
	default:
		return lipgloss.NewStyle()
	}
}

// severityFg returns the foreground color for a severity, green when normal.
func severityFg(s severity) lipgloss.Color {
	switch s {
	case severityWarning:
		return colorYellow
	case severityCritical:
		return colorRed
	default:
		return colorGreen
	}
}
