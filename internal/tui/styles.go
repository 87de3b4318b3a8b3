package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/rul-go/internal/client"
)

// Color constants.
var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
	colorAlt    = lipgloss.Color("#0f172a")
)

// Status styles: bold foreground, used for engine health indicators.
var (
	StyleStatusHealthy  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleStatusWarning  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	StyleStatusCritical = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	StyleStatusUnknown  = lipgloss.NewStyle().Foreground(colorGray)
)

// StyleHeader is the full-width dark header bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// StyleSummaryCard is a card in the fleet status-count row.
var StyleSummaryCard = lipgloss.NewStyle().
	Background(colorAlt).
	Foreground(colorWhite).
	Padding(0, 1).
	Margin(0).
	Align(lipgloss.Center)

// StyleEngineCard is the bordered per-engine card in the fleet grid.
var StyleEngineCard = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorGray).
	Padding(0, 1)

// StylePanel frames the input and result panels of the single-engine view.
var StylePanel = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	BorderForeground(colorDark).
	Padding(0, 1)

// Utility styles.
var (
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorGray)
	StyleLabel = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	StyleTitle = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
)

// Named color styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	StyleBlue   = lipgloss.NewStyle().Foreground(colorBlue)
	StyleCyan   = lipgloss.NewStyle().Foreground(colorCyan)
	StyleRed    = lipgloss.NewStyle().Foreground(colorRed)
)

// Notification banner styles, one per severity.
var (
	StyleNoticeInfo    = lipgloss.NewStyle().Background(colorBlue).Foreground(colorWhite).Padding(0, 1)
	StyleNoticeWarning = lipgloss.NewStyle().Background(colorYellow).Foreground(colorDark).Padding(0, 1)
	StyleNoticeError   = lipgloss.NewStyle().Background(colorRed).Foreground(colorWhite).Bold(true).Padding(0, 1)
)

// StatusStyle returns the bold foreground style for an engine status string.
// Unrecognised statuses get the neutral style.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case client.StatusHealthy:
		return StyleStatusHealthy
	case client.StatusWarning:
		return StyleStatusWarning
	case client.StatusCritical:
		return StyleStatusCritical
	default:
		return StyleStatusUnknown
	}
}

// statusColor returns the palette color for an engine status.
func statusColor(status string) lipgloss.Color {
	switch status {
	case client.StatusHealthy:
		return colorGreen
	case client.StatusWarning:
		return colorYellow
	case client.StatusCritical:
		return colorRed
	default:
		return colorGray
	}
}
