package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/telemetry"
)

// notice is the single transient notification banner.
type notice struct {
	id    int
	text  string
	level severity
}

// notify replaces the current notification and schedules its expiry. A newer
// notice supersedes an older one, so only the matching id is ever cleared.
func (app *App) notify(level severity, format string, args ...any) tea.Cmd {
	app.noticeSeq++
	id := app.noticeSeq
	app.notice = &notice{id: id, text: fmt.Sprintf(format, args...), level: level}
	return tea.Tick(app.noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

// notifyError turns a failure into an operator-facing notification.
func (app *App) notifyError(prefix string, err error) tea.Cmd {
	return app.notify(severityCritical, "%s: %s", prefix, describeError(err))
}

// describeError renders the error taxonomy for the banner.
func describeError(err error) string {
	var shape *telemetry.ShapeMismatchError
	var netErr *client.NetworkError
	var srvErr *client.ServerError
	switch {
	case errors.As(err, &shape):
		return "invalid telemetry, " + shape.Error()
	case errors.As(err, &netErr):
		return "endpoint unreachable, " + netErr.Error()
	case errors.As(err, &srvErr):
		return fmt.Sprintf("server returned %d: %s", srvErr.Status, srvErr.Detail)
	default:
		return err.Error()
	}
}

// renderNotice renders the banner at full width, or "" when there is none.
func renderNotice(app *App) string {
	if app.notice == nil {
		return ""
	}
	width := app.width
	if width <= 0 {
		width = 80
	}
	var style lipgloss.Style
	switch app.notice.level {
	case severityCritical:
		style = StyleNoticeError
	case severityWarning:
		style = StyleNoticeWarning
	default:
		style = StyleNoticeInfo
	}
	return style.Width(width).MaxHeight(2).Render(app.notice.text + "  (esc)")
}
