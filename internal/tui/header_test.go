package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/engine"
	"github.com/dm/rul-go/internal/model"
	"github.com/dm/rul-go/internal/telemetry"
)

func report(errs ...error) *engine.SyncReport {
	start := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	r := &engine.SyncReport{StartedAt: start, FinishedAt: start.Add(420 * time.Millisecond)}
	for i, err := range errs {
		r.Outcomes = append(r.Outcomes, engine.Outcome{EngineID: "ENG-" + string(rune('A'+i)), Err: err})
	}
	return r
}

func TestSyncStatus(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name    string
		syncing bool
		report  *engine.SyncReport
		want    string
	}{
		{"before first batch", false, nil, "PENDING"},
		{"in flight", true, nil, "SYNCING"},
		{"in flight keeps indicator over last report", true, report(nil), "SYNCING"},
		{"all succeeded", false, report(nil, nil), "SYNCED"},
		{"all failed", false, report(boom, boom), "OFFLINE"},
		{"partial", false, report(nil, boom, nil), "DEGRADED 2/3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newTestApp(t, &fakeClient{})
			app.syncing = tc.syncing
			app.lastReport = tc.report
			assert.Contains(t, stripANSI(syncStatus(app)), tc.want)
		})
	}
}

func TestRenderHeader_EndpointAndView(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	app.width = 120

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "RUL MONITOR")
	assert.Contains(t, out, "http://rul.test:8000")
	assert.Contains(t, out, "[SINGLE]")
	assert.Contains(t, out, "Last: never")

	app.view = viewFleet
	assert.Contains(t, stripANSI(renderHeader(app)), "[FLEET]")
}

func TestRenderHeader_LastSync(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	app.width = 120
	r := report(nil)
	app.lastReport = r
	app.history.Push(model.SyncPoint{Timestamp: r.FinishedAt, Duration: r.Duration()})

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "Last: 09:30:00 (420.00 ms)")
	assert.Contains(t, out, "SYNCED")

	later := r.FinishedAt.Add(time.Minute)
	app.history.Push(model.SyncPoint{Timestamp: later, Duration: 2 * time.Second})
	assert.Contains(t, stripANSI(renderHeader(app)), "Last: 09:31:00", "header follows the newest sync")
}

func TestRenderHeader_SingleLine(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	for _, w := range []int{40, 80, 200} {
		app.width = w
		out := renderHeader(app)
		assert.Equal(t, 1, lipgloss.Height(out), "width %d", w)
		assert.NotContains(t, out, "\n")
	}
}

func TestDescribeError(t *testing.T) {
	_, shapeErr := telemetry.Parse("1,2,3")
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"shape", shapeErr, "invalid telemetry, invalid cycle count: expected 30 rows, found 1"},
		{"network", &client.NetworkError{Cause: errors.New("dial tcp: connection refused")}, "endpoint unreachable, "},
		{"server", &client.ServerError{Status: 503, Detail: "model warming up"}, "server returned 503: model warming up"},
		{"other", errors.New("plain failure"), "plain failure"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := describeError(tc.err)
			assert.True(t, strings.HasPrefix(got, tc.want), "got %q", got)
		})
	}
}

func TestRenderNotice(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	assert.Empty(t, renderNotice(app))

	app.notify(severityWarning, "Fleet sync already in progress")
	out := stripANSI(renderNotice(app))
	assert.Contains(t, out, "Fleet sync already in progress")
	assert.Contains(t, out, "(esc)")
}
