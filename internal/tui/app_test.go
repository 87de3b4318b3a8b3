package tui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/engine"
	"github.com/dm/rul-go/internal/model"
	"github.com/dm/rul-go/internal/telemetry"
)

// fakeClient implements client.PredictClient for testing.
type fakeClient struct {
	predictFn func(ctx context.Context, w telemetry.Window, engineID string) (*client.PredictionResult, error)
	calls     atomic.Int32
}

func (f *fakeClient) Predict(ctx context.Context, w telemetry.Window, engineID string) (*client.PredictionResult, error) {
	f.calls.Add(1)
	if f.predictFn != nil {
		return f.predictFn(ctx, w, engineID)
	}
	return &client.PredictionResult{
		Status:        client.StatusHealthy,
		PredictedRUL:  142,
		HealthPercent: 88,
		Confidence:    0.91,
		RULHistory:    []float64{180, 170, 160, 150, 142},
	}, nil
}

func (f *fakeClient) Health(context.Context) (*client.HealthResponse, error) {
	return &client.HealthResponse{Status: "online", ModelLoaded: true}, nil
}

func (f *fakeClient) BaseURL() string { return "http://rul.test:8000" }

// newTestApp builds an App over a 3-engine fleet.
func newTestApp(t *testing.T, fc *fakeClient) (*App, *model.Store) {
	t.Helper()
	ids := []string{"ENG-1001", "ENG-1002", "ENG-1003"}
	store, err := model.NewStore(ids)
	require.NoError(t, err)
	gen := telemetry.NewGenerator(1)
	syncer, err := engine.NewSyncer(engine.SyncerConfig{
		Client: fc,
		Store:  store,
		Source: engine.SyntheticSource(gen, ids),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	app := NewApp(AppConfig{
		Client:          fc,
		Syncer:          syncer,
		Store:           store,
		Generator:       gen,
		NotificationTTL: time.Second,
		Logger:          zerolog.Nop(),
	})
	return app, store
}

func update(t *testing.T, app *App, msg tea.Msg) (*App, tea.Cmd) {
	t.Helper()
	m, cmd := app.Update(msg)
	return m.(*App), cmd
}

func ctrlKey(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestNewApp_NoIOBeforeFirstFrame(t *testing.T) {
	fc := &fakeClient{}
	app, _ := newTestApp(t, fc)

	assert.False(t, app.started)
	assert.False(t, app.syncing)
	_ = app.Init()
	out := stripANSI(app.View())
	assert.Contains(t, out, "RUL MONITOR")
	assert.Contains(t, out, "PENDING")
	assert.Equal(t, int32(0), fc.calls.Load(), "construction must not call the endpoint")
}

func TestApp_FirstWindowSizeStartsSyncOnce(t *testing.T) {
	fc := &fakeClient{}
	app, _ := newTestApp(t, fc)

	app, cmd := update(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, app.width)
	assert.Equal(t, 40, app.height)
	assert.True(t, app.started)
	assert.True(t, app.syncing)
	require.NotNil(t, cmd)

	// Later resizes never start another sync.
	app, cmd = update(t, app, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Nil(t, cmd)
	assert.Equal(t, 100, app.width)
}

func TestApp_SyncResultUpdatesFleet(t *testing.T) {
	fc := &fakeClient{}
	app, store := newTestApp(t, fc)
	app, _ = update(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})

	msg := app.syncCmd()()
	synced, ok := msg.(FleetSyncedMsg)
	require.True(t, ok, "got %T", msg)

	app, cmd := update(t, app, synced)
	require.NotNil(t, cmd, "notification expiry is scheduled")
	assert.False(t, app.syncing)
	assert.Equal(t, 1, app.history.Len())
	assert.Equal(t, 3, store.CountsByStatus().Healthy)
	require.NotNil(t, app.notice)
	assert.Equal(t, severityNormal, app.notice.level)
	assert.Contains(t, stripANSI(app.View()), "SYNCED")

	app, _ = update(t, app, ctrlKey(tea.KeyCtrlT))
	out := stripANSI(app.View())
	assert.Contains(t, out, "ENG-1002")
	assert.Contains(t, out, "RUL 142 cycles")
	assert.Contains(t, out, "HEALTHY")
}

func TestApp_PartialSyncFailureNotifies(t *testing.T) {
	fc := &fakeClient{
		predictFn: func(_ context.Context, _ telemetry.Window, id string) (*client.PredictionResult, error) {
			if id == "ENG-1002" {
				return nil, &client.NetworkError{Cause: errors.New("connection refused")}
			}
			return &client.PredictionResult{Status: client.StatusCritical, PredictedRUL: 12}, nil
		},
	}
	app, store := newTestApp(t, fc)
	app, _ = update(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})
	app, _ = update(t, app, app.syncCmd()())

	require.NotNil(t, app.notice)
	assert.Equal(t, severityWarning, app.notice.level)
	assert.Contains(t, app.notice.text, "1 of 3")
	assert.Contains(t, app.notice.text, "ENG-1002")

	e, _ := store.Get("ENG-1002")
	assert.False(t, e.HasResult())

	app, _ = update(t, app, ctrlKey(tea.KeyCtrlT))
	out := stripANSI(app.View())
	assert.Contains(t, out, "DEGRADED 2/3")
	assert.Contains(t, out, "No data: sync failed")
	assert.Contains(t, out, "Advisories")
}

func TestApp_SyncKeyWhileSyncingNotifies(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	app, _ = update(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.True(t, app.syncing)

	app, cmd := update(t, app, ctrlKey(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	require.NotNil(t, app.notice)
	assert.Contains(t, app.notice.text, "already in progress")
}

func TestApp_NoticeExpiry(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})

	app.notify(severityNormal, "first")
	firstID := app.notice.id
	app.notify(severityWarning, "second")

	// The first notice's timer must not clear its replacement.
	app, _ = update(t, app, noticeExpiredMsg{id: firstID})
	require.NotNil(t, app.notice)
	assert.Equal(t, "second", app.notice.text)

	app, _ = update(t, app, noticeExpiredMsg{id: app.notice.id})
	assert.Nil(t, app.notice)
}

func TestApp_EscDismissesNotice(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	app.notify(severityCritical, "boom")
	app, _ = update(t, app, ctrlKey(tea.KeyEsc))
	assert.Nil(t, app.notice)
}

func TestApp_ToggleView(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	require.Equal(t, viewSingle, app.view)

	app, _ = update(t, app, ctrlKey(tea.KeyCtrlT))
	assert.Equal(t, viewFleet, app.view)
	assert.Contains(t, stripANSI(app.View()), "[FLEET]")

	app, _ = update(t, app, ctrlKey(tea.KeyCtrlT))
	assert.Equal(t, viewSingle, app.view)
}

func TestApp_GenerateRepairClear(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})

	app, _ = update(t, app, ctrlKey(tea.KeyCtrlG))
	assert.True(t, telemetry.Inspect(app.telemetry.Value()).Valid())
	assert.Contains(t, stripANSI(app.View()), "rows: 30/30  sensors: 24/24")

	// Flatten onto one line, then repair back into 30 rows.
	flat := strings.ReplaceAll(app.telemetry.Value(), "\n", ",")
	app.telemetry.SetValue(flat)
	require.Equal(t, 1, telemetry.Inspect(app.telemetry.Value()).Rows)

	app, _ = update(t, app, ctrlKey(tea.KeyCtrlR))
	assert.True(t, telemetry.Inspect(app.telemetry.Value()).Valid())

	app, _ = update(t, app, ctrlKey(tea.KeyCtrlL))
	assert.Empty(t, app.telemetry.Value())
}

func TestApp_RepairWrongCountNotifies(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	app.telemetry.SetValue("1,2,3")

	app, _ = update(t, app, ctrlKey(tea.KeyCtrlR))
	require.NotNil(t, app.notice)
	assert.Equal(t, severityCritical, app.notice.level)
	assert.Contains(t, app.notice.text, "720")
	assert.Equal(t, "1,2,3", app.telemetry.Value())
}

func TestApp_PredictInvalidShapeSkipsNetwork(t *testing.T) {
	fc := &fakeClient{}
	app, _ := newTestApp(t, fc)
	app.telemetry.SetValue(strings.Repeat("1,2,3\n", 29))

	app, cmd := update(t, app, ctrlKey(tea.KeyCtrlP))
	require.NotNil(t, cmd)
	assert.True(t, app.predicting)

	msg := app.predictCmd()()
	perr, ok := msg.(PredictErrorMsg)
	require.True(t, ok, "got %T", msg)
	assert.ErrorIs(t, perr.Err, telemetry.ErrShapeMismatch)
	assert.Equal(t, int32(0), fc.calls.Load())

	app, _ = update(t, app, perr)
	assert.False(t, app.predicting)
	require.NotNil(t, app.notice)
	assert.Contains(t, app.notice.text, "expected 30 rows, found 29")
}

func TestApp_PredictSuccessShowsResult(t *testing.T) {
	fc := &fakeClient{}
	app, store := newTestApp(t, fc)
	app, _ = update(t, app, tea.WindowSizeMsg{Width: 120, Height: 60})

	app, _ = update(t, app, ctrlKey(tea.KeyCtrlG))
	app.engineID.SetValue("UNIT-0982-A")

	msg := app.predictCmd()()
	pm, ok := msg.(PredictionMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "UNIT-0982-A", pm.EngineID)

	app, _ = update(t, app, pm)
	id, cur := store.Current()
	assert.Equal(t, "UNIT-0982-A", id)
	require.NotNil(t, cur)

	out := stripANSI(app.View())
	assert.Contains(t, out, "Engine: UNIT-0982-A")
	assert.Contains(t, out, "142 cycles")
	assert.Contains(t, out, "91%")
}

func TestApp_ServerErrorNotification(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	app, _ = update(t, app, PredictErrorMsg{Err: &client.ServerError{Status: 500, Detail: `{"code":"MODEL_ERROR"}`}})
	require.NotNil(t, app.notice)
	assert.Contains(t, app.notice.text, `server returned 500: {"code":"MODEL_ERROR"}`)
}

func TestApp_TelemetryLoaded(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	raw := telemetry.Format(telemetry.NewGenerator(5).Window(0.5))

	app, cmd := update(t, app, TelemetryLoadedMsg{Raw: raw, Source: "engine.csv"})
	require.NotNil(t, cmd)
	assert.Equal(t, raw, app.telemetry.Value())
	assert.Equal(t, severityNormal, app.notice.level)

	app, _ = update(t, app, TelemetryLoadedMsg{Raw: "1,2\n3,4", Source: "engine.csv"})
	assert.Equal(t, severityWarning, app.notice.level)
	assert.Contains(t, app.notice.text, "2 rows × 2 sensors")
}

func TestApp_TabCyclesFocus(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	require.Equal(t, focusEngineID, app.focus)

	app, _ = update(t, app, ctrlKey(tea.KeyTab))
	assert.Equal(t, focusTelemetry, app.focus)
	assert.True(t, app.telemetry.Focused())

	app, _ = update(t, app, ctrlKey(tea.KeyTab))
	assert.Equal(t, focusEngineID, app.focus)
	assert.False(t, app.telemetry.Focused())
}

func TestApp_TypingGoesToFocusedInput(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ENG")})
	assert.Equal(t, "ENG", app.engineID.Value())
	assert.Empty(t, app.telemetry.Value())
}

func TestApp_QuitKey(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})

	_, cmd := update(t, app, ctrlKey(tea.KeyCtrlC))

	// tea.Quit is a function; verify a non-nil command is returned.
	require.NotNil(t, cmd)
	result := cmd()
	_, isQuit := result.(tea.QuitMsg)
	assert.True(t, isQuit, "expected tea.QuitMsg, got %T", result)
}

func TestApp_HelpToggle(t *testing.T) {
	app, _ := newTestApp(t, &fakeClient{})
	require.False(t, app.showHelp)

	app, _ = update(t, app, ctrlKey(tea.KeyF1))
	assert.True(t, app.showHelp)
	assert.Contains(t, stripANSI(app.View()), "ctrl+r: repair")

	app, _ = update(t, app, ctrlKey(tea.KeyF1))
	assert.False(t, app.showHelp)
}

func TestRenderMiniBar(t *testing.T) {
	cases := []struct {
		percent  float64
		width    int
		wantFill int
	}{
		{0, 10, 0},
		{100, 10, 10},
		{50, 10, 5},
		{25, 8, 2},
		{75, 8, 6},
		{150, 4, 4},
		{-3, 4, 0},
	}
	for _, tc := range cases {
		result := renderMiniBar(tc.percent, tc.width)
		assert.Len(t, []rune(result), tc.width, "total bar width percent=%v", tc.percent)
		assert.Equal(t, tc.wantFill, strings.Count(result, "█"), "filled count percent=%v width=%v", tc.percent, tc.width)
	}
	// Zero width returns empty string.
	assert.Equal(t, "", renderMiniBar(50, 0))
}

// stripANSI removes ANSI escape sequences for plain-text content assertions.
// Handles all CSI sequences (not just SGR m-terminated ones).
func stripANSI(s string) string {
	var out strings.Builder
	inEscape, inCSI := false, false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && !inCSI && r == '[':
			inCSI = true
		case inEscape:
			// CSI final bytes are in range 0x40–0x7E.
			if r >= 0x40 && r <= 0x7E {
				inEscape, inCSI = false, false
			}
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
