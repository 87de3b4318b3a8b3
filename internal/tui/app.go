package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/engine"
	"github.com/dm/rul-go/internal/model"
	"github.com/dm/rul-go/internal/telemetry"
)

type viewMode int

const (
	viewSingle viewMode = iota
	viewFleet
)

type focusField int

const (
	focusEngineID focusField = iota
	focusTelemetry
)

// predictTimeout bounds a single-engine prediction started from the keyboard.
const predictTimeout = 30 * time.Second

// AppConfig holds the collaborators of the dashboard.
type AppConfig struct {
	Client    client.PredictClient
	Syncer    *engine.Syncer
	Store     *model.Store
	Generator *telemetry.Generator
	// NotificationTTL is how long a notification stays up. Defaults to 5s.
	NotificationTTL time.Duration
	Logger          zerolog.Logger
}

// App is the root Bubble Tea model for rul.
//
// Construction is side-effect free: the first fleet sync is dispatched when
// the first tea.WindowSizeMsg arrives, which Bubble Tea sends right before
// the first frame.
type App struct {
	client  client.PredictClient
	syncer  *engine.Syncer
	store   *model.Store
	gen     *telemetry.Generator
	history *model.SyncHistory
	log     zerolog.Logger

	// Sync and prediction state
	started    bool // initial sync dispatched
	syncing    bool
	predicting bool
	lastReport *engine.SyncReport

	// Inputs
	view      viewMode
	focus     focusField
	engineID  textinput.Model
	telemetry textarea.Model
	spinner   spinner.Model
	samples   int // generated samples, varies the wear of the next one

	// Notifications
	notice    *notice
	noticeSeq int
	noticeTTL time.Duration

	// Layout
	width, height int

	// UI state
	showHelp bool
}

// NewApp creates the dashboard. It performs no I/O.
func NewApp(cfg AppConfig) *App {
	ttl := cfg.NotificationTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	ti := textinput.New()
	ti.Placeholder = "E.G. UNIT-0982-A"
	ti.CharLimit = 64
	ti.Prompt = "› "
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Paste 30 rows × 24 comma-separated sensor values"
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = true
	ta.SetHeight(10)
	ta.Blur()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StyleCyan))

	return &App{
		client:    cfg.Client,
		syncer:    cfg.Syncer,
		store:     cfg.Store,
		gen:       cfg.Generator,
		history:   model.NewSyncHistory(0),
		log:       cfg.Logger,
		engineID:  ti,
		telemetry: ta,
		spinner:   sp,
		noticeTTL: ttl,
	}
}

// Init implements tea.Model. The first sync waits for the first window size.
func (app *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model. It is the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height
		app.telemetry.SetWidth(max(20, msg.Width-4))
		if !app.started {
			app.started = true
			return app, app.startSync()
		}

	case FleetSyncedMsg:
		return app, app.handleSynced(msg)

	case PredictionMsg:
		app.predicting = false
		return app, app.notify(severityNormal, "Prediction received for %s: %s, RUL %d cycles",
			orUnknown(msg.EngineID), msg.Result.Status, msg.Result.PredictedRUL)

	case PredictErrorMsg:
		app.predicting = false
		app.log.Warn().Err(msg.Err).Msg("single-engine prediction failed")
		return app, app.notifyError("Prediction failed", msg.Err)

	case TelemetryLoadedMsg:
		app.telemetry.SetValue(msg.Raw)
		shape := telemetry.Inspect(msg.Raw)
		if shape.Valid() {
			return app, app.notify(severityNormal, "Telemetry reloaded from %s", msg.Source)
		}
		return app, app.notify(severityWarning, "Telemetry reloaded from %s: %d rows × %d sensors, expected %d × %d",
			msg.Source, shape.Rows, shape.Cols, telemetry.Rows, telemetry.Cols)

	case noticeExpiredMsg:
		if app.notice != nil && app.notice.id == msg.id {
			app.notice = nil
		}

	case spinner.TickMsg:
		if !app.syncing && !app.predicting {
			return app, nil
		}
		var cmd tea.Cmd
		app.spinner, cmd = app.spinner.Update(msg)
		return app, cmd

	case tea.KeyMsg:
		return app, app.handleKey(msg)
	}

	return app, app.updateFocused(msg)
}

func (app *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Help):
		app.showHelp = !app.showHelp
		return nil
	case key.Matches(msg, keys.Dismiss):
		app.notice = nil
		return nil
	case key.Matches(msg, keys.ToggleView):
		if app.view == viewSingle {
			app.view = viewFleet
		} else {
			app.view = viewSingle
		}
		return nil
	case key.Matches(msg, keys.Sync):
		return app.startSync()
	}

	if app.view != viewSingle {
		return nil
	}

	switch {
	case key.Matches(msg, keys.Predict):
		return app.startPredict()
	case key.Matches(msg, keys.Repair):
		repaired, err := telemetry.Repair(app.telemetry.Value())
		if err != nil {
			return app.notifyError("Cannot repair", err)
		}
		app.telemetry.SetValue(repaired)
		return app.notify(severityNormal, "Reshaped into %d cycles × %d sensors", telemetry.Rows, telemetry.Cols)
	case key.Matches(msg, keys.Generate):
		wear := float64(app.samples%5) / 4
		app.samples++
		app.telemetry.SetValue(telemetry.Format(app.gen.Window(wear)))
		return nil
	case key.Matches(msg, keys.Clear):
		app.telemetry.Reset()
		return nil
	case key.Matches(msg, keys.FocusNext):
		return app.cycleFocus()
	}
	return app.updateFocused(msg)
}

// updateFocused forwards msg to the focused input of the single-engine view.
func (app *App) updateFocused(msg tea.Msg) tea.Cmd {
	if app.view != viewSingle {
		return nil
	}
	var cmd tea.Cmd
	if app.focus == focusEngineID {
		app.engineID, cmd = app.engineID.Update(msg)
	} else {
		app.telemetry, cmd = app.telemetry.Update(msg)
	}
	return cmd
}

func (app *App) cycleFocus() tea.Cmd {
	if app.focus == focusEngineID {
		app.focus = focusTelemetry
		app.engineID.Blur()
		return app.telemetry.Focus()
	}
	app.focus = focusEngineID
	app.telemetry.Blur()
	return app.engineID.Focus()
}

// startSync dispatches a fleet sync unless one is already in flight.
func (app *App) startSync() tea.Cmd {
	if app.syncer == nil {
		return nil
	}
	if app.syncing {
		return app.notify(severityWarning, "Fleet sync already in progress")
	}
	app.syncing = true
	return tea.Batch(app.syncCmd(), app.spinner.Tick)
}

// syncCmd runs one fleet sync batch off the UI goroutine.
func (app *App) syncCmd() tea.Cmd {
	s := app.syncer
	return func() tea.Msg {
		report, err := s.SyncAll(context.Background())
		return FleetSyncedMsg{Report: report, Err: err}
	}
}

func (app *App) handleSynced(msg FleetSyncedMsg) tea.Cmd {
	if msg.Err != nil {
		// Rejected batch: another one is still running, keep the indicator.
		if errors.Is(msg.Err, engine.ErrSyncInFlight) {
			return app.notify(severityWarning, "Fleet sync already in progress")
		}
		app.syncing = false
		return app.notifyError("Fleet sync failed", msg.Err)
	}

	app.syncing = false
	r := msg.Report
	app.lastReport = r
	app.history.Push(model.SyncPoint{
		Timestamp: r.FinishedAt,
		Succeeded: r.Succeeded(),
		Failed:    r.Failed(),
		Duration:  r.Duration(),
	})

	failed := r.Errors()
	switch {
	case len(failed) == 0:
		return app.notify(severityNormal, "Fleet synced: %d engines updated", r.Succeeded())
	case len(failed) == len(r.Outcomes):
		return app.notify(severityCritical, "Fleet sync failed for all %d engines: %s",
			len(failed), describeError(failed[0].Err))
	default:
		return app.notify(severityWarning, "%d of %d engines failed to sync (%s: %s)",
			len(failed), len(r.Outcomes), failed[0].EngineID, describeError(failed[0].Err))
	}
}

// startPredict submits the telemetry buffer for the engine in the ID field.
func (app *App) startPredict() tea.Cmd {
	if app.predicting || app.client == nil {
		return nil
	}
	app.predicting = true
	return tea.Batch(app.predictCmd(), app.spinner.Tick)
}

func (app *App) predictCmd() tea.Cmd {
	c, store := app.client, app.store
	raw := app.telemetry.Value()
	id := strings.TrimSpace(app.engineID.Value())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), predictTimeout)
		defer cancel()
		res, err := engine.PredictSingle(ctx, c, store, raw, id)
		if err != nil {
			return PredictErrorMsg{Err: err}
		}
		return PredictionMsg{EngineID: id, Result: res}
	}
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	var parts []string

	parts = append(parts, renderHeader(app))
	if n := renderNotice(app); n != "" {
		parts = append(parts, n)
	}
	if app.view == viewFleet {
		parts = append(parts, renderFleet(app))
	} else {
		parts = append(parts, renderSingle(app))
	}
	parts = append(parts, renderFooter(app))

	return strings.Join(parts, "\n")
}

func orUnknown(id string) string {
	if id == "" {
		return "Unknown"
	}
	return id
}
