package tui

import (
	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/engine"
)

// FleetSyncedMsg delivers a settled fleet sync to the TUI. Err is only set
// when the batch was rejected (engine.ErrSyncInFlight); per-engine failures
// are in Report.
type FleetSyncedMsg struct {
	Report *engine.SyncReport
	Err    error
}

// PredictionMsg delivers a single-engine prediction.
type PredictionMsg struct {
	EngineID string
	Result   *client.PredictionResult
}

// PredictErrorMsg signals a failed single-engine prediction, including
// telemetry that did not parse.
type PredictErrorMsg struct{ Err error }

// TelemetryLoadedMsg replaces the telemetry buffer, e.g. after the watched
// file changed on disk.
type TelemetryLoadedMsg struct {
	Raw    string
	Source string
}

// noticeExpiredMsg clears the notification with the matching id, if it is
// still the one on screen.
type noticeExpiredMsg struct{ id int }
