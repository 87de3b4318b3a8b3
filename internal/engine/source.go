package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dm/rul-go/internal/telemetry"
)

// WindowSource builds the telemetry window submitted for one engine. An error
// counts as that engine's failure and no request is sent for it.
type WindowSource func(ctx context.Context, engineID string) (telemetry.Window, error)

// SyntheticSource generates demo telemetry. Wear rises linearly with the
// engine's position in ids, so the first engine looks new and the last one
// worn out. Unknown engines get mid-range wear.
func SyntheticSource(gen *telemetry.Generator, ids []string) WindowSource {
	wear := make(map[string]float64, len(ids))
	for i, id := range ids {
		if len(ids) == 1 {
			wear[id] = 0.5
			continue
		}
		wear[id] = float64(i) / float64(len(ids)-1)
	}
	return func(_ context.Context, engineID string) (telemetry.Window, error) {
		wf, ok := wear[engineID]
		if !ok {
			wf = 0.5
		}
		return gen.Window(wf), nil
	}
}

// DirSource reads <dir>/<engineID>.csv for every request and runs it through
// telemetry.Parse, so a malformed file fails only its own engine.
func DirSource(dir string) WindowSource {
	return func(_ context.Context, engineID string) (telemetry.Window, error) {
		if engineID != filepath.Base(engineID) {
			return telemetry.Window{}, fmt.Errorf("engine id %q is not a valid file name", engineID)
		}
		data, err := os.ReadFile(filepath.Join(dir, engineID+".csv"))
		if err != nil {
			return telemetry.Window{}, fmt.Errorf("read telemetry: %w", err)
		}
		w, err := telemetry.Parse(string(data))
		if err != nil {
			return telemetry.Window{}, fmt.Errorf("%s.csv: %w", engineID, err)
		}
		return w, nil
	}
}
