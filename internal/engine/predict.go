package engine

import (
	"context"
	"fmt"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/model"
	"github.com/dm/rul-go/internal/telemetry"
)

// PredictSingle runs the single-engine flow: parse raw operator input, submit
// it, and record the result as the store's current prediction.
//
// Parsing happens first, so malformed input fails with a
// *telemetry.ShapeMismatchError before any request is made. When engineID
// belongs to the fleet, the fleet entry is updated too. On any failure the
// store is left unchanged.
func PredictSingle(ctx context.Context, c client.PredictClient, store *model.Store, raw, engineID string) (*client.PredictionResult, error) {
	w, err := telemetry.Parse(raw)
	if err != nil {
		return nil, err
	}

	res, err := c.Predict(ctx, w, engineID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("PredictSingle: empty response")
	}

	store.SetCurrent(engineID, res)
	if engineID != "" && store.Contains(engineID) {
		if err := store.Upsert(engineID, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}
