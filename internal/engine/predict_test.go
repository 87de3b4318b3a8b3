package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/model"
	"github.com/dm/rul-go/internal/telemetry"
)

func TestPredictSingle_Success(t *testing.T) {
	store, err := model.NewStore([]string{"ENG-1"})
	require.NoError(t, err)

	gen := telemetry.NewGenerator(1)
	raw := telemetry.Format(gen.Window(0.3))

	var got telemetry.Window
	mc := &MockPredictClient{
		PredictFn: func(_ context.Context, w telemetry.Window, _ string) (*client.PredictionResult, error) {
			got = w
			return &client.PredictionResult{Status: client.StatusWarning, PredictedRUL: 55}, nil
		},
	}

	res, err := PredictSingle(context.Background(), mc, store, raw, "UNIT-0982-A")
	require.NoError(t, err)
	assert.Equal(t, 55, res.PredictedRUL)

	want, err := telemetry.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	id, cur := store.Current()
	assert.Equal(t, "UNIT-0982-A", id)
	assert.Same(t, res, cur)

	e, _ := store.Get("ENG-1")
	assert.False(t, e.HasResult(), "non-fleet engine must not touch fleet entries")
}

func TestPredictSingle_FleetEngineUpdatesEntry(t *testing.T) {
	store, err := model.NewStore([]string{"ENG-1", "ENG-2"})
	require.NoError(t, err)
	raw := telemetry.Format(telemetry.Window{})

	res, err := PredictSingle(context.Background(), &MockPredictClient{}, store, raw, "ENG-2")
	require.NoError(t, err)

	e, _ := store.Get("ENG-2")
	assert.Same(t, res, e.Result)
}

func TestPredictSingle_ShapeErrorSkipsNetwork(t *testing.T) {
	store, err := model.NewStore(nil)
	require.NoError(t, err)
	mc := &MockPredictClient{}

	raw := strings.Repeat("1,2,3\n", 30)
	_, err = PredictSingle(context.Background(), mc, store, raw, "")
	require.Error(t, err)

	var sm *telemetry.ShapeMismatchError
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, telemetry.AxisColumns, sm.Axis)
	assert.Equal(t, 0, mc.Calls())

	_, cur := store.Current()
	assert.Nil(t, cur)
}

func TestPredictSingle_ClientErrorLeavesCurrent(t *testing.T) {
	store, err := model.NewStore(nil)
	require.NoError(t, err)
	prev := &client.PredictionResult{Status: client.StatusHealthy, PredictedRUL: 180}
	store.SetCurrent("A", prev)

	mc := &MockPredictClient{
		PredictFn: func(context.Context, telemetry.Window, string) (*client.PredictionResult, error) {
			return nil, &client.ServerError{Status: 500, Detail: `{"code":"MODEL_ERROR"}`}
		},
	}
	_, err = PredictSingle(context.Background(), mc, store, telemetry.Format(telemetry.Window{}), "B")
	var se *client.ServerError
	require.ErrorAs(t, err, &se)

	id, cur := store.Current()
	assert.Equal(t, "A", id)
	assert.Same(t, prev, cur)
}
