package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/telemetry"
)

// MockPredictClient implements client.PredictClient for testing.
type MockPredictClient struct {
	PredictFn func(ctx context.Context, w telemetry.Window, engineID string) (*client.PredictionResult, error)
	HealthFn  func(ctx context.Context) (*client.HealthResponse, error)

	calls atomic.Int32
	mu    sync.Mutex
	seen  []string
}

func (m *MockPredictClient) Predict(ctx context.Context, w telemetry.Window, engineID string) (*client.PredictionResult, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.seen = append(m.seen, engineID)
	m.mu.Unlock()
	if m.PredictFn != nil {
		return m.PredictFn(ctx, w, engineID)
	}
	return &client.PredictionResult{Status: client.StatusHealthy, PredictedRUL: 150, Confidence: 0.9}, nil
}

func (m *MockPredictClient) Health(ctx context.Context) (*client.HealthResponse, error) {
	if m.HealthFn != nil {
		return m.HealthFn(ctx)
	}
	return &client.HealthResponse{Status: "online", ModelLoaded: true}, nil
}

func (m *MockPredictClient) BaseURL() string {
	return "http://mock:8000"
}

// Calls returns the number of Predict invocations.
func (m *MockPredictClient) Calls() int {
	return int(m.calls.Load())
}

// Seen returns the engine IDs passed to Predict, in call order.
func (m *MockPredictClient) Seen() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.seen...)
}

var errMockFailure = errors.New("mock failure")

// constSource returns the same zero window for every engine.
func constSource(_ context.Context, _ string) (telemetry.Window, error) {
	return telemetry.Window{}, nil
}
