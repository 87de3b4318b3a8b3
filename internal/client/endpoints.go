package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dm/rul-go/internal/telemetry"
)

const (
	endpointPredict = "/predict"
	endpointHealth  = "/health"
)

// Predict submits one telemetry window to POST /predict. It makes a single
// attempt with no retry.
//
// Non-finite values are zeroed before encoding even though Parse already
// guarantees finiteness; JSON cannot carry NaN or Inf.
func (c *DefaultClient) Predict(ctx context.Context, w telemetry.Window, engineID string) (*PredictionResult, error) {
	payload, err := json.Marshal(PredictionRequest{
		DataWindow: w.Sanitized(),
		EngineID:   engineID,
	})
	if err != nil {
		return nil, fmt.Errorf("Predict encode: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, endpointPredict, payload)
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp.status) {
		return nil, &ServerError{
			Status:    resp.status,
			Detail:    extractDetail(resp.body),
			RequestID: resp.requestID,
		}
	}

	var result PredictionResult
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return nil, &ServerError{
			Status:    resp.status,
			Detail:    fmt.Sprintf("decode response: %v", err),
			RequestID: resp.requestID,
		}
	}
	return &result, nil
}

// Health fetches GET /health with a 1s timeout and decodes the endpoint's
// self-report. A reachable endpoint may still report ModelLoaded false.
func (c *DefaultClient) Health(ctx context.Context) (*HealthResponse, error) {
	healthCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	resp, err := c.do(healthCtx, http.MethodGet, endpointHealth, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) {
		return nil, &ServerError{Status: resp.status, Detail: extractDetail(resp.body), RequestID: resp.requestID}
	}

	var result HealthResponse
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return nil, fmt.Errorf("Health decode: %w", err)
	}
	return &result, nil
}
