package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dm/rul-go/internal/telemetry"
)

// PredictClient defines the interface for talking to the RUL inference endpoint.
type PredictClient interface {
	Predict(ctx context.Context, w telemetry.Window, engineID string) (*PredictionResult, error)
	Health(ctx context.Context) (*HealthResponse, error)
	BaseURL() string
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	BaseURL            string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
	UserAgent          string
}

// DefaultClient implements PredictClient using the standard net/http package.
type DefaultClient struct {
	http   *http.Client
	config ClientConfig
}

// NewDefaultClient constructs a DefaultClient from the given config.
// The request timeout is the only timeout applied to predictions; it belongs
// to the transport, not to callers. Returns an error if BaseURL is empty.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "rul-go"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	return &DefaultClient{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config: cfg,
	}, nil
}

// BaseURL returns the configured base URL of the inference endpoint.
func (c *DefaultClient) BaseURL() string {
	return c.config.BaseURL
}

// response is a fully read HTTP response.
type response struct {
	status    int
	body      []byte
	requestID string
}

// do sends one request to path (relative to BaseURL) and reads the whole body.
// Only transport failures are returned as errors, always as *NetworkError;
// status handling is left to the caller.
func (c *DefaultClient) do(ctx context.Context, method, path string, body []byte) (*response, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + path

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	const maxResponseBytes = 1 << 20 // prediction payloads are a few KB
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Cause: fmt.Errorf("read body: %w", err)}
	}

	return &response{status: resp.StatusCode, body: data, requestID: requestID}, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
