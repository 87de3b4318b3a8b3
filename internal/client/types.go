package client

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"github.com/dm/rul-go/internal/telemetry"
)

// Health status values returned by the inference endpoint.
const (
	StatusHealthy  = "Healthy"
	StatusWarning  = "Warning"
	StatusCritical = "Critical"
)

// PredictionRequest is the body of POST /predict. EngineID is omitted from the
// JSON entirely when empty.
type PredictionRequest struct {
	DataWindow telemetry.Window `json:"data_window"`
	EngineID   string           `json:"engineId,omitempty"`
}

// PredictionResult is the response from POST /predict.
//
// RULHistory is chronological: oldest sample first, most recent last.
type PredictionResult struct {
	PredictedRUL      int             `json:"predicted_rul"`
	HealthPercent     float64         `json:"health_percent"`
	HealthGrade       string          `json:"health_grade"`
	Status            string          `json:"status"`
	RiskScore         float64         `json:"risk_score"`
	Confidence        float64         `json:"confidence"`
	MaintenanceAction string          `json:"maintenance_action"`
	TimeToFailure     TimeToFailure   `json:"time_to_failure"`
	MaintenanceCost   MaintenanceCost `json:"maintenance_cost"`
	TopSensors        []SensorImpact  `json:"top_sensors"`
	RULHistory        []float64       `json:"rul_history"`
}

// UnmarshalJSON accepts predicted_rul as any JSON number. Models commonly
// emit cycle counts as floats (87.0, 87.53); they are rounded to whole cycles.
func (r *PredictionResult) UnmarshalJSON(data []byte) error {
	type plain PredictionResult
	aux := struct {
		*plain
		PredictedRUL float64 `json:"predicted_rul"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.PredictedRUL = roundCycles(aux.PredictedRUL)
	return nil
}

// TimeToFailure bounds the failure window in cycles (Min <= Max).
type TimeToFailure struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// UnmarshalJSON accepts fractional bounds and rounds them like PredictedRUL.
func (t *TimeToFailure) UnmarshalJSON(data []byte) error {
	var aux struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Min, t.Max = roundCycles(aux.Min), roundCycles(aux.Max)
	return nil
}

func roundCycles(f float64) int {
	return int(math.Round(f))
}

// MaintenanceCost holds monetary estimates. Decimal keeps the values exact.
type MaintenanceCost struct {
	Preventive decimal.Decimal `json:"preventive"`
	Reactive   decimal.Decimal `json:"reactive"`
	Savings    decimal.Decimal `json:"savings"`
}

// SensorImpact is one sensor channel's contribution to the prediction.
// Impact is a fraction in [0, 1].
type SensorImpact struct {
	Sensor string  `json:"sensor"`
	Impact float64 `json:"impact"`
}

// HealthResponse is the response from GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// errorBody is the shape of a non-2xx response. Detail may be a string or a
// nested object, so it is kept raw.
type errorBody struct {
	Detail rawDetail `json:"detail"`
}
