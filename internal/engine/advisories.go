package engine

import (
	"fmt"
	"sort"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/format"
	"github.com/dm/rul-go/internal/model"
)

const (
	lowConfidence = 0.5 // predictions below this confidence get a review advisory
	highRisk      = 0.8 // risk score that escalates a Warning engine to critical
)

// CalcAdvisories generates maintenance advisories for the fleet from the
// current store entries. Engines without a result only produce a
// data-freshness advisory when their last sync failed.
// Returns an empty (non-nil) slice when nothing needs attention.
// Advisories are ordered by severity (critical first), then fleet order.
func CalcAdvisories(entries []model.FleetEntry) []model.Advisory {
	result := []model.Advisory{}
	order := make(map[string]int, len(entries))

	for i, e := range entries {
		order[e.EngineID] = i

		if e.LastErr != nil {
			detail := fmt.Sprintf("Last sync failed: %v. No prediction is available yet.", e.LastErr)
			if e.HasResult() {
				detail = fmt.Sprintf("Last sync failed: %v. Showing the prediction from %s.", e.LastErr, e.UpdatedAt.Format("15:04:05"))
			}
			result = append(result, model.Advisory{
				EngineID: e.EngineID,
				Severity: model.SeverityWarning,
				Category: model.CategoryDataFreshness,
				Title:    "Prediction is stale",
				Detail:   detail,
			})
		}
		if !e.HasResult() {
			continue
		}
		r := e.Result

		// Engine status. The detail carries the failure window and savings so
		// the operator sees the cost of waiting in one line.
		switch r.Status {
		case client.StatusCritical:
			result = append(result, model.Advisory{
				EngineID: e.EngineID,
				Severity: model.SeverityCritical,
				Category: model.CategoryHealth,
				Title:    "Engine in CRITICAL state",
				Detail: fmt.Sprintf("RUL %s, failure expected in %s. %s. Preventive maintenance saves %s over a reactive repair.",
					format.FormatCycles(r.PredictedRUL), format.FormatCycleRange(r.TimeToFailure.Min, r.TimeToFailure.Max),
					actionOr(r, "Schedule maintenance immediately"), format.FormatMoney(r.MaintenanceCost.Savings)),
			})
		case client.StatusWarning:
			sev := model.SeverityWarning
			if r.RiskScore >= highRisk {
				sev = model.SeverityCritical
			}
			result = append(result, model.Advisory{
				EngineID: e.EngineID,
				Severity: sev,
				Category: model.CategoryHealth,
				Title:    "Engine in WARNING state",
				Detail: fmt.Sprintf("RUL %s (health %.0f%%, risk %s). %s.",
					format.FormatCycles(r.PredictedRUL), r.HealthPercent, format.FormatFraction(r.RiskScore), actionOr(r, "Plan an inspection")),
			})
		}

		// Degradation trend from the most recent history sample.
		if model.RULTrend(r.RULHistory) == model.TrendDecaying {
			latest, _ := model.LatestRUL(r.RULHistory)
			result = append(result, model.Advisory{
				EngineID: e.EngineID,
				Severity: model.SeverityCritical,
				Category: model.CategoryDegradation,
				Title:    "Rapid RUL decay",
				Detail: fmt.Sprintf("Latest RUL sample is %.0f cycles, below the %d-cycle threshold (slope %.1f cycles/sample).",
					latest, model.CriticalRUL, model.RULSlope(r.RULHistory)),
			})
		}

		if r.Confidence < lowConfidence {
			result = append(result, model.Advisory{
				EngineID: e.EngineID,
				Severity: model.SeverityWarning,
				Category: model.CategoryConfidence,
				Title:    "Low prediction confidence",
				Detail:   fmt.Sprintf("Model confidence is %s. Verify sensor data before acting on this prediction.", format.FormatFraction(r.Confidence)),
			})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Severity != result[j].Severity {
			return result[i].Severity > result[j].Severity
		}
		return order[result[i].EngineID] < order[result[j].EngineID]
	})
	return result
}

func actionOr(r *client.PredictionResult, fallback string) string {
	if r.MaintenanceAction != "" {
		return r.MaintenanceAction
	}
	return fallback
}
