package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/engine"
	"github.com/dm/rul-go/internal/format"
)

// runOnce checks the endpoint, syncs the fleet once and prints one row per
// engine to out. It returns the process exit code: 1 when the endpoint is
// unreachable, has no model loaded, or any engine failed.
func runOnce(ctx context.Context, c client.PredictClient, s *engine.Syncer, out io.Writer, log zerolog.Logger) int {
	h, err := c.Health(ctx)
	if err != nil {
		log.Error().Err(err).Str("endpoint", c.BaseURL()).Msg("health check failed")
		fmt.Fprintf(out, "endpoint %s is not healthy: %v\n", c.BaseURL(), err)
		return 1
	}
	log.Debug().Str("status", h.Status).Bool("model_loaded", h.ModelLoaded).Msg("endpoint health")
	fmt.Fprintf(out, "endpoint %s: status=%s model_loaded=%t\n", c.BaseURL(), h.Status, h.ModelLoaded)
	if !h.ModelLoaded {
		log.Error().Str("endpoint", c.BaseURL()).Msg("endpoint has no model loaded")
		fmt.Fprintf(out, "endpoint %s has no model loaded\n", c.BaseURL())
		return 1
	}

	report, err := s.SyncAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fleet sync failed")
		return 1
	}

	fmt.Fprintln(out, renderReport(report))
	fmt.Fprintf(out, "%d/%d engines synced in %s\n",
		report.Succeeded(), len(report.Outcomes), format.FormatLatency(float64(report.Duration().Microseconds())/1000))

	if report.Failed() > 0 {
		return 1
	}
	return 0
}

// renderReport renders the outcomes as a plain bordered table.
func renderReport(r *engine.SyncReport) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ENGINE", "STATUS", "RUL", "HEALTH", "RISK", "CONFIDENCE", "ACTION")

	for _, o := range r.Outcomes {
		if o.Err != nil {
			t.Row(o.EngineID, "ERROR", format.NotAvailable, format.NotAvailable, format.NotAvailable, format.NotAvailable, o.Err.Error())
			continue
		}
		res := o.Result
		t.Row(
			o.EngineID,
			strings.ToUpper(res.Status),
			format.FormatCycles(res.PredictedRUL),
			format.FormatPercent(res.HealthPercent),
			format.FormatFraction(res.RiskScore),
			format.FormatFraction(res.Confidence),
			res.MaintenanceAction,
		)
	}
	return t.String()
}
