package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/model"
)

func TestThreshold_RUL(t *testing.T) {
	cases := []struct {
		rul  float64
		want severity
	}{
		{0, severityCritical},
		{29.9, severityCritical},
		{30, severityWarning}, // boundary: <30 is critical
		{74, severityWarning},
		{75, severityNormal}, // boundary: <75 is warning
		{200, severityNormal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, rulSeverity(tc.rul), "rulSeverity(%v)", tc.rul)
	}
}

func TestThreshold_Risk(t *testing.T) {
	cases := []struct {
		risk float64
		want severity
	}{
		{0, severityNormal},
		{0.49, severityNormal},
		{0.5, severityWarning},
		{0.79, severityWarning},
		{0.8, severityCritical},
		{1, severityCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, riskSeverity(tc.risk), "riskSeverity(%v)", tc.risk)
	}
}

func TestThreshold_Confidence(t *testing.T) {
	assert.Equal(t, severityWarning, confidenceSeverity(0.3))
	assert.Equal(t, severityNormal, confidenceSeverity(0.5))
	assert.Equal(t, severityNormal, confidenceSeverity(0.95))
}

func TestThreshold_Status(t *testing.T) {
	assert.Equal(t, severityCritical, statusSeverity(client.StatusCritical))
	assert.Equal(t, severityWarning, statusSeverity(client.StatusWarning))
	assert.Equal(t, severityNormal, statusSeverity(client.StatusHealthy))
	assert.Equal(t, severityNormal, statusSeverity("Exploded"))
}

func TestThreshold_Advisory(t *testing.T) {
	assert.Equal(t, severityCritical, advisorySeverity(model.SeverityCritical))
	assert.Equal(t, severityWarning, advisorySeverity(model.SeverityWarning))
	assert.Equal(t, severityNormal, advisorySeverity(model.SeverityNormal))
}

func TestSeverityFg(t *testing.T) {
	assert.Equal(t, colorRed, severityFg(severityCritical))
	assert.Equal(t, colorYellow, severityFg(severityWarning))
	assert.Equal(t, colorGreen, severityFg(severityNormal))
}
