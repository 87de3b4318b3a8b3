package model

// AdvisorySeverity indicates the urgency level of an advisory.
type AdvisorySeverity int

const (
	SeverityNormal AdvisorySeverity = iota
	SeverityWarning
	SeverityCritical
)

// AdvisoryCategory groups related advisories.
type AdvisoryCategory int

const (
	CategoryHealth AdvisoryCategory = iota
	CategoryDegradation
	CategoryConfidence
	CategoryDataFreshness
)

// Advisory is a single maintenance suggestion derived from fleet state.
type Advisory struct {
	EngineID string
	Severity AdvisorySeverity
	Category AdvisoryCategory
	Title    string
	Detail   string
}
