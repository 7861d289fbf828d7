package domain

import (
	"time"

	"github.com/google/uuid"
)

// Core domain models for exposure ingestion and upload preparation. Wire
// shapes for the platform bridge and the upload API live in the adapters;
// keep these decoupled where helpful.

// AttenuationMinutes buckets exposure duration by attenuation-derived risk.
type AttenuationMinutes struct {
	HighRisk   int
	MediumRisk int
	LowRisk    int
}

// CheckResult is the raw per-cycle output of the platform matching engine,
// before any status decision has been made.
type CheckResult struct {
	DaysSinceLastExposure int
	MatchedKeyCount       int
	MaximumRiskScore      int
	AttenuationMinutes    AttenuationMinutes
	RiskScoreSum          int
}

// ExposureInfo is the per-matched-key detail underlying a summary. Owned by
// exactly one ExposureSummary, never shared.
type ExposureInfo struct {
	Date               time.Time
	TotalRiskScore     int
	DurationMinutes    int
	AttenuationMinutes AttenuationMinutes
}

// ExposureSummary records one check cycle. Immutable once appended; later
// cycles supersede it for status computation but never rewrite it.
type ExposureSummary struct {
	ID                 uuid.UUID
	Date               time.Time
	LastExposureDate   time.Time
	MatchedKeyCount    int
	MaximumRiskScore   int
	AttenuationMinutes AttenuationMinutes
	RiskScoreSum       int
	ExposureInfos      []ExposureInfo
}

// RiskPolicy is the configuration snapshot governing qualification and
// upload caps. Immutable per check cycle.
type RiskPolicy struct {
	MinimumRiskScore int
	MaxSummaryCount  int
	MaxInfoCount     int
}

// Valid reports whether the policy can be applied at all. An invalid policy
// must fail cycles closed (treat as non-qualifying), never be guessed at.
func (p RiskPolicy) Valid() bool {
	return p.MinimumRiskScore >= 0 && p.MaxSummaryCount > 0 && p.MaxInfoCount > 0
}

// CountryOfInterest is a user-selected country whose exposure keys are
// relevant to this user. Included in the upload payload.
type CountryOfInterest struct {
	Code       string
	SelectedAt time.Time
}

// Day truncates t to midnight UTC. Exposure dates are whole days.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
