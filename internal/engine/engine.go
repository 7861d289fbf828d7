// Package engine implements the exposure-status state machine: given the
// current status and a fresh check-cycle result it decides the next status
// and whether a user-facing notification (and the detail fetch behind it)
// should fire. Pure computation, no I/O; the orchestrator serializes calls
// and persists the outputs.
package engine

import (
	"time"

	"github.com/google/uuid"

	"veglia/internal/domain"
)

// Result is the outcome of evaluating one check cycle.
//
// Summary is always populated and must be appended to the store regardless
// of Qualifying: history is the audit trail independent of status effect.
// Status must be persisted whenever Qualifying is true. ShouldNotify implies
// Qualifying and asks the caller to fetch detailed exposure infos and attach
// them to Summary before storing it.
type Result struct {
	Summary      domain.ExposureSummary
	Status       domain.ExposureStatus
	Qualifying   bool
	ShouldNotify bool
}

// Evaluate runs one check cycle through the state machine.
//
// A cycle qualifies only if it matched at least one key and its maximum risk
// score meets the policy threshold. Degenerate input (negative counts or
// durations, zero server date) and an invalid policy are treated as
// non-qualifying rather than errors: the summary is still recorded, the
// status is left untouched.
func Evaluate(serverDate time.Time, raw domain.CheckResult, current domain.ExposureStatus, policy domain.RiskPolicy) Result {
	lastExposure := domain.Day(serverDate).AddDate(0, 0, -raw.DaysSinceLastExposure)
	summary := domain.ExposureSummary{
		ID:                 uuid.New(),
		Date:               serverDate,
		LastExposureDate:   lastExposure,
		MatchedKeyCount:    raw.MatchedKeyCount,
		MaximumRiskScore:   raw.MaximumRiskScore,
		AttenuationMinutes: raw.AttenuationMinutes,
		RiskScoreSum:       raw.RiskScoreSum,
	}

	res := Result{Summary: summary, Status: current}
	if !qualifies(serverDate, raw, policy) {
		return res
	}
	res.Qualifying = true

	switch current.Kind {
	case domain.StatusPositive:
		// Absorbing: nothing an incoming summary says can demote it.
		res.Status = current
	case domain.StatusExposed:
		if lastExposure.After(current.LastExposureDate) {
			res.Status = domain.Exposed(lastExposure, current.Acknowledged)
			res.ShouldNotify = true
		} else {
			res.Status = current
		}
	case domain.StatusNone:
		res.Status = domain.Exposed(lastExposure, false)
		res.ShouldNotify = true
	}
	return res
}

func qualifies(serverDate time.Time, raw domain.CheckResult, policy domain.RiskPolicy) bool {
	if !policy.Valid() || serverDate.IsZero() {
		return false
	}
	if raw.DaysSinceLastExposure < 0 || raw.RiskScoreSum < 0 {
		return false
	}
	a := raw.AttenuationMinutes
	if a.HighRisk < 0 || a.MediumRisk < 0 || a.LowRisk < 0 {
		return false
	}
	return raw.MatchedKeyCount > 0 && raw.MaximumRiskScore >= policy.MinimumRiskScore
}
