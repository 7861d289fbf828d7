// Package upload prepares a bounded, risk-ranked subset of the locally
// stored exposure history for transmission after a confirmed diagnosis.
package upload

import (
	"sort"
	"time"

	"veglia/internal/domain"
)

// Record is the upload representation of one retained summary. Dates are
// relative to the server date of the diagnosis token, not the original
// check date, so the payload leaks no device clock information.
type Record struct {
	Date                  time.Time    `json:"date"`
	DaysSinceLastExposure int          `json:"days_since_last_exposure"`
	MatchedKeyCount       int          `json:"matched_key_count"`
	MaximumRiskScore      int          `json:"maximum_risk_score"`
	HighRiskMinutes       int          `json:"high_risk_attenuation_minutes"`
	MediumRiskMinutes     int          `json:"medium_risk_attenuation_minutes"`
	LowRiskMinutes        int          `json:"low_risk_attenuation_minutes"`
	RiskScoreSum          int          `json:"risk_score_sum"`
	ExposureInfos         []RecordInfo `json:"exposure_infos"`
}

// RecordInfo is the upload representation of one surviving exposure info.
type RecordInfo struct {
	Date              time.Time `json:"date"`
	TotalRiskScore    int       `json:"total_risk_score"`
	DurationMinutes   int       `json:"duration_minutes"`
	HighRiskMinutes   int       `json:"high_risk_attenuation_minutes"`
	MediumRiskMinutes int       `json:"medium_risk_attenuation_minutes"`
	LowRiskMinutes    int       `json:"low_risk_attenuation_minutes"`
}

// Payload is the complete body handed to the upload transport together with
// the diagnosis token.
type Payload struct {
	ServerDate time.Time `json:"server_date"`
	Summaries  []Record  `json:"summaries"`
	Countries  []string  `json:"countries_of_interest"`
}

// Prepare selects and ranks the history subset to upload.
//
// Three passes, each owning one invariant:
//  1. summaries sorted date-descending and capped at MaxSummaryCount;
//  2. the retained summaries' infos tagged with their positional parent
//     index, globally sorted by total risk score descending (ties: older
//     exposure day first) and capped at MaxInfoCount;
//  3. surviving infos re-partitioned onto their parents, preserving the
//     pass-1 summary order. A retained summary may end up with no infos.
//
// Entries that miss a cap are omitted outright, never merged or aggregated.
// An invalid policy prepares nothing.
func Prepare(summaries []domain.ExposureSummary, policy domain.RiskPolicy, uploadServerDate time.Time) []Record {
	if !policy.Valid() || len(summaries) == 0 {
		return nil
	}

	retained := make([]domain.ExposureSummary, len(summaries))
	copy(retained, summaries)
	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].Date.After(retained[j].Date)
	})
	if len(retained) > policy.MaxSummaryCount {
		retained = retained[:policy.MaxSummaryCount]
	}

	type tagged struct {
		parent int // position within retained, not a stored identifier
		info   domain.ExposureInfo
	}
	var infos []tagged
	for i := range retained {
		for _, in := range retained[i].ExposureInfos {
			infos = append(infos, tagged{parent: i, info: in})
		}
	}
	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i].info, infos[j].info
		if a.TotalRiskScore != b.TotalRiskScore {
			return a.TotalRiskScore > b.TotalRiskScore
		}
		return a.Date.Before(b.Date)
	})
	if len(infos) > policy.MaxInfoCount {
		infos = infos[:policy.MaxInfoCount]
	}

	surviving := make([][]domain.ExposureInfo, len(retained))
	for _, t := range infos {
		surviving[t.parent] = append(surviving[t.parent], t.info)
	}

	out := make([]Record, 0, len(retained))
	for i := range retained {
		out = append(out, toRecord(retained[i], surviving[i], uploadServerDate))
	}
	return out
}

func toRecord(s domain.ExposureSummary, infos []domain.ExposureInfo, serverDate time.Time) Record {
	rec := Record{
		Date:                  domain.Day(serverDate),
		DaysSinceLastExposure: daysBetween(s.LastExposureDate, serverDate),
		MatchedKeyCount:       s.MatchedKeyCount,
		MaximumRiskScore:      s.MaximumRiskScore,
		HighRiskMinutes:       s.AttenuationMinutes.HighRisk,
		MediumRiskMinutes:     s.AttenuationMinutes.MediumRisk,
		LowRiskMinutes:        s.AttenuationMinutes.LowRisk,
		RiskScoreSum:          s.RiskScoreSum,
		ExposureInfos:         make([]RecordInfo, 0, len(infos)),
	}
	for _, in := range infos {
		rec.ExposureInfos = append(rec.ExposureInfos, RecordInfo{
			Date:              domain.Day(in.Date),
			TotalRiskScore:    in.TotalRiskScore,
			DurationMinutes:   in.DurationMinutes,
			HighRiskMinutes:   in.AttenuationMinutes.HighRisk,
			MediumRiskMinutes: in.AttenuationMinutes.MediumRisk,
			LowRiskMinutes:    in.AttenuationMinutes.LowRisk,
		})
	}
	return rec
}

func daysBetween(earlier, later time.Time) int {
	d := int(domain.Day(later).Sub(domain.Day(earlier)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
