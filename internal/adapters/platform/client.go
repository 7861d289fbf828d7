// Package platform talks to the device-local proximity matching bridge. The
// matching algorithm itself is out of scope; this client only pulls its
// results.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"veglia/internal/domain"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 15 * time.Second}}
}

type summaryEnvelope struct {
	Found                 bool      `json:"found"`
	ServerDate            time.Time `json:"server_date"`
	DaysSinceLastExposure int       `json:"days_since_last_exposure"`
	MatchedKeyCount       int       `json:"matched_key_count"`
	MaximumRiskScore      int       `json:"maximum_risk_score"`
	HighRiskMinutes       int       `json:"high_risk_attenuation_minutes"`
	MediumRiskMinutes     int       `json:"medium_risk_attenuation_minutes"`
	LowRiskMinutes        int       `json:"low_risk_attenuation_minutes"`
	RiskScoreSum          int       `json:"risk_score_sum"`
}

type infoEnvelope struct {
	Date              time.Time `json:"date"`
	TotalRiskScore    int       `json:"total_risk_score"`
	DurationMinutes   int       `json:"duration_minutes"`
	HighRiskMinutes   int       `json:"high_risk_attenuation_minutes"`
	MediumRiskMinutes int       `json:"medium_risk_attenuation_minutes"`
	LowRiskMinutes    int       `json:"low_risk_attenuation_minutes"`
}

// LatestSummary pulls the next unprocessed check-cycle result, if any.
func (c *Client) LatestSummary(ctx context.Context) (domain.CheckResult, time.Time, bool, error) {
	var env summaryEnvelope
	if err := c.getJSON(ctx, "/v1/exposure/summary", &env); err != nil {
		return domain.CheckResult{}, time.Time{}, false, err
	}
	if !env.Found {
		return domain.CheckResult{}, time.Time{}, false, nil
	}
	raw := domain.CheckResult{
		DaysSinceLastExposure: env.DaysSinceLastExposure,
		MatchedKeyCount:       env.MatchedKeyCount,
		MaximumRiskScore:      env.MaximumRiskScore,
		AttenuationMinutes: domain.AttenuationMinutes{
			HighRisk:   env.HighRiskMinutes,
			MediumRisk: env.MediumRiskMinutes,
			LowRisk:    env.LowRiskMinutes,
		},
		RiskScoreSum: env.RiskScoreSum,
	}
	return raw, env.ServerDate, true, nil
}

// ExposureInfo pulls the detailed per-key list for the latest summary.
func (c *Client) ExposureInfo(ctx context.Context) ([]domain.ExposureInfo, error) {
	var envs []infoEnvelope
	if err := c.getJSON(ctx, "/v1/exposure/info", &envs); err != nil {
		return nil, err
	}
	out := make([]domain.ExposureInfo, 0, len(envs))
	for _, e := range envs {
		out = append(out, domain.ExposureInfo{
			Date:            e.Date,
			TotalRiskScore:  e.TotalRiskScore,
			DurationMinutes: e.DurationMinutes,
			AttenuationMinutes: domain.AttenuationMinutes{
				HighRisk:   e.HighRiskMinutes,
				MediumRisk: e.MediumRiskMinutes,
				LowRisk:    e.LowRiskMinutes,
			},
		})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("platform bridge: %s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
