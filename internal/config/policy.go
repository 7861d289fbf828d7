package config

import (
	"context"
	"errors"

	"veglia/internal/domain"
)

// ErrPolicyUnavailable marks a cycle that must fail closed: the configured
// risk policy cannot be applied, so no summary may qualify.
var ErrPolicyUnavailable = errors.New("risk policy unavailable")

// PolicyProvider projects the risk policy out of the loaded configuration.
// Snapshot semantics: the returned value is immutable for the cycle at hand.
type PolicyProvider struct {
	cfg Config
}

func NewPolicyProvider(cfg Config) PolicyProvider { return PolicyProvider{cfg: cfg} }

func (p PolicyProvider) Current(ctx context.Context) (domain.RiskPolicy, error) {
	pol := domain.RiskPolicy{
		MinimumRiskScore: p.cfg.MinimumRiskScore,
		MaxSummaryCount:  p.cfg.MaxSummaryCount,
		MaxInfoCount:     p.cfg.MaxInfoCount,
	}
	if !pol.Valid() {
		return domain.RiskPolicy{}, ErrPolicyUnavailable
	}
	return pol, nil
}
