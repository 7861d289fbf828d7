// Package exposure orchestrates check cycles: it feeds each incoming
// matching result through the status engine, persists the outcome and keeps
// the summary audit trail. One cycle at a time; the mutex serializes every
// read-modify-write of the current status.
package exposure

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"veglia/internal/domain"
	"veglia/internal/engine"
	"veglia/internal/ports"
)

type Service struct {
	mu sync.Mutex

	status    ports.StatusRepository
	summaries ports.SummaryRepository
	matching  ports.MatchingEngine
	notifier  ports.Notifier
	policy    ports.PolicyProvider
	log       *zap.Logger
}

func New(status ports.StatusRepository, summaries ports.SummaryRepository, matching ports.MatchingEngine, notifier ports.Notifier, policy ports.PolicyProvider, log *zap.Logger) *Service {
	return &Service{
		status:    status,
		summaries: summaries,
		matching:  matching,
		notifier:  notifier,
		policy:    policy,
		log:       log,
	}
}

// ProcessCheckCycle runs one check cycle end to end and returns the
// resulting status and whether a notification fired.
//
// Ordering matters: when the notify decision fires, the new status is
// committed before the detail fetch, so a crash in between leaves the
// status correct with an info-less summary. The summary itself is appended
// unconditionally, qualifying or not.
func (s *Service) ProcessCheckCycle(ctx context.Context, serverDate time.Time, raw domain.CheckResult) (domain.ExposureStatus, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.status.Get(ctx)
	if err != nil {
		return domain.None(), false, err
	}

	policy, err := s.policy.Current(ctx)
	if err != nil {
		// Fail closed: an absent policy makes the cycle non-qualifying,
		// never a guess at a threshold.
		s.log.Warn("risk policy unavailable, cycle fails closed", zap.Error(err))
		policy = domain.RiskPolicy{}
	}

	res := engine.Evaluate(serverDate, raw, current, policy)

	if res.Qualifying {
		if err := s.status.Put(ctx, res.Status); err != nil {
			return current, false, err
		}
	}
	if res.ShouldNotify {
		infos, err := s.matching.ExposureInfo(ctx)
		if err != nil {
			// Status is already committed; store the summary without
			// details and let the next cycle carry the signal.
			s.log.Warn("exposure info fetch failed", zap.Error(err))
			infos = nil
		}
		res.Summary.ExposureInfos = infos
		if err := s.notifier.NotifyExposure(ctx, res.Status); err != nil {
			s.log.Warn("exposure notification delivery failed", zap.Error(err))
		}
	}

	if err := s.summaries.Append(ctx, res.Summary); err != nil {
		return res.Status, res.ShouldNotify, err
	}
	s.log.Info("check cycle processed",
		zap.String("status", res.Status.Kind.String()),
		zap.Bool("qualifying", res.Qualifying),
		zap.Bool("notified", res.ShouldNotify))
	return res.Status, res.ShouldNotify, nil
}

// Current returns the persisted status value.
func (s *Service) Current(ctx context.Context) (domain.ExposureStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Get(ctx)
}

// Acknowledge marks an Exposed status as seen by the user. A no-op for any
// other kind.
func (s *Service) Acknowledge(ctx context.Context) (domain.ExposureStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.status.Get(ctx)
	if err != nil {
		return domain.None(), err
	}
	if current.Kind != domain.StatusExposed || current.Acknowledged {
		return current, nil
	}
	next := domain.Exposed(current.LastExposureDate, true)
	if err := s.status.Put(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

// Reset clears the status back to None. Explicit user/operator action, the
// only path out of Positive.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Put(ctx, domain.None())
}

// MarkPositive force-sets the status after a successful diagnosis upload,
// overriding any Exposed state.
func (s *Service) MarkPositive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Put(ctx, domain.Positive())
}
