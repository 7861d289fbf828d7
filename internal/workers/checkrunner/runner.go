package checkrunner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"veglia/internal/domain"
	"veglia/internal/ports"
)

// CycleProcessor runs one check cycle for a polled matching result.
type CycleProcessor interface {
	ProcessCheckCycle(ctx context.Context, serverDate time.Time, raw domain.CheckResult) (domain.ExposureStatus, bool, error)
}

// Run polls the platform matching engine on a fixed interval and feeds each
// result through the processor. A single consumer loop: check cycles must
// never interleave their status read-modify-write, so there is deliberately
// no worker pool here.
func Run(ctx context.Context, matching ports.MatchingEngine, processor CycleProcessor, pollInterval time.Duration, log *zap.Logger) {
	if pollInterval <= 0 {
		return
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			raw, serverDate, found, err := matching.LatestSummary(ctx)
			if err != nil {
				log.Warn("matching engine poll failed", zap.Error(err))
				continue
			}
			if !found {
				continue
			}
			status, notified, err := processor.ProcessCheckCycle(ctx, serverDate, raw)
			if err != nil {
				log.Error("check cycle failed", zap.Error(err))
				continue
			}
			if notified {
				log.Info("exposure notification triggered",
					zap.Time("last_exposure", status.LastExposureDate))
			}
		}
	}
}
