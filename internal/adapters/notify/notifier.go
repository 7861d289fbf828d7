package notify

import (
	"context"

	"go.uber.org/zap"

	"veglia/internal/domain"
)

// Logger is a Notifier that records the notification instead of rendering
// it; delivery UI is an external collaborator. Wire a real channel later.
type Logger struct {
	Log *zap.Logger
}

func (n Logger) NotifyExposure(ctx context.Context, status domain.ExposureStatus) error {
	n.Log.Info("exposure notification",
		zap.String("status", status.Kind.String()),
		zap.Time("last_exposure", status.LastExposureDate))
	return nil
}
