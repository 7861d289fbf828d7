package ports

import (
	"context"
	"time"

	"veglia/internal/domain"
	"veglia/internal/upload"
)

// MatchingEngine is the platform proximity-matching subsystem. LatestSummary
// yields at most one unprocessed check-cycle result per call; ExposureInfo
// is the on-demand per-key detail list, fetched only when the notify
// decision fires.
type MatchingEngine interface {
	LatestSummary(ctx context.Context) (raw domain.CheckResult, serverDate time.Time, found bool, err error)
	ExposureInfo(ctx context.Context) ([]domain.ExposureInfo, error)
}

// UploadTransport hands a prepared payload to the network upload service.
// Token validation (OTP/CUN) happens server-side behind Submit.
type UploadTransport interface {
	ServerTime(ctx context.Context) (time.Time, error)
	Submit(ctx context.Context, token string, payload upload.Payload) error
}

// Notifier delivers the user-facing exposure notification.
type Notifier interface {
	NotifyExposure(ctx context.Context, status domain.ExposureStatus) error
}

// PolicyProvider projects the current risk policy out of configuration.
// An error means configuration is unavailable and the cycle must fail closed.
type PolicyProvider interface {
	Current(ctx context.Context) (domain.RiskPolicy, error)
}
