package ports

import (
	"context"
	"time"

	"veglia/internal/domain"
)

// StatusFlow drives the exposure status lifecycle.
type StatusFlow interface {
	Current(ctx context.Context) (domain.ExposureStatus, error)
	Acknowledge(ctx context.Context) (domain.ExposureStatus, error)
	Reset(ctx context.Context) error
	ProcessCheckCycle(ctx context.Context, serverDate time.Time, raw domain.CheckResult) (domain.ExposureStatus, bool, error)
}

// DiagnosisUploader submits a confirmed-positive upload.
type DiagnosisUploader interface {
	Upload(ctx context.Context, token string) error
}

// CountryPreferences manages the user's countries of interest.
type CountryPreferences interface {
	Countries(ctx context.Context) ([]domain.CountryOfInterest, error)
	SetCountries(ctx context.Context, codes []string) error
}
