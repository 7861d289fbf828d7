package ports

import (
	"context"

	"veglia/internal/domain"
)

// StatusRepository owns the single current exposure status value.
type StatusRepository interface {
	Get(ctx context.Context) (domain.ExposureStatus, error)
	Put(ctx context.Context, status domain.ExposureStatus) error
}

// SummaryRepository appends check-cycle summaries and serves consistent
// snapshots of the whole history. Append-only: records are never rewritten.
type SummaryRepository interface {
	Append(ctx context.Context, summary domain.ExposureSummary) error
	ListAll(ctx context.Context) ([]domain.ExposureSummary, error)
}

// CountryRepository stores the user's countries of interest.
type CountryRepository interface {
	List(ctx context.Context) ([]domain.CountryOfInterest, error)
	Replace(ctx context.Context, codes []string) error
}
