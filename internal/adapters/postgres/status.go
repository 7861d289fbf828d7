package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"veglia/internal/domain"
)

// StatusRepository. The table holds exactly one row; an empty table reads
// as None so a fresh database needs no seeding.

func (db *DB) Get(ctx context.Context) (domain.ExposureStatus, error) {
	var (
		kind         string
		lastExposure *time.Time
		acknowledged bool
	)
	err := db.Pool.QueryRow(ctx, `
        SELECT kind, last_exposure_date, acknowledged
        FROM exposure_status WHERE id = 1
    `).Scan(&kind, &lastExposure, &acknowledged)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.None(), nil
	}
	if err != nil {
		return domain.None(), err
	}
	k, ok := domain.ParseStatusKind(kind)
	if !ok {
		return domain.None(), errors.New("exposure_status: unknown kind " + kind)
	}
	switch k {
	case domain.StatusExposed:
		if lastExposure == nil {
			return domain.None(), errors.New("exposure_status: exposed row without date")
		}
		return domain.Exposed(domain.Day(*lastExposure), acknowledged), nil
	case domain.StatusPositive:
		return domain.Positive(), nil
	default:
		return domain.None(), nil
	}
}

func (db *DB) Put(ctx context.Context, status domain.ExposureStatus) error {
	var lastExposure any
	if status.Kind == domain.StatusExposed {
		lastExposure = domain.Day(status.LastExposureDate)
	}
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO exposure_status (id, kind, last_exposure_date, acknowledged, updated_at)
        VALUES (1, $1, $2, $3, now())
        ON CONFLICT (id) DO UPDATE
        SET kind = EXCLUDED.kind,
            last_exposure_date = EXCLUDED.last_exposure_date,
            acknowledged = EXCLUDED.acknowledged,
            updated_at = now()
    `, status.Kind.String(), lastExposure, status.Acknowledged)
	return err
}
