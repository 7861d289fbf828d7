package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"veglia/internal/domain"
)

// SummaryRepository. Summaries and their infos are written in one
// transaction so a stored summary is always complete.

func (db *DB) Append(ctx context.Context, summary domain.ExposureSummary) error {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
        INSERT INTO exposure_summaries
            (id, date, last_exposure_date, matched_key_count, maximum_risk_score,
             high_risk_minutes, medium_risk_minutes, low_risk_minutes, risk_score_sum)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, summary.ID, summary.Date, domain.Day(summary.LastExposureDate),
		summary.MatchedKeyCount, summary.MaximumRiskScore,
		summary.AttenuationMinutes.HighRisk, summary.AttenuationMinutes.MediumRisk,
		summary.AttenuationMinutes.LowRisk, summary.RiskScoreSum); err != nil {
		return err
	}
	for _, info := range summary.ExposureInfos {
		if _, err = tx.Exec(ctx, `
            INSERT INTO exposure_infos
                (summary_id, date, total_risk_score, duration_minutes,
                 high_risk_minutes, medium_risk_minutes, low_risk_minutes)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, summary.ID, domain.Day(info.Date), info.TotalRiskScore, info.DurationMinutes,
			info.AttenuationMinutes.HighRisk, info.AttenuationMinutes.MediumRisk,
			info.AttenuationMinutes.LowRisk); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) ListAll(ctx context.Context) ([]domain.ExposureSummary, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, date, last_exposure_date, matched_key_count, maximum_risk_score,
               high_risk_minutes, medium_risk_minutes, low_risk_minutes, risk_score_sum
        FROM exposure_summaries
        ORDER BY date DESC, created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExposureSummary
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var s domain.ExposureSummary
		if err := rows.Scan(&s.ID, &s.Date, &s.LastExposureDate, &s.MatchedKeyCount,
			&s.MaximumRiskScore, &s.AttenuationMinutes.HighRisk,
			&s.AttenuationMinutes.MediumRisk, &s.AttenuationMinutes.LowRisk,
			&s.RiskScoreSum); err != nil {
			return nil, err
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	infoRows, err := db.Pool.Query(ctx, `
        SELECT summary_id, date, total_risk_score, duration_minutes,
               high_risk_minutes, medium_risk_minutes, low_risk_minutes
        FROM exposure_infos
        ORDER BY summary_id, id
    `)
	if err != nil {
		return nil, err
	}
	defer infoRows.Close()
	for infoRows.Next() {
		var (
			parent uuid.UUID
			info   domain.ExposureInfo
		)
		if err := infoRows.Scan(&parent, &info.Date, &info.TotalRiskScore,
			&info.DurationMinutes, &info.AttenuationMinutes.HighRisk,
			&info.AttenuationMinutes.MediumRisk, &info.AttenuationMinutes.LowRisk); err != nil {
			return nil, err
		}
		if i, ok := index[parent]; ok {
			out[i].ExposureInfos = append(out[i].ExposureInfos, info)
		}
	}
	return out, infoRows.Err()
}
