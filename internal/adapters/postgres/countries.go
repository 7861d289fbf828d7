package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"veglia/internal/domain"
)

// CountryRepository

func (db *DB) List(ctx context.Context) ([]domain.CountryOfInterest, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT code, selected_at FROM countries_of_interest ORDER BY code
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CountryOfInterest
	for rows.Next() {
		var c domain.CountryOfInterest
		if err := rows.Scan(&c.Code, &c.SelectedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (db *DB) Replace(ctx context.Context, codes []string) error {
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

	if _, err = tx.Exec(ctx, `DELETE FROM countries_of_interest`); err != nil {
		return err
	}
	for _, code := range codes {
		if _, err = tx.Exec(ctx, `
            INSERT INTO countries_of_interest (code, selected_at) VALUES ($1, now())
        `, code); err != nil {
			return err
		}
	}
	return nil
}
