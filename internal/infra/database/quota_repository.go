package database

import (
	"context"
	"database/sql"
)

// SourcingQuotaRepository stores the volume control loop's output: the
// per-channel fetch quotas the next sourcing run should use.
type SourcingQuotaRepository struct {
	DB *sql.DB
}

func NewSourcingQuotaRepository(db *sql.DB) *SourcingQuotaRepository {
	return &SourcingQuotaRepository{DB: db}
}

func (r *SourcingQuotaRepository) SaveQuotas(ctx context.Context, quotas map[string]int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for channel, quota := range quotas {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sourcing_quotas (channel, quota, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (channel) DO UPDATE SET quota = EXCLUDED.quota, updated_at = NOW()
		`, channel, quota)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SourcingQuotaRepository) LoadQuotas(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT channel, quota FROM sourcing_quotas`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotas := make(map[string]int)
	for rows.Next() {
		var channel string
		var quota int
		if err := rows.Scan(&channel, &quota); err != nil {
			return nil, err
		}
		quotas[channel] = quota
	}
	return quotas, rows.Err()
}
