package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ContactCounterRepository is the keyed TTL counter behind the
// compliance rate limits. Living in Postgres instead of process memory
// means limits hold across restarts and across instances.
type ContactCounterRepository struct {
	DB *sql.DB
}

func NewContactCounterRepository(db *sql.DB) *ContactCounterRepository {
	return &ContactCounterRepository{DB: db}
}

func (r *ContactCounterRepository) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO contact_counters (key, count, window_started_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (key) DO UPDATE SET
			count = CASE
				WHEN contact_counters.window_started_at < NOW() - make_interval(secs => $2) THEN 1
				ELSE contact_counters.count + 1
			END,
			window_started_at = CASE
				WHEN contact_counters.window_started_at < NOW() - make_interval(secs => $2) THEN NOW()
				ELSE contact_counters.window_started_at
			END
		RETURNING count
	`, key, window.Seconds()).Scan(&count)
	return count, err
}

func (r *ContactCounterRepository) Peek(ctx context.Context, key string, window time.Duration) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `
		SELECT count FROM contact_counters
		WHERE key = $1 AND window_started_at >= NOW() - make_interval(secs => $2)
	`, key, window.Seconds()).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}
