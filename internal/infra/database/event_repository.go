package database

import (
	"context"
	"database/sql"
)

// ProcessedEventRepository gives inbound events exactly-once semantics:
// the unique constraint on event_id arbitrates replays.
type ProcessedEventRepository struct {
	DB *sql.DB
}

func NewProcessedEventRepository(db *sql.DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{DB: db}
}

// IsProcessed reports whether the event id has already been claimed.
func (r *ProcessedEventRepository) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM processed_events WHERE event_id = $1)
	`, eventID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// MarkProcessed returns false when the event id was already claimed by a
// previous delivery.
func (r *ProcessedEventRepository) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO processed_events (event_id, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`, eventID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
