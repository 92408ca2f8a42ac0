package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/outreachlabs/leadengine/internal/entity"
)

type AuditLogRepository struct {
	DB *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{DB: db}
}

// The table is append-only: there are no UPDATE or DELETE paths here.
func (r *AuditLogRepository) Append(ctx context.Context, entry *entity.AuditLogEntry) error {
	return insertAudit(ctx, r.DB, entry)
}

func (r *AuditLogRepository) CountByLeadAndAction(ctx context.Context, leadID string, action entity.AuditAction) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM audit_logs WHERE lead_id = $1 AND action = $2
	`, leadID, string(action)).Scan(&count)
	return count, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertAudit works against either the pool or an open transaction so
// status changes can commit atomically with their audit entry.
func insertAudit(ctx context.Context, db execer, entry *entity.AuditLogEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, lead_id, action, reasoning, metadata, human_override, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
	`, entry.ID, entry.LeadID, string(entry.Action), entry.Reasoning, metadata, entry.HumanOverride, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}
