package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/outreachlabs/leadengine/internal/entity"
)

const uniqueViolation = "23505"

const leadColumns = `
	id, email, first_name, last_name, company_name, job_title,
	location, timezone, status, score, deal_tier, data_source, opt_out,
	employee_count, company_type, scheduled_send_at, last_contacted_at,
	created_at, updated_at
`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	_, err := r.DB.ExecContext(ctx, insertLeadQuery, insertLeadArgs(lead)...)
	return mapLeadInsertErr(err)
}

// CreateLead commits the lead and its LEAD_CREATED audit entry as one
// unit of work, so a cancelled sourcing run never leaves a lead without
// an audit trail.
func (r *LeadRepository) CreateLead(ctx context.Context, lead *entity.Lead, audit *entity.AuditLogEntry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertLeadQuery, insertLeadArgs(lead)...); err != nil {
		return mapLeadInsertErr(err)
	}
	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}

	return tx.Commit()
}

// ApplyTransition is the guarded status write: it only applies when the
// lead is still in the expected state, and the audit entry lands in the
// same transaction. opt_out only ever flips to true, and score only ever
// rises (to the engagement floor of the new status).
func (r *LeadRepository) ApplyTransition(ctx context.Context, leadID string, from, to entity.Status, setOptOut bool, audit *entity.AuditLogEntry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE leads
		SET status = $1, opt_out = opt_out OR $2, score = GREATEST(score, $3), updated_at = NOW()
		WHERE id = $4 AND status = $5
	`, string(to), setOptOut, to.EngagementScore(), leadID, string(from))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrTransitionConflict
	}

	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE email = LOWER($1)`, email)
	return scanLead(row)
}

func (r *LeadRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM leads WHERE email = LOWER($1))`, email).Scan(&exists)
	return exists, err
}

func (r *LeadRepository) ListAll(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

func (r *LeadRepository) ListTopScored(ctx context.Context, minScore, limit int) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE score >= $1 AND opt_out = FALSE
		ORDER BY score DESC
		LIMIT $2
	`, minScore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

func (r *LeadRepository) MarkContacted(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE leads SET last_contacted_at = $1, updated_at = NOW() WHERE id = $2
	`, at, id)
	return err
}

const insertLeadQuery = `
	INSERT INTO leads (
		id, email, first_name, last_name, company_name, job_title,
		location, timezone, status, score, deal_tier, data_source,
		opt_out, employee_count, company_type, created_at, updated_at
	) VALUES (
		$1, LOWER($2), NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''),
		NULLIF($7, ''), NULLIF($8, ''), $9, $10, NULLIF($11, ''), NULLIF($12, ''),
		$13, $14, NULLIF($15, ''), NOW(), NOW()
	)
`

func insertLeadArgs(lead *entity.Lead) []any {
	return []any{
		lead.ID, lead.Email, lead.FirstName, lead.LastName, lead.CompanyName, lead.JobTitle,
		lead.Location, lead.Timezone, string(lead.Status), lead.Score, string(lead.DealTier), lead.DataSource,
		lead.OptOut, lead.EmployeeCount, lead.CompanyType,
	}
}

func mapLeadInsertErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return entity.ErrDuplicateLead
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var firstName, lastName, jobTitle, location, timezone, dealTier, dataSource, companyType sql.NullString
	var employeeCount sql.NullInt64
	var scheduledSendAt, lastContactedAt sql.NullTime

	err := row.Scan(
		&lead.ID, &lead.Email, &firstName, &lastName, &lead.CompanyName, &jobTitle,
		&location, &timezone, &lead.Status, &lead.Score, &dealTier, &dataSource, &lead.OptOut,
		&employeeCount, &companyType, &scheduledSendAt, &lastContactedAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("scan lead: %w", err)
	}

	lead.FirstName = firstName.String
	lead.LastName = lastName.String
	lead.JobTitle = jobTitle.String
	lead.Location = location.String
	lead.Timezone = timezone.String
	lead.DealTier = entity.DealTier(dealTier.String)
	lead.DataSource = dataSource.String
	lead.CompanyType = companyType.String
	lead.EmployeeCount = int(employeeCount.Int64)
	if scheduledSendAt.Valid {
		lead.ScheduledSendAt = &scheduledSendAt.Time
	}
	if lastContactedAt.Valid {
		lead.LastContactedAt = &lastContactedAt.Time
	}

	return &lead, nil
}

func collectLeads(rows *sql.Rows) ([]entity.Lead, error) {
	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}
