package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	ActionLeadCreated        AuditAction = "LEAD_CREATED"
	ActionStatusChanged      AuditAction = "STATUS_CHANGED"
	ActionEmailSent          AuditAction = "EMAIL_SENT"
	ActionEmailReceived      AuditAction = "EMAIL_RECEIVED"
	ActionComplianceCheck    AuditAction = "COMPLIANCE_CHECK"
	ActionRateLimitHit       AuditAction = "RATE_LIMIT_HIT"
	ActionVolumeAdjusted     AuditAction = "VOLUME_ADJUSTED"
	ActionOptOutConfirmation AuditAction = "OPT_OUT_CONFIRMATION_SENT"
)

// AuditLogEntry is append-only. It is the only record of why a lead
// changed state; entries are never edited or removed. LeadID is a
// pointer so the entry survives deletion of its lead.
type AuditLogEntry struct {
	ID            string         `json:"id"`
	LeadID        *string        `json:"lead_id,omitempty"`
	Action        AuditAction    `json:"action"`
	Reasoning     string         `json:"reasoning,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	HumanOverride bool           `json:"human_override"`
	CreatedAt     time.Time      `json:"created_at"`
}

func NewAuditLogEntry(leadID string, action AuditAction, reasoning string, metadata map[string]any) *AuditLogEntry {
	entry := &AuditLogEntry{
		ID:        uuid.New().String(),
		Action:    action,
		Reasoning: reasoning,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	if leadID != "" {
		entry.LeadID = &leadID
	}
	return entry
}

type AuditLogRepositoryInterface interface {
	Append(ctx context.Context, entry *AuditLogEntry) error
	CountByLeadAndAction(ctx context.Context, leadID string, action AuditAction) (int, error)
}
