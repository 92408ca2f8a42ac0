package usecase

import (
	"context"
	"errors"

	"github.com/outreachlabs/leadengine/internal/entity"
)

// TransitionStore persists a status change and its audit entry in one
// transaction. The update is guarded by the expected current status; if
// another writer got there first the store returns ErrTransitionConflict
// and nothing is written.
type TransitionStore interface {
	ApplyTransition(ctx context.Context, leadID string, from, to entity.Status, setOptOut bool, audit *entity.AuditLogEntry) error
}

type TransitionRequest struct {
	LeadID        string
	To            entity.Status
	Action        entity.AuditAction // defaults to STATUS_CHANGED
	Reasoning     string
	Metadata      map[string]any
	SetOptOut     bool
	HumanOverride bool
}

// StatusService is the only component that writes lead status. Every
// other part of the system goes through Transition, which enforces the
// state diagram and writes exactly one audit entry per change.
type StatusService struct {
	Leads entity.LeadRepositoryInterface
	Store TransitionStore
}

func NewStatusService(leads entity.LeadRepositoryInterface, store TransitionStore) *StatusService {
	return &StatusService{Leads: leads, Store: store}
}

func (s *StatusService) Transition(ctx context.Context, req TransitionRequest) (*entity.Lead, error) {
	lead, err := s.Leads.FindByID(ctx, req.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &InvalidTransitionError{LeadID: req.LeadID, To: req.To}
		}
		return nil, err
	}

	// Already there: nothing to do, and no audit entry since no state
	// actually changed.
	if lead.Status == req.To {
		return lead, nil
	}

	if !entity.CanTransition(lead.Status, req.To) {
		return nil, &InvalidTransitionError{LeadID: lead.ID, From: lead.Status, To: req.To}
	}

	action := req.Action
	if action == "" {
		action = entity.ActionStatusChanged
	}

	metadata := map[string]any{
		"from": string(lead.Status),
		"to":   string(req.To),
	}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	audit := entity.NewAuditLogEntry(lead.ID, action, req.Reasoning, metadata)
	audit.HumanOverride = req.HumanOverride

	if err := s.Store.ApplyTransition(ctx, lead.ID, lead.Status, req.To, req.SetOptOut, audit); err != nil {
		return nil, err
	}

	lead.Status = req.To
	if req.SetOptOut {
		lead.OptOut = true
	}
	if score := req.To.EngagementScore(); score > lead.Score {
		lead.Score = score
	}
	return lead, nil
}
