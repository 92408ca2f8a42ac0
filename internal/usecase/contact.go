package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/outreachlabs/leadengine/internal/entity"
)

// EmailService is the external sending collaborator. It returns the
// provider message id on success.
type EmailService interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

type ContactLeadInput struct {
	LeadID  string
	Subject string
	Body    string
	Type    entity.ConversationType
}

type ContactLeadUseCase struct {
	Leads         entity.LeadRepositoryInterface
	Conversations entity.ConversationRepositoryInterface
	Audits        entity.AuditLogRepositoryInterface
	Status        *StatusService
	Compliance    *ComplianceEngine
	Email         EmailService
}

func NewContactLeadUseCase(
	leads entity.LeadRepositoryInterface,
	conversations entity.ConversationRepositoryInterface,
	audits entity.AuditLogRepositoryInterface,
	status *StatusService,
	compliance *ComplianceEngine,
	email EmailService,
) *ContactLeadUseCase {
	return &ContactLeadUseCase{
		Leads:         leads,
		Conversations: conversations,
		Audits:        audits,
		Status:        status,
		Compliance:    compliance,
		Email:         email,
	}
}

// Execute sends one outbound message. The compliance gate runs first and
// a denial is returned as a plain Decision, not an error. On a send
// failure the failure is audited and the lead's status is left alone.
func (uc *ContactLeadUseCase) Execute(ctx context.Context, input ContactLeadInput) (Decision, error) {
	lead, err := uc.Leads.FindByID(ctx, input.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return Decision{}, &DomainError{Code: "LEAD_NOT_FOUND", Message: "lead not found: " + input.LeadID}
		}
		return Decision{}, err
	}

	decision := uc.Compliance.CanContact(ctx, lead)
	if !decision.Allowed {
		entry := entity.NewAuditLogEntry(lead.ID, entity.ActionComplianceCheck, "Outbound send denied", map[string]any{
			"reason": string(decision.Reason),
			"detail": decision.Detail,
		})
		if err := uc.Audits.Append(ctx, entry); err != nil {
			log.Printf("[contact] audit append failed: %v", err)
		}
		return decision, nil
	}

	messageID, sendErr := uc.Email.Send(ctx, lead.Email, input.Subject, input.Body)
	if sendErr != nil {
		entry := entity.NewAuditLogEntry(lead.ID, entity.ActionEmailSent, "Send attempt failed", map[string]any{
			"success": false,
			"error":   sendErr.Error(),
		})
		if err := uc.Audits.Append(ctx, entry); err != nil {
			log.Printf("[contact] audit append failed: %v", err)
		}
		return decision, &ExternalChannelFailure{Channel: "email", Err: sendErr}
	}

	entry := entity.NewAuditLogEntry(lead.ID, entity.ActionEmailSent, "Outbound "+string(input.Type), map[string]any{
		"success":    true,
		"message_id": messageID,
		"subject":    input.Subject,
	})
	if err := uc.Audits.Append(ctx, entry); err != nil {
		// The message is already out; book the contact so a retry does
		// not send it twice, then surface the missing audit entry.
		if markErr := uc.Leads.MarkContacted(ctx, lead.ID, time.Now()); markErr != nil {
			log.Printf("[contact] mark contacted failed: %v", markErr)
		}
		if recErr := uc.Compliance.RecordContact(ctx, lead.ID); recErr != nil {
			log.Printf("[contact] rate counter bump failed: %v", recErr)
		}
		return decision, &TechnicalError{Code: "AUDIT_WRITE_FAILED", Message: "email sent but EMAIL_SENT audit entry was not recorded: " + err.Error()}
	}

	conv := entity.NewConversation(lead.ID, entity.DirectionOutbound, input.Type, input.Subject, input.Body)
	conv.MessageID = messageID
	if err := uc.Conversations.Create(ctx, conv); err != nil {
		log.Printf("[contact] conversation save failed: %v", err)
	}

	now := time.Now()
	if err := uc.Leads.MarkContacted(ctx, lead.ID, now); err != nil {
		log.Printf("[contact] mark contacted failed: %v", err)
	}
	if err := uc.Compliance.RecordContact(ctx, lead.ID); err != nil {
		log.Printf("[contact] rate counter bump failed: %v", err)
	}

	// Follow-ups happen past CONTACTED; only move leads that are still
	// in a pre-contact state.
	if entity.CanTransition(lead.Status, entity.StatusContacted) {
		_, err := uc.Status.Transition(ctx, TransitionRequest{
			LeadID:    lead.ID,
			To:        entity.StatusContacted,
			Reasoning: "Outbound email sent",
			Metadata:  map[string]any{"message_id": messageID},
		})
		if err != nil {
			return decision, err
		}
	}

	return decision, nil
}

// SendOptOutConfirmation is the single courtesy message allowed after a
// lead opts out. It skips CanContact, which would always deny it, and is
// capped at one send through the audit ledger.
func (uc *ContactLeadUseCase) SendOptOutConfirmation(ctx context.Context, leadID string) error {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		return err
	}
	if !lead.OptOut {
		return &DomainError{Code: "NOT_OPTED_OUT", Message: "confirmation only applies to opted-out leads"}
	}

	allowed, err := uc.Compliance.CanSendOptOutConfirmation(ctx, lead)
	if err != nil {
		return err
	}
	if !allowed {
		log.Printf("[contact] opt-out confirmation already sent for %s, skipping", lead.ID)
		return nil
	}

	subject := "You have been unsubscribed"
	body := fmt.Sprintf("Hi%s,\n\nYou won't hear from us again. This is the only confirmation we'll send.\n", greeting(lead.FirstName))

	messageID, sendErr := uc.Email.Send(ctx, lead.Email, subject, body)
	if sendErr != nil {
		return &ExternalChannelFailure{Channel: "email", Err: sendErr}
	}

	entry := entity.NewAuditLogEntry(lead.ID, entity.ActionOptOutConfirmation, "Opt-out confirmation sent", map[string]any{
		"message_id": messageID,
	})
	return uc.Audits.Append(ctx, entry)
}

func greeting(firstName string) string {
	if firstName == "" {
		return ""
	}
	return " " + firstName
}
