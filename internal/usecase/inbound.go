package usecase

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/outreachlabs/leadengine/internal/entity"
)

// Standalone "ooo" only; "soooo" in a reply body is not an auto-responder.
var oooToken = regexp.MustCompile(`\booo\b`)

const (
	EventTypeBounce      = "bounce"
	EventTypeComplaint   = "complaint"
	EventTypeUnsubscribe = "unsubscribe"
	EventTypeReply       = "reply"
)

// InboundEvent is the externally supplied webhook shape. EventID is the
// idempotency key; replaying the same id is a no-op.
type InboundEvent struct {
	EventID   string `json:"event_id"`
	LeadID    string `json:"lead_id,omitempty"`
	LeadEmail string `json:"lead_email,omitempty"`
	EventType string `json:"event_type"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body,omitempty"`
}

// EventLedger records processed event ids. An id is claimed only after
// its effect has been applied, so a failed application leaves the event
// free to redeliver. MarkProcessed returns false when the id was already
// claimed.
type EventLedger interface {
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// ConfirmationQueue hands the opt-out confirmation off for a later,
// compliance-checked send.
type ConfirmationQueue interface {
	PublishConfirmation(ctx context.Context, leadID string) error
}

type InboundOutcome struct {
	Applied        bool
	Orphan         bool
	Duplicate      bool
	NewStatus      entity.Status
	Classification entity.Classification
}

type ProcessInboundUseCase struct {
	Leads         entity.LeadRepositoryInterface
	Conversations entity.ConversationRepositoryInterface
	Status        *StatusService
	Events        EventLedger
	Confirmations ConfirmationQueue
}

func NewProcessInboundUseCase(
	leads entity.LeadRepositoryInterface,
	conversations entity.ConversationRepositoryInterface,
	status *StatusService,
	events EventLedger,
	confirmations ConfirmationQueue,
) *ProcessInboundUseCase {
	return &ProcessInboundUseCase{
		Leads:         leads,
		Conversations: conversations,
		Status:        status,
		Events:        events,
		Confirmations: confirmations,
	}
}

// Execute maps one inbound signal to exactly one state-machine
// transition. Callers must feed events for the same lead in arrival
// order; the queue consumer guarantees that with prefetch 1.
func (uc *ProcessInboundUseCase) Execute(ctx context.Context, event InboundEvent) (*InboundOutcome, error) {
	if event.EventID == "" {
		return nil, &DomainError{Code: "MISSING_EVENT_ID", Message: "inbound event has no event id"}
	}

	lead, err := uc.findLead(ctx, event)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			// Orphans are accepted and logged, never an error: the
			// sender retries 5xx responses forever.
			log.Printf("[inbound] orphan event %s (%s): no matching lead", event.EventID, event.EventType)
			return &InboundOutcome{Orphan: true}, nil
		}
		return nil, err
	}

	done, err := uc.Events.IsProcessed(ctx, event.EventID)
	if err != nil {
		return nil, err
	}
	if done {
		return &InboundOutcome{Duplicate: true, NewStatus: lead.Status}, nil
	}

	outcome, err := uc.apply(ctx, lead, event)
	if err != nil {
		return nil, err
	}

	// Claim the id only once the effect stuck. A failure above leaves the
	// event unclaimed so a redelivery can retry it; the handlers tolerate
	// the rare re-application that an unclaimed success would cause.
	if _, err := uc.Events.MarkProcessed(ctx, event.EventID); err != nil {
		return nil, err
	}
	return outcome, nil
}

func (uc *ProcessInboundUseCase) apply(ctx context.Context, lead *entity.Lead, event InboundEvent) (*InboundOutcome, error) {
	switch event.EventType {
	case EventTypeBounce:
		return uc.applyBounce(ctx, lead, event)
	case EventTypeComplaint, EventTypeUnsubscribe:
		return uc.applyOptOut(ctx, lead, event)
	case EventTypeReply:
		return uc.applyReply(ctx, lead, event)
	default:
		log.Printf("[inbound] unknown event type %q for %s, ignoring", event.EventType, event.EventID)
		return &InboundOutcome{NewStatus: lead.Status}, nil
	}
}

func (uc *ProcessInboundUseCase) findLead(ctx context.Context, event InboundEvent) (*entity.Lead, error) {
	if event.LeadID != "" {
		return uc.Leads.FindByID(ctx, event.LeadID)
	}
	if event.LeadEmail != "" {
		return uc.Leads.FindByEmail(ctx, strings.ToLower(event.LeadEmail))
	}
	return nil, entity.ErrLeadNotFound
}

// A bounce means the address is dead, not that the person opted out.
// Bounces for leads already parked in a terminal status are routine
// late arrivals and are acknowledged without touching the record.
func (uc *ProcessInboundUseCase) applyBounce(ctx context.Context, lead *entity.Lead, event InboundEvent) (*InboundOutcome, error) {
	if lead.Status.Terminal() {
		return &InboundOutcome{NewStatus: lead.Status}, nil
	}
	updated, err := uc.Status.Transition(ctx, TransitionRequest{
		LeadID:    lead.ID,
		To:        entity.StatusUnqualified,
		Reasoning: "Delivery bounce",
		Metadata: map[string]any{
			"archiveReason": "bounced",
			"event_id":      event.EventID,
		},
	})
	if err != nil {
		return nil, err
	}
	return &InboundOutcome{Applied: true, NewStatus: updated.Status}, nil
}

func (uc *ProcessInboundUseCase) applyOptOut(ctx context.Context, lead *entity.Lead, event InboundEvent) (*InboundOutcome, error) {
	if lead.Status.Terminal() {
		// Already off the board. A second complaint or unsubscribe
		// changes nothing and must not queue another confirmation.
		return &InboundOutcome{NewStatus: lead.Status}, nil
	}
	updated, err := uc.Status.Transition(ctx, TransitionRequest{
		LeadID:    lead.ID,
		To:        entity.StatusDoNotContact,
		SetOptOut: true,
		Reasoning: "Opt-out signal: " + event.EventType,
		Metadata:  map[string]any{"event_id": event.EventID},
	})
	if err != nil {
		return nil, err
	}

	if err := uc.Confirmations.PublishConfirmation(ctx, lead.ID); err != nil {
		// Confirmation is a courtesy; the opt-out itself already stuck.
		log.Printf("[inbound] failed to queue opt-out confirmation for %s: %v", lead.ID, err)
	}

	return &InboundOutcome{Applied: true, NewStatus: updated.Status}, nil
}

func (uc *ProcessInboundUseCase) applyReply(ctx context.Context, lead *entity.Lead, event InboundEvent) (*InboundOutcome, error) {
	classification := ClassifyReplyContent(event.Body)

	conv := entity.NewConversation(lead.ID, entity.DirectionInbound, entity.ConversationFollowUp, event.Subject, event.Body)
	conv.Classification = classification
	if err := uc.Conversations.Create(ctx, conv); err != nil {
		return nil, err
	}

	// A written "stop" is an explicit opt-out even though it arrived as
	// an ordinary reply.
	if classification == entity.ClassificationStop {
		outcome, err := uc.applyOptOut(ctx, lead, event)
		if err != nil {
			return nil, err
		}
		outcome.Classification = classification
		return outcome, nil
	}

	// Later replies in an ongoing thread arrive after the lead has moved
	// past REPLIED (or out of the funnel). Keep the conversation, leave
	// the status alone.
	if !entity.CanTransition(lead.Status, entity.StatusReplied) {
		return &InboundOutcome{NewStatus: lead.Status, Classification: classification}, nil
	}

	updated, err := uc.Status.Transition(ctx, TransitionRequest{
		LeadID:    lead.ID,
		To:        entity.StatusReplied,
		Action:    entity.ActionEmailReceived,
		Reasoning: "Inbound reply classified as " + string(classification),
		Metadata: map[string]any{
			"classification": string(classification),
			"event_id":       event.EventID,
		},
	})
	if err != nil {
		return nil, err
	}

	return &InboundOutcome{Applied: true, NewStatus: updated.Status, Classification: classification}, nil
}

// ClassifyReplyContent buckets a human reply by keywords. Order matters:
// "not interested" must win over "interested".
func ClassifyReplyContent(content string) entity.Classification {
	lower := strings.ToLower(content)

	if strings.Contains(lower, "stop") || strings.Contains(lower, "unsubscribe") || strings.Contains(lower, "remove me") {
		return entity.ClassificationStop
	}
	if strings.Contains(lower, "not interested") || strings.Contains(lower, "no thanks") {
		return entity.ClassificationNotInterested
	}
	if strings.Contains(lower, "out of office") || oooToken.MatchString(lower) || strings.Contains(lower, "annual leave") {
		return entity.ClassificationOutOfOffice
	}
	if strings.Contains(lower, "interested") || strings.Contains(lower, "tell me more") || strings.Contains(lower, "demo") {
		return entity.ClassificationInterested
	}
	if strings.Contains(lower, "speak to") || strings.Contains(lower, "call me") || strings.Contains(lower, "human") {
		return entity.ClassificationEscalation
	}

	return entity.ClassificationNotInterested
}
