package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ConversationType string

const (
	ConversationInitialOutreach   ConversationType = "INITIAL_OUTREACH"
	ConversationFollowUp          ConversationType = "FOLLOW_UP"
	ConversationObjectionHandling ConversationType = "OBJECTION_HANDLING"
	ConversationHumanEscalation   ConversationType = "HUMAN_ESCALATION"
	ConversationAutonomousReply   ConversationType = "AUTONOMOUS_REPLY"
)

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// Classification is set only on inbound conversations.
type Classification string

const (
	ClassificationInterested    Classification = "INTERESTED"
	ClassificationNotInterested Classification = "NOT_INTERESTED"
	ClassificationOutOfOffice   Classification = "OUT_OF_OFFICE"
	ClassificationEscalation    Classification = "HUMAN_ESCALATION"
	ClassificationStop          Classification = "STOP"
)

// Conversation is one message tied to exactly one lead. Rows are created
// once and never mutated or deleted.
type Conversation struct {
	ID             string           `json:"id"`
	LeadID         string           `json:"lead_id"`
	Direction      Direction        `json:"direction"`
	Type           ConversationType `json:"type"`
	Subject        string           `json:"subject,omitempty"`
	Body           string           `json:"body"`
	Classification Classification   `json:"classification,omitempty"`
	MessageID      string           `json:"message_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

func NewConversation(leadID string, direction Direction, convType ConversationType, subject, body string) *Conversation {
	return &Conversation{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		Direction: direction,
		Type:      convType,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

type ConversationRepositoryInterface interface {
	Create(ctx context.Context, conv *Conversation) error
}
